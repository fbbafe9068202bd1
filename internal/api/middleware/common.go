package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventhub/eventhub/internal/api/handler/v1/response"
)

func ConfigCORS(allowedDomains []string) gin.HandlerFunc {
	conf := cors.DefaultConfig()
	conf.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	conf.AllowHeaders = []string{"Origin", "Content-Type", "Accept", CSRFHeaderName}
	conf.MaxAge = 12 * time.Hour

	if len(allowedDomains) == 0 {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = allowedDomains
		conf.AllowCredentials = true
	}

	return cors.New(conf)
}

// TrustProxies makes ctx.ClientIP honour X-Forwarded-For only when the TCP
// peer is one of proxies. With no proxies the peer address is used as is.
func TrustProxies(engine *gin.Engine, proxies []string) error {
	if len(proxies) == 0 {
		proxies = nil
	}

	if err := engine.SetTrustedProxies(proxies); err != nil {
		return fmt.Errorf("engine.SetTrustedProxies -> %w", err)
	}

	return nil
}

// RequestLogger writes one zap line per request.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path

		ctx.Next()

		zap.L().Info("request",
			zap.String("method", ctx.Request.Method),
			zap.String("path", path),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", ctx.ClientIP()),
			zap.String("request_id", requestid.Get(ctx)),
		)
	}
}

// Recovery turns panics into the generic 500 page.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("panic: %v", recovered)))
	})
}
