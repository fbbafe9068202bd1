package response

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is a failure that has been classified for the client. Err holds the
// underlying cause for the logs; it is never written to the response.
type Err struct {
	Err            error  `json:"-"`
	HTTPStatusCode int    `json:"status"`
	StatusText     string `json:"message"`
	ErrorText      string `json:"error,omitempty"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.StatusText
	}

	return e.Err.Error()
}

func (e *Err) Unwrap() error {
	return e.Err
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Bad Request",
		ErrorText:      errorText(err),
	}
}

func ErrValidation(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Invalid Input",
		ErrorText:      errorText(err),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized Access",
		ErrorText:      "Invalid email or password.",
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized Access",
		ErrorText:      "Please log in to continue.",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Access Forbidden",
	}
}

func ErrNotFound(resource, field string, value any) *Err {
	return &Err{
		Err:            fmt.Errorf("%s with %s %v not found", resource, field, value),
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Page Not Found",
		ErrorText:      fmt.Sprintf("%s not found", resource),
	}
}

func ErrRouteNotFound() *Err {
	return &Err{
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Page Not Found",
	}
}

func ErrTooManyRequests(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusTooManyRequests,
		StatusText:     "Too Many Requests",
		ErrorText:      "Too many attempts. Please wait a minute and try again.",
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Something went wrong",
	}
}

// RenderErr logs e and aborts the request with the error page, or with a
// JSON body for API routes.
func RenderErr(ctx *gin.Context, e *Err) {
	fields := []zap.Field{
		zap.Int("status", e.HTTPStatusCode),
		zap.String("method", ctx.Request.Method),
		zap.String("path", ctx.Request.URL.Path),
		zap.String("request_id", requestid.Get(ctx)),
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}

	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error(e.StatusText, fields...)
	} else {
		zap.L().Info(e.StatusText, fields...)
	}

	if WantsJSON(ctx) {
		ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
		return
	}

	ctx.HTML(e.HTTPStatusCode, "error.html", gin.H{
		"ErrorCode": e.HTTPStatusCode,
		"Message":   e.StatusText,
		"Detail":    e.ErrorText,
		"LoginURL":  loginURL(ctx, e),
	})
	ctx.Abort()
}

func WantsJSON(ctx *gin.Context) bool {
	return strings.HasPrefix(ctx.Request.URL.Path, "/api/") ||
		strings.Contains(ctx.GetHeader("Accept"), "application/json")
}

func loginURL(ctx *gin.Context, e *Err) string {
	if e.HTTPStatusCode != http.StatusUnauthorized || ctx.Request.Method != http.MethodGet {
		return ""
	}

	return "/login?next=" + url.QueryEscape(ctx.Request.URL.RequestURI())
}

func errorText(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
