package v1

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookieName = "eventhub_flash"
	flashCtxKey     = "pendingFlashes"
	flashMaxAge     = 60
)

const (
	flashSuccess = "success"
	flashDanger  = "danger"
	flashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

func addFlash(ctx *gin.Context, category, message string) {
	var pending []Flash
	if v, ok := ctx.Get(flashCtxKey); ok {
		pending, _ = v.([]Flash)
	}
	pending = append(pending, Flash{Category: category, Message: message})
	ctx.Set(flashCtxKey, pending)

	data, err := json.Marshal(pending)
	if err != nil {
		return
	}

	setFlashCookie(ctx, base64.RawURLEncoding.EncodeToString(data), flashMaxAge)
}

// popFlashes returns the flashes carried by the request cookie and clears it.
func popFlashes(ctx *gin.Context) []Flash {
	raw, err := ctx.Cookie(flashCookieName)
	if err != nil || raw == "" {
		return nil
	}
	setFlashCookie(ctx, "", -1)

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}

	var flashes []Flash
	if err = json.Unmarshal(data, &flashes); err != nil {
		return nil
	}

	return flashes
}

func setFlashCookie(ctx *gin.Context, value string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(flashCookieName, value, maxAge, "/", "", ctx.Request.TLS != nil, true)
}
