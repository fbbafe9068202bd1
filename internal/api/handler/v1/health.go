package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventhub/eventhub/internal/api/handler/v1/response"
)

// HandleHealthcheck godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleNotFound renders the 404 page for unknown routes.
func HandleNotFound(ctx *gin.Context) {
	response.RenderErr(ctx, response.ErrRouteNotFound())
}
