package v1

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eventhub/eventhub/internal/api/handler/v1/response"
	"github.com/eventhub/eventhub/internal/api/middleware"
	"github.com/eventhub/eventhub/internal/domain"
)

// SessionManager is the part of the authenticator the handlers need.
type SessionManager interface {
	StartSession(ctx *gin.Context, userID uint) error
	EndSession(ctx *gin.Context)
	CSRFToken(ctx *gin.Context) string
}

// renderPage renders name with the data every layout expects: the current
// user, pending flashes and the CSRF token for forms.
func renderPage(ctx *gin.Context, sessions SessionManager, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	user, loggedIn := middleware.CurrentUser(ctx)
	data["LoggedIn"] = loggedIn
	data["CurrentUser"] = user
	data["CSRFField"] = middleware.CSRFFieldName
	data["CSRFToken"] = sessions.CSRFToken(ctx)
	data["Flashes"] = popFlashes(ctx)

	ctx.HTML(status, name, data)
}

func redirect(ctx *gin.Context, location string) {
	ctx.Redirect(http.StatusSeeOther, location)
}

// eventIDParam reads :eventID. A malformed id is reported as a missing page.
func eventIDParam(ctx *gin.Context) (uint, bool) {
	raw := ctx.Param("eventID")

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.RenderErr(ctx, response.ErrNotFound("event", "ID", raw))
		return 0, false
	}

	return uint(id), true
}

// mustCurrentUser is for routes behind RequireLogin.
func mustCurrentUser(ctx *gin.Context) (domain.User, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		response.RenderErr(ctx, response.ErrUnauthorized(nil))
		return domain.User{}, false
	}

	return user, true
}

// safeNextPath returns next when it is a path on this site and "/"
// otherwise.
func safeNextPath(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return "/"
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if strings.ContainsAny(next, "\r\n") {
		return "/"
	}

	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return "/"
	}

	return next
}

func eventPath(id uint) string {
	return "/event/" + strconv.FormatUint(uint64(id), 10)
}
