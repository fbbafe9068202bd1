package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventhub/eventhub/internal/api/handler/v1/response"
	"github.com/eventhub/eventhub/internal/domain"
	"github.com/eventhub/eventhub/internal/pkg/jwthelper"
	"github.com/eventhub/eventhub/internal/session"
)

const (
	SessionCookieName = "eventhub_session"

	currentUserKey    = "currentUser"
	currentSessionKey = "currentSession"
)

var errSessionUserMismatch = errors.New("session does not belong to token subject")

type SessionStore interface {
	Create(ctx context.Context, userID uint) (session.Session, error)
	Get(ctx context.Context, id string) (session.Session, error)
	Destroy(ctx context.Context, id string) error
	TTL() time.Duration
}

type UserFinder interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

type Authenticator struct {
	signingKey   []byte
	sessions     SessionStore
	users        UserFinder
	secureCookie bool
}

func NewAuthenticator(signingKey string, sessions SessionStore, users UserFinder, secureCookie bool) *Authenticator {
	return &Authenticator{
		signingKey:   []byte(signingKey),
		sessions:     sessions,
		users:        users,
		secureCookie: secureCookie,
	}
}

// LoadSession resolves the current user once per request from the session
// cookie. Requests without a valid session continue anonymously.
func (a *Authenticator) LoadSession() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(SessionCookieName)
		if err != nil || token == "" {
			ctx.Next()
			return
		}

		user, sess, err := a.resolve(ctx.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, jwthelper.ErrInvalidToken) &&
				!errors.Is(err, session.ErrSessionNotFound) &&
				!errors.Is(err, errSessionUserMismatch) {
				zap.L().Warn("failed to load session", zap.Error(err))
			}
			a.clearCookie(ctx)
			ctx.Next()
			return
		}

		ctx.Set(currentUserKey, user)
		ctx.Set(currentSessionKey, sess)
		ctx.Next()
	}
}

func (a *Authenticator) resolve(ctx context.Context, token string) (domain.User, session.Session, error) {
	claims, err := jwthelper.ParseToken(a.signingKey, token)
	if err != nil {
		return domain.User{}, session.Session{}, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return domain.User{}, session.Session{}, err
	}

	sess, err := a.sessions.Get(ctx, claims.SessionID())
	if err != nil {
		return domain.User{}, session.Session{}, fmt.Errorf("a.sessions.Get -> %w", err)
	}
	if sess.UserID != userID {
		return domain.User{}, session.Session{}, errSessionUserMismatch
	}

	user, err := a.users.GetUser(ctx, sess.UserID)
	if err != nil {
		return domain.User{}, session.Session{}, fmt.Errorf("a.users.GetUser -> %w", err)
	}

	return user, sess, nil
}

// RequireLogin stops anonymous requests with 401.
func (a *Authenticator) RequireLogin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := CurrentUser(ctx); !ok {
			response.RenderErr(ctx, response.ErrUnauthorized(errors.New("no active session")))
			return
		}

		ctx.Next()
	}
}

// StartSession logs userID in on this client, replacing any session the
// client already had.
func (a *Authenticator) StartSession(ctx *gin.Context, userID uint) error {
	if old, ok := CurrentSession(ctx); ok {
		if err := a.sessions.Destroy(ctx.Request.Context(), old.ID); err != nil {
			zap.L().Warn("failed to destroy previous session", zap.Error(err))
		}
	}

	sess, err := a.sessions.Create(ctx.Request.Context(), userID)
	if err != nil {
		return fmt.Errorf("a.sessions.Create -> %w", err)
	}

	token, err := jwthelper.GenerateToken(a.signingKey, userID, sess.ID, a.sessions.TTL())
	if err != nil {
		return fmt.Errorf("jwthelper.GenerateToken -> %w", err)
	}

	a.setCookie(ctx, token, int(a.sessions.TTL().Seconds()))
	ctx.Set(currentSessionKey, sess)

	return nil
}

// EndSession logs the client out. The cookie is cleared even when the
// session store cannot be reached.
func (a *Authenticator) EndSession(ctx *gin.Context) {
	if sess, ok := CurrentSession(ctx); ok {
		if err := a.sessions.Destroy(ctx.Request.Context(), sess.ID); err != nil {
			zap.L().Warn("failed to destroy session", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}

	a.clearCookie(ctx)
	ctx.Set(currentUserKey, nil)
	ctx.Set(currentSessionKey, nil)
}

func (a *Authenticator) setCookie(ctx *gin.Context, value string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookieName, value, maxAge, "/", "", a.secureCookie, true)
}

func (a *Authenticator) clearCookie(ctx *gin.Context) {
	a.setCookie(ctx, "", -1)
}

func CurrentUser(ctx *gin.Context) (domain.User, bool) {
	v, ok := ctx.Get(currentUserKey)
	if !ok {
		return domain.User{}, false
	}

	user, ok := v.(domain.User)

	return user, ok
}

func CurrentSession(ctx *gin.Context) (session.Session, bool) {
	v, ok := ctx.Get(currentSessionKey)
	if !ok {
		return session.Session{}, false
	}

	sess, ok := v.(session.Session)

	return sess, ok
}
