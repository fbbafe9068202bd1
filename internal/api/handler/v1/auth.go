package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventhub/eventhub/internal/api/handler/v1/request"
	"github.com/eventhub/eventhub/internal/api/handler/v1/response"
	"github.com/eventhub/eventhub/internal/api/middleware"
	"github.com/eventhub/eventhub/internal/domain"
	"github.com/eventhub/eventhub/internal/service"
)

const msgInvalidCredentials = "Invalid email or password."

type AuthService interface {
	Register(ctx context.Context, user domain.User, password string) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
}

type AuthHandler struct {
	svc      AuthService
	sessions SessionManager
}

func NewAuthHandler(svc AuthService, sessions SessionManager) *AuthHandler {
	return &AuthHandler{
		svc:      svc,
		sessions: sessions,
	}
}

func (h *AuthHandler) HandleLoginPage(ctx *gin.Context) {
	if _, ok := middleware.CurrentUser(ctx); ok {
		redirect(ctx, "/")
		return
	}

	h.renderLogin(ctx, http.StatusOK, request.LoginForm{Next: ctx.Query("next")}, nil)
}

func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	var req request.LoginForm
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if req.Next == "" {
		req.Next = ctx.Query("next")
	}

	if err := req.Validate(); err != nil {
		h.renderLogin(ctx, http.StatusOK, req, request.FieldErrors(err))
		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrWrongPassword) {
			zap.L().Info("login failed", zap.String("client_ip", ctx.ClientIP()))
			h.renderLogin(ctx, http.StatusUnauthorized, req, map[string]string{"form": msgInvalidCredentials})
			return
		}

		err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if err = h.sessions.StartSession(ctx, user.ID); err != nil {
		err = fmt.Errorf("v1.HandleLogin -> h.sessions.StartSession -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	addFlash(ctx, flashSuccess, "Logged in successfully.")
	redirect(ctx, safeNextPath(req.Next))
}

func (h *AuthHandler) HandleRegisterPage(ctx *gin.Context) {
	h.renderRegister(ctx, http.StatusOK, request.RegisterForm{}, nil)
}

func (h *AuthHandler) HandleRegister(ctx *gin.Context) {
	var req request.RegisterForm
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		h.renderRegister(ctx, http.StatusOK, req, request.FieldErrors(err))
		return
	}

	user, err := h.svc.Register(ctx.Request.Context(), domain.User{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         req.Email,
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		StreetAddress: strings.TrimSpace(req.StreetAddress),
	}, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserEmailExists) {
			addFlash(ctx, flashDanger, "Email is already registered. Please log in.")
			redirect(ctx, "/login")
			return
		}
		if errors.Is(err, service.ErrPasswordTooLong) {
			h.renderRegister(ctx, http.StatusOK, req, map[string]string{"password": "Password must be at most 72 bytes."})
			return
		}

		err = fmt.Errorf("v1.HandleRegister -> h.svc.Register -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if err = h.sessions.StartSession(ctx, user.ID); err != nil {
		err = fmt.Errorf("v1.HandleRegister -> h.sessions.StartSession -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	addFlash(ctx, flashSuccess, "Account created successfully! You are now logged in.")
	redirect(ctx, "/")
}

func (h *AuthHandler) HandleLogout(ctx *gin.Context) {
	h.sessions.EndSession(ctx)

	addFlash(ctx, flashSuccess, "You have been logged out.")
	redirect(ctx, "/login")
}

func (h *AuthHandler) renderLogin(ctx *gin.Context, status int, form request.LoginForm, errs map[string]string) {
	form.Password = ""

	renderPage(ctx, h.sessions, status, "user.html", gin.H{
		"Heading": "Login",
		"Mode":    "login",
		"Form":    form,
		"Errors":  errs,
	})
}

func (h *AuthHandler) renderRegister(ctx *gin.Context, status int, form request.RegisterForm, errs map[string]string) {
	form.Password = ""
	form.ConfirmPassword = ""

	renderPage(ctx, h.sessions, status, "user.html", gin.H{
		"Heading": "Register",
		"Mode":    "register",
		"Form":    form,
		"Errors":  errs,
	})
}
