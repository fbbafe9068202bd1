package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eventhub/eventhub/internal/api/handler/v1/request"
	"github.com/eventhub/eventhub/internal/api/handler/v1/response"
	"github.com/eventhub/eventhub/internal/api/middleware"
	"github.com/eventhub/eventhub/internal/domain"
	"github.com/eventhub/eventhub/internal/service"
)

const eventsPerPage = 20

type EventService interface {
	CreateEvent(ctx context.Context, creatorID uint, event domain.Event) (domain.Event, error)
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]domain.Event, error)
	EventDetails(ctx context.Context, id, viewerID uint) (domain.EventDetails, error)
	LeaveComment(ctx context.Context, userID, eventID uint, content string) (domain.Comment, error)
	LikeEvent(ctx context.Context, userID, eventID uint) (bool, error)
}

type EventHandler struct {
	svc      EventService
	sessions SessionManager
}

func NewEventHandler(svc EventService, sessions SessionManager) *EventHandler {
	return &EventHandler{
		svc:      svc,
		sessions: sessions,
	}
}

func (h *EventHandler) HandleIndex(ctx *gin.Context) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	events, err := h.svc.ListEvents(ctx.Request.Context(), eventsPerPage+1, (page-1)*eventsPerPage)
	if err != nil {
		err = fmt.Errorf("v1.HandleIndex -> h.svc.ListEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	hasNext := len(events) > eventsPerPage
	if hasNext {
		events = events[:eventsPerPage]
	}

	renderPage(ctx, h.sessions, http.StatusOK, "index.html", gin.H{
		"Events":   events,
		"Page":     page,
		"PrevPage": page - 1,
		"NextPage": page + 1,
		"HasNext":  hasNext,
	})
}

func (h *EventHandler) HandleCreateEventPage(ctx *gin.Context) {
	h.renderEventForm(ctx, http.StatusOK, request.EventForm{}, nil)
}

func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	user, ok := mustCurrentUser(ctx)
	if !ok {
		return
	}

	var req request.EventForm
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		h.renderEventForm(ctx, http.StatusOK, req, request.FieldErrors(err))
		return
	}

	event, err := req.Event()
	if err != nil {
		h.renderEventForm(ctx, http.StatusOK, req, request.FieldErrors(err))
		return
	}

	if _, err = h.svc.CreateEvent(ctx.Request.Context(), user.ID, event); err != nil {
		if errors.Is(err, service.ErrInvalidPrice) {
			h.renderEventForm(ctx, http.StatusOK, req, map[string]string{"price": "Ticket price cannot exceed 99999999.99."})
			return
		}

		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	addFlash(ctx, flashSuccess, "Event created successfully!")
	redirect(ctx, "/")
}

func (h *EventHandler) HandleEventDetails(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	details, ok := h.loadDetails(ctx, eventID)
	if !ok {
		return
	}

	h.renderDetails(ctx, http.StatusOK, details, request.CommentForm{}, nil)
}

func (h *EventHandler) HandleComment(ctx *gin.Context) {
	user, ok := mustCurrentUser(ctx)
	if !ok {
		return
	}
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	var req request.CommentForm
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		details, ok := h.loadDetails(ctx, eventID)
		if !ok {
			return
		}

		h.renderDetails(ctx, http.StatusOK, details, req, request.FieldErrors(err))
		return
	}

	if _, err := h.svc.LeaveComment(ctx.Request.Context(), user.ID, eventID, req.Content); err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleComment -> h.svc.LeaveComment -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	addFlash(ctx, flashSuccess, "Comment posted successfully!")
	redirect(ctx, eventPath(eventID))
}

func (h *EventHandler) HandleLike(ctx *gin.Context) {
	user, ok := mustCurrentUser(ctx)
	if !ok {
		return
	}
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	created, err := h.svc.LikeEvent(ctx.Request.Context(), user.ID, eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleLike -> h.svc.LikeEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if created {
		addFlash(ctx, flashSuccess, "You liked this event.")
	} else {
		addFlash(ctx, flashInfo, "You already like this event.")
	}
	redirect(ctx, eventPath(eventID))
}

// HandleListEvents godoc
// @Summary      List events
// @Description  Lists events ordered by date.
// @Tags         events
// @Produce      json
// @Param        limit   query     int  false  "page size, at most 100"
// @Param        offset  query     int  false  "number of events to skip"
// @Success      200     {array}   domain.Event
// @Failure      400     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /events [get]
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(eventsPerPage)))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid limit: %w", err)))
		return
	}

	offset, err := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid offset: %w", err)))
		return
	}

	events, err := h.svc.ListEvents(ctx.Request.Context(), limit, offset)
	if err != nil {
		err = fmt.Errorf("v1.HandleListEvents -> h.svc.ListEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      200      {object}  domain.Event
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

func (h *EventHandler) loadDetails(ctx *gin.Context, eventID uint) (domain.EventDetails, bool) {
	var viewerID uint
	if user, ok := middleware.CurrentUser(ctx); ok {
		viewerID = user.ID
	}

	details, err := h.svc.EventDetails(ctx.Request.Context(), eventID, viewerID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return domain.EventDetails{}, false
		}

		err = fmt.Errorf("v1.loadDetails -> h.svc.EventDetails -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return domain.EventDetails{}, false
	}

	return details, true
}

func (h *EventHandler) renderDetails(ctx *gin.Context, status int, details domain.EventDetails, form request.CommentForm, errs map[string]string) {
	renderPage(ctx, h.sessions, status, "eventdetail.html", gin.H{
		"Details": details,
		"Event":   details.Event,
		"Form":    form,
		"Errors":  errs,
	})
}

func (h *EventHandler) renderEventForm(ctx *gin.Context, status int, form request.EventForm, errs map[string]string) {
	renderPage(ctx, h.sessions, status, "eventcreate.html", gin.H{
		"Form":   form,
		"Errors": errs,
	})
}
