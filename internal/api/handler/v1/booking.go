package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventhub/eventhub/internal/api/handler/v1/request"
	"github.com/eventhub/eventhub/internal/api/handler/v1/response"
	"github.com/eventhub/eventhub/internal/domain"
	"github.com/eventhub/eventhub/internal/service"
)

type BookingService interface {
	BookTickets(ctx context.Context, userID, eventID uint, quantity int) (domain.Booking, error)
	ListBookingsForUser(ctx context.Context, userID uint) ([]domain.Booking, error)
	ListBookingsForEvent(ctx context.Context, requesterID uint, event domain.Event) ([]domain.Booking, error)
}

type EventFinder interface {
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	ListEventsByCreator(ctx context.Context, creatorID uint) ([]domain.Event, error)
}

type BookingHandler struct {
	svc      BookingService
	events   EventFinder
	sessions SessionManager
}

func NewBookingHandler(svc BookingService, events EventFinder, sessions SessionManager) *BookingHandler {
	return &BookingHandler{
		svc:      svc,
		events:   events,
		sessions: sessions,
	}
}

func (h *BookingHandler) HandleBookPage(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	event, ok := h.loadEvent(ctx, eventID)
	if !ok {
		return
	}

	h.renderBookForm(ctx, http.StatusOK, event, request.BookingForm{Quantity: "1"}, nil)
}

func (h *BookingHandler) HandleBook(ctx *gin.Context) {
	user, ok := mustCurrentUser(ctx)
	if !ok {
		return
	}
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	event, ok := h.loadEvent(ctx, eventID)
	if !ok {
		return
	}

	var req request.BookingForm
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		h.renderBookForm(ctx, http.StatusOK, event, req, request.FieldErrors(err))
		return
	}

	booking, err := h.svc.BookTickets(ctx.Request.Context(), user.ID, eventID, req.QuantityValue())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrInvalidQuantity):
			h.renderBookForm(ctx, http.StatusOK, event, req, map[string]string{"quantity": "You must book at least one ticket."})
		case errors.Is(err, service.ErrTotalOutOfRange):
			h.renderBookForm(ctx, http.StatusOK, event, req, map[string]string{"quantity": "That booking is too large."})
		case errors.Is(err, service.ErrInsufficientTickets), errors.Is(err, service.ErrEventClosed):
			h.renderSoldOut(ctx, eventID, req)
		default:
			err = fmt.Errorf("v1.HandleBook -> h.svc.BookTickets -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	addFlash(ctx, flashSuccess, fmt.Sprintf("Booking successful! %d ticket(s) for %s, total %s.",
		booking.Quantity, event.Name, booking.TotalPrice))
	redirect(ctx, eventPath(eventID))
}

func (h *BookingHandler) HandleMyBookings(ctx *gin.Context) {
	user, ok := mustCurrentUser(ctx)
	if !ok {
		return
	}

	bookings, err := h.svc.ListBookingsForUser(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleMyBookings -> h.svc.ListBookingsForUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	hosted, err := h.events.ListEventsByCreator(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleMyBookings -> h.events.ListEventsByCreator -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	renderPage(ctx, h.sessions, http.StatusOK, "bookings.html", gin.H{
		"Bookings": bookings,
		"Hosted":   hosted,
	})
}

// HandleEventBookings lists who booked an event. Only its creator may see it.
func (h *BookingHandler) HandleEventBookings(ctx *gin.Context) {
	user, ok := mustCurrentUser(ctx)
	if !ok {
		return
	}
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	event, ok := h.loadEvent(ctx, eventID)
	if !ok {
		return
	}

	bookings, err := h.svc.ListBookingsForEvent(ctx.Request.Context(), user.ID, event)
	if err != nil {
		if errors.Is(err, service.ErrNotEventHost) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
			return
		}

		err = fmt.Errorf("v1.HandleEventBookings -> h.svc.ListBookingsForEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	renderPage(ctx, h.sessions, http.StatusOK, "eventbookings.html", gin.H{
		"Event":    event,
		"Bookings": bookings,
	})
}

// renderSoldOut re-reads the event so the form shows the tickets that are
// actually left after the failed attempt.
func (h *BookingHandler) renderSoldOut(ctx *gin.Context, eventID uint, form request.BookingForm) {
	event, ok := h.loadEvent(ctx, eventID)
	if !ok {
		return
	}

	msg := fmt.Sprintf("Only %d ticket(s) left for this event.", event.TicketsLeft())
	if !event.IsOpen() {
		msg = "This event is sold out."
	}

	h.renderBookForm(ctx, http.StatusConflict, event, form, map[string]string{"quantity": msg})
}

func (h *BookingHandler) loadEvent(ctx *gin.Context, eventID uint) (domain.Event, bool) {
	event, err := h.events.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return domain.Event{}, false
		}

		err = fmt.Errorf("v1.loadEvent -> h.events.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return domain.Event{}, false
	}

	return event, true
}

func (h *BookingHandler) renderBookForm(ctx *gin.Context, status int, event domain.Event, form request.BookingForm, errs map[string]string) {
	renderPage(ctx, h.sessions, status, "book.html", gin.H{
		"Event":  event,
		"Form":   form,
		"Errors": errs,
	})
}
