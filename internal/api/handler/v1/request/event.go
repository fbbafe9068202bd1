package request

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/eventhub/eventhub/internal/domain"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var (
	errInvalidPrice     = errors.New("Enter a price such as 10 or 10.50.")
	errNegativePrice    = errors.New("Ticket price cannot be negative.")
	errPriceTooHigh     = errors.New("Ticket price cannot exceed 99999999.99.")
	errInvalidTickets   = errors.New("Total tickets must be a whole number.")
	errTooFewTickets    = errors.New("An event needs at least one ticket.")
	errInvalidQuantity  = errors.New("Quantity must be a whole number.")
	errQuantityTooSmall = errors.New("You must book at least one ticket.")
)

// EventForm keeps every field as text so that the form can be re-rendered
// exactly as the user typed it.
type EventForm struct {
	Name         string `form:"name" json:"name"`
	Description  string `form:"description" json:"description"`
	Date         string `form:"date" json:"date"`
	StartTime    string `form:"start_time" json:"start_time"`
	EndTime      string `form:"end_time" json:"end_time"`
	Venue        string `form:"venue" json:"venue"`
	Price        string `form:"price" json:"price"`
	TotalTickets string `form:"total_tickets" json:"total_tickets"`
}

func (req *EventForm) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name,
			validation.Required.Error("Event name is required."),
			validation.Length(1, 150).Error("Event name must be at most 150 characters."),
		),
		validation.Field(&req.Description,
			validation.Required.Error("Description is required."),
		),
		validation.Field(&req.Date,
			validation.Required.Error("Event date is required."),
			validation.Date(dateLayout).Error("Enter the date as YYYY-MM-DD."),
		),
		validation.Field(&req.StartTime,
			validation.Required.Error("Start time is required."),
			validation.Date(timeLayout).Error("Enter the start time as HH:MM."),
		),
		validation.Field(&req.EndTime,
			validation.Required.Error("End time is required."),
			validation.Date(timeLayout).Error("Enter the end time as HH:MM."),
		),
		validation.Field(&req.Venue,
			validation.Required.Error("Venue is required."),
			validation.Length(1, 200).Error("Venue must be at most 200 characters."),
		),
		validation.Field(&req.Price,
			validation.Required.Error("Ticket price is required."),
			validation.By(validPrice),
		),
		validation.Field(&req.TotalTickets,
			validation.Required.Error("Total tickets is required."),
			validation.By(validTicketCount),
		),
	)
}

// Event converts a validated form into a domain event.
func (req *EventForm) Event() (domain.Event, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return domain.Event{}, fmt.Errorf("time.Parse -> %w", err)
	}

	price, err := domain.ParseMoney(req.Price)
	if err != nil {
		return domain.Event{}, fmt.Errorf("domain.ParseMoney -> %w", err)
	}

	total, err := strconv.Atoi(strings.TrimSpace(req.TotalTickets))
	if err != nil {
		return domain.Event{}, fmt.Errorf("strconv.Atoi -> %w", err)
	}

	return domain.Event{
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		Date:         date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Venue:        strings.TrimSpace(req.Venue),
		Price:        price,
		TotalTickets: total,
	}, nil
}

type BookingForm struct {
	Quantity string `form:"quantity" json:"quantity"`
}

func (req *BookingForm) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Quantity,
			validation.Required.Error("You must book at least one ticket."),
			validation.By(validQuantity),
		),
	)
}

// QuantityValue returns the parsed quantity, or 0 when it is not a number.
func (req *BookingForm) QuantityValue() int {
	n, err := strconv.Atoi(strings.TrimSpace(req.Quantity))
	if err != nil {
		return 0
	}

	return n
}

type CommentForm struct {
	Content string `form:"content" json:"content"`
}

// Validate trims the content before checking it.
func (req *CommentForm) Validate() error {
	req.Content = strings.TrimSpace(req.Content)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Content,
			validation.Required.Error("Comment cannot be empty."),
			validation.RuneLength(1, 500).Error("Comment must be at most 500 characters."),
		),
	)
}

// FieldErrors flattens a validation error into field name -> message for
// the templates. Anything that is not a per-field error lands under "form".
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var errs validation.Errors
	if errors.As(err, &errs) {
		for field, fieldErr := range errs {
			out[field] = fieldErr.Error()
		}

		return out
	}

	out["form"] = err.Error()

	return out
}

func validPrice(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	price, err := domain.ParseMoney(s)
	if err != nil {
		return errInvalidPrice
	}
	if price < 0 {
		return errNegativePrice
	}
	if price > domain.MaxPrice {
		return errPriceTooHigh
	}

	return nil
}

func validTicketCount(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errInvalidTickets
	}
	if n < 1 {
		return errTooFewTickets
	}

	return nil
}

func validQuantity(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errInvalidQuantity
	}
	if n < 1 {
		return errQuantityTooSmall
	}

	return nil
}
