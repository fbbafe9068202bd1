package domain

import "time"

type EventStatus string

const (
	EventOpen    EventStatus = "Open"
	EventSoldOut EventStatus = "Sold Out"
)

type Event struct {
	ID           uint        `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Date         time.Time   `json:"date"`
	StartTime    string      `json:"start_time"`
	EndTime      string      `json:"end_time"`
	Venue        string      `json:"venue"`
	Price        Money       `json:"price"`
	TotalTickets int         `json:"total_tickets"`
	TicketsSold  int         `json:"tickets_sold"`
	Status       EventStatus `json:"status"`
	CreatorID    uint        `json:"creator_id"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (e Event) TicketsLeft() int {
	left := e.TotalTickets - e.TicketsSold
	if left < 0 {
		return 0
	}

	return left
}

func (e Event) IsOpen() bool {
	return e.Status == EventOpen && e.TicketsLeft() > 0
}

type Comment struct {
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	CommentDate time.Time `json:"comment_date"`
	UserID      uint      `json:"user_id"`
	EventID     uint      `json:"event_id"`
	AuthorName  string    `json:"author_name,omitempty"`
}

type Like struct {
	ID       uint      `json:"id"`
	LikeDate time.Time `json:"like_date"`
	UserID   uint      `json:"user_id"`
	EventID  uint      `json:"event_id"`
}

// EventDetails is what the event page needs in one place.
type EventDetails struct {
	Event       Event     `json:"event"`
	Comments    []Comment `json:"comments"`
	Likes       int64     `json:"likes"`
	LikedByUser bool      `json:"liked_by_user"`
}
