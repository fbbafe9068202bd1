package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrAlreadyLiked  = errors.New("event already liked by user")
)

const (
	EventStatusOpen    = "Open"
	EventStatusSoldOut = "Sold Out"
)

type Event struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"size:150;not null"`
	Description  string    `gorm:"type:text;not null"`
	Date         time.Time `gorm:"not null"`
	StartTime    string    `gorm:"size:50;not null"`
	EndTime      string    `gorm:"size:50;not null"`
	Venue        string    `gorm:"size:200;not null"`
	PriceCents   int64     `gorm:"not null;check:price_cents >= 0"`
	TotalTickets int       `gorm:"not null;check:total_tickets >= 1"`
	TicketsSold  int       `gorm:"not null;default:0;check:tickets_sold >= 0 AND tickets_sold <= total_tickets"`
	Status       string    `gorm:"size:20;not null;default:Open"`
	CreatorID    uint      `gorm:"not null;index"`
	Creator      User      `gorm:"foreignKey:CreatorID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Comment struct {
	ID          uint      `gorm:"primaryKey"`
	Content     string    `gorm:"type:text;not null"`
	CommentDate time.Time `gorm:"not null;autoCreateTime"`
	UserID      uint      `gorm:"not null;index"`
	User        User      `gorm:"foreignKey:UserID"`
	EventID     uint      `gorm:"not null;index"`
	Event       Event     `gorm:"foreignKey:EventID"`
}

type Like struct {
	ID       uint      `gorm:"primaryKey"`
	LikeDate time.Time `gorm:"not null;autoCreateTime"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_likes_user_event"`
	User     User      `gorm:"foreignKey:UserID"`
	EventID  uint      `gorm:"not null;uniqueIndex:idx_likes_user_event;index"`
	Event    Event     `gorm:"foreignKey:EventID"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Omit(clause.Associations).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) List(ctx context.Context, limit, offset int) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Order("date ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) ListByCreator(ctx context.Context, creatorID uint) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("date ASC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) InsertComment(ctx context.Context, comment Comment) (Comment, error) {
	result := d.db.WithContext(ctx).Omit(clause.Associations).Create(&comment)
	if result.Error != nil {
		return Comment{}, result.Error
	}

	return comment, nil
}

// ListComments returns an event's comments newest first with their authors
// loaded in one extra query.
func (d *EventDAO) ListComments(ctx context.Context, eventID uint) ([]Comment, error) {
	var comments []Comment

	result := d.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("comment_date DESC").
		Order("id DESC").
		Find(&comments)
	if result.Error != nil {
		return nil, result.Error
	}

	return comments, nil
}

func (d *EventDAO) InsertLike(ctx context.Context, like Like) (Like, error) {
	result := d.db.WithContext(ctx).Omit(clause.Associations).Create(&like)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Like{}, ErrAlreadyLiked
		}

		return Like{}, result.Error
	}

	return like, nil
}

func (d *EventDAO) CountLikes(ctx context.Context, eventID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Like{}).Where("event_id = ?", eventID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

func (d *EventDAO) HasLiked(ctx context.Context, userID, eventID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).
		Model(&Like{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}
