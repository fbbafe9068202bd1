package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/eventhub/eventhub/internal/domain"
	"github.com/eventhub/eventhub/internal/repository"
)

var (
	ErrEventNotFound = repository.ErrEventNotFound
	ErrInvalidPrice  = errors.New("ticket price out of range")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	List(ctx context.Context, limit, offset int) ([]domain.Event, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]domain.Event, error)
	CreateComment(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	ListComments(ctx context.Context, eventID uint) ([]domain.Comment, error)
	CreateLike(ctx context.Context, userID, eventID uint) (domain.Like, error)
	CountLikes(ctx context.Context, eventID uint) (int64, error)
	HasLiked(ctx context.Context, userID, eventID uint) (bool, error)
}

type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

// CreateEvent stores a new event owned by creatorID. Every event starts Open
// with nothing sold whatever the caller put in those fields.
func (s *EventService) CreateEvent(ctx context.Context, creatorID uint, event domain.Event) (domain.Event, error) {
	if event.Price < 0 || event.Price > domain.MaxPrice {
		return domain.Event{}, ErrInvalidPrice
	}

	event.ID = 0
	event.CreatorID = creatorID
	event.TicketsSold = 0
	event.Status = domain.EventOpen

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	zap.L().Info("event created", zap.Uint("event_id", created.ID), zap.Uint("creator_id", creatorID))

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	events, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return events, nil
}

func (s *EventService) ListEventsByCreator(ctx context.Context, creatorID uint) ([]domain.Event, error) {
	events, err := s.repo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByCreator -> %w", err)
	}

	return events, nil
}

// EventDetails loads everything the event page shows. viewerID is 0 for
// anonymous visitors.
func (s *EventService) EventDetails(ctx context.Context, id, viewerID uint) (domain.EventDetails, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.EventDetails{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	comments, err := s.repo.ListComments(ctx, id)
	if err != nil {
		return domain.EventDetails{}, fmt.Errorf("s.repo.ListComments -> %w", err)
	}

	likes, err := s.repo.CountLikes(ctx, id)
	if err != nil {
		return domain.EventDetails{}, fmt.Errorf("s.repo.CountLikes -> %w", err)
	}

	details := domain.EventDetails{
		Event:    event,
		Comments: comments,
		Likes:    likes,
	}

	if viewerID != 0 {
		details.LikedByUser, err = s.repo.HasLiked(ctx, viewerID, id)
		if err != nil {
			return domain.EventDetails{}, fmt.Errorf("s.repo.HasLiked -> %w", err)
		}
	}

	return details, nil
}

func (s *EventService) LeaveComment(ctx context.Context, userID, eventID uint, content string) (domain.Comment, error) {
	if _, err := s.repo.FindByID(ctx, eventID); err != nil {
		return domain.Comment{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	comment, err := s.repo.CreateComment(ctx, domain.Comment{
		Content: content,
		UserID:  userID,
		EventID: eventID,
	})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("s.repo.CreateComment -> %w", err)
	}

	return comment, nil
}

// LikeEvent records a like once per user and event. It reports whether a new
// like was stored; liking twice is not an error.
func (s *EventService) LikeEvent(ctx context.Context, userID, eventID uint) (bool, error) {
	if _, err := s.repo.FindByID(ctx, eventID); err != nil {
		return false, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if _, err := s.repo.CreateLike(ctx, userID, eventID); err != nil {
		if errors.Is(err, repository.ErrAlreadyLiked) {
			return false, nil
		}

		return false, fmt.Errorf("s.repo.CreateLike -> %w", err)
	}

	return true, nil
}
