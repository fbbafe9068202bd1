package repository

import (
	"context"
	"fmt"

	"github.com/eventhub/eventhub/internal/domain"
	"github.com/eventhub/eventhub/internal/repository/dao"
)

var (
	ErrEventNotFound = dao.ErrEventNotFound
	ErrAlreadyLiked  = dao.ErrAlreadyLiked
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	List(ctx context.Context, limit, offset int) ([]dao.Event, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]dao.Event, error)
	InsertComment(ctx context.Context, comment dao.Comment) (dao.Comment, error)
	ListComments(ctx context.Context, eventID uint) ([]dao.Comment, error)
	InsertLike(ctx context.Context, like dao.Like) (dao.Like, error)
	CountLikes(ctx context.Context, eventID uint) (int64, error)
	HasLiked(ctx context.Context, userID, eventID uint) (bool, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

// FindByID is a primary key lookup. It fails with ErrEventNotFound.
func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

// List pages through events ordered by date. One query.
func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	found, err := r.dao.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("r.dao.List -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *EventRepository) ListByCreator(ctx context.Context, creatorID uint) ([]domain.Event, error) {
	found, err := r.dao.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByCreator -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *EventRepository) CreateComment(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	created, err := r.dao.InsertComment(ctx, dao.Comment{
		Content: comment.Content,
		UserID:  comment.UserID,
		EventID: comment.EventID,
	})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("r.dao.InsertComment -> %w", err)
	}

	return r.commentDaoToDomain(created), nil
}

// ListComments costs two queries: the comments and their authors.
func (r *EventRepository) ListComments(ctx context.Context, eventID uint) ([]domain.Comment, error) {
	found, err := r.dao.ListComments(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListComments -> %w", err)
	}

	comments := make([]domain.Comment, 0, len(found))
	for _, c := range found {
		comments = append(comments, r.commentDaoToDomain(c))
	}

	return comments, nil
}

// CreateLike fails with ErrAlreadyLiked when the pair already exists.
func (r *EventRepository) CreateLike(ctx context.Context, userID, eventID uint) (domain.Like, error) {
	created, err := r.dao.InsertLike(ctx, dao.Like{
		UserID:  userID,
		EventID: eventID,
	})
	if err != nil {
		return domain.Like{}, fmt.Errorf("r.dao.InsertLike -> %w", err)
	}

	return domain.Like{
		ID:       created.ID,
		LikeDate: created.LikeDate,
		UserID:   created.UserID,
		EventID:  created.EventID,
	}, nil
}

func (r *EventRepository) CountLikes(ctx context.Context, eventID uint) (int64, error) {
	count, err := r.dao.CountLikes(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountLikes -> %w", err)
	}

	return count, nil
}

func (r *EventRepository) HasLiked(ctx context.Context, userID, eventID uint) (bool, error) {
	liked, err := r.dao.HasLiked(ctx, userID, eventID)
	if err != nil {
		return false, fmt.Errorf("r.dao.HasLiked -> %w", err)
	}

	return liked, nil
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	return dao.Event{
		ID:           e.ID,
		Name:         e.Name,
		Description:  e.Description,
		Date:         e.Date,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		Venue:        e.Venue,
		PriceCents:   int64(e.Price),
		TotalTickets: e.TotalTickets,
		TicketsSold:  e.TicketsSold,
		Status:       string(e.Status),
		CreatorID:    e.CreatorID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:           e.ID,
		Name:         e.Name,
		Description:  e.Description,
		Date:         e.Date,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		Venue:        e.Venue,
		Price:        domain.Money(e.PriceCents),
		TotalTickets: e.TotalTickets,
		TicketsSold:  e.TicketsSold,
		Status:       domain.EventStatus(e.Status),
		CreatorID:    e.CreatorID,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (r *EventRepository) daosToDomain(events []dao.Event) []domain.Event {
	domainEvents := make([]domain.Event, len(events))
	for i, e := range events {
		domainEvents[i] = r.daoToDomain(e)
	}

	return domainEvents
}

func (r *EventRepository) commentDaoToDomain(c dao.Comment) domain.Comment {
	comment := domain.Comment{
		ID:          c.ID,
		Content:     c.Content,
		CommentDate: c.CommentDate,
		UserID:      c.UserID,
		EventID:     c.EventID,
	}
	if c.User.ID != 0 {
		comment.AuthorName = c.User.FirstName + " " + c.User.LastName
	}

	return comment
}
