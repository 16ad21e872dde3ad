package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"tutorial-service/constant"
	"tutorial-service/dto"
	"tutorial-service/entities"
	"tutorial-service/repository"
)

var ErrTutorialNotFound = errors.New("tutorial not found")

// EventPublisher delivers tutorial change events. Implementations must be safe for
// concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, event dto.TutorialEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, dto.TutorialEvent) error { return nil }

// NoopPublisher drops every event. Used when no broker is configured.
var NoopPublisher EventPublisher = noopPublisher{}

type Service interface {
	// List returns every tutorial, or only those whose title contains *title
	// when title is non-nil.
	List(ctx context.Context, title *string) ([]*entities.Tutorial, error)
	ListPublished(ctx context.Context) ([]*entities.Tutorial, error)
	Get(ctx context.Context, id int64) (*entities.Tutorial, error)
	Create(ctx context.Context, req dto.TutorialRequest) (*entities.Tutorial, error)
	Update(ctx context.Context, id int64, req dto.TutorialRequest) (*entities.Tutorial, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

type service struct {
	repo      repository.TutorialRepository
	publisher EventPublisher
	now       func() time.Time
}

func (s *service) List(ctx context.Context, title *string) ([]*entities.Tutorial, error) {
	var (
		tutorials []*entities.Tutorial
		err       error
	)
	if title == nil {
		tutorials, err = s.repo.FindAll(ctx)
	} else {
		tutorials, err = s.repo.FindByTitleContaining(ctx, *title)
	}
	if err != nil {
		return nil, fmt.Errorf("list tutorials: %w", err)
	}
	return tutorials, nil
}

func (s *service) ListPublished(ctx context.Context) ([]*entities.Tutorial, error) {
	tutorials, err := s.repo.FindByPublished(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list published tutorials: %w", err)
	}
	return tutorials, nil
}

func (s *service) Get(ctx context.Context, id int64) (*entities.Tutorial, error) {
	tutorial, err := s.repo.FindById(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTutorialNotFound
		}
		return nil, fmt.Errorf("find tutorial %d: %w", id, err)
	}
	return tutorial, nil
}

func (s *service) Create(ctx context.Context, req dto.TutorialRequest) (*entities.Tutorial, error) {
	tutorial, err := s.repo.Save(ctx, &entities.Tutorial{
		Title:       req.Title,
		Description: req.Description,
		Published:   req.Published,
	})
	if err != nil {
		return nil, fmt.Errorf("create tutorial: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Int64("tutorial_id", tutorial.ID).Msg("tutorial created")
	s.publish(ctx, constant.EventTypeCreated, tutorial.ID, tutorial)
	return tutorial, nil
}

func (s *service) Update(ctx context.Context, id int64, req dto.TutorialRequest) (*entities.Tutorial, error) {
	tutorial, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tutorial.Title = req.Title
	tutorial.Description = req.Description
	tutorial.Published = req.Published

	tutorial, err = s.repo.Save(ctx, tutorial)
	if err != nil {
		return nil, fmt.Errorf("update tutorial %d: %w", id, err)
	}

	zerolog.Ctx(ctx).Debug().Int64("tutorial_id", tutorial.ID).Msg("tutorial updated")
	s.publish(ctx, constant.EventTypeUpdated, tutorial.ID, tutorial)
	return tutorial, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteById(ctx, id); err != nil {
		return fmt.Errorf("delete tutorial %d: %w", id, err)
	}

	s.publish(ctx, constant.EventTypeDeleted, id, nil)
	return nil
}

func (s *service) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete all tutorials: %w", err)
	}

	zerolog.Ctx(ctx).Info().Msg("all tutorials deleted")
	s.publish(ctx, constant.EventTypePurged, 0, nil)
	return nil
}

// publish is best-effort: failures are logged and never returned to the caller.
func (s *service) publish(ctx context.Context, eventType constant.EventType, id int64, tutorial *entities.Tutorial) {
	event := dto.TutorialEvent{
		EventId:    uuid.New(),
		Type:       eventType,
		TutorialId: id,
		Tutorial:   tutorial,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("event_id", event.EventId.String()).
			Str("event_type", eventType.String()).
			Msg("failed to publish tutorial event")
	}
}

func NewService(repo repository.TutorialRepository, publisher EventPublisher) Service {
	if publisher == nil {
		publisher = NoopPublisher
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}
