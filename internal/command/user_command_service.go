package command

import (
	"context"
	"errors"

	"github.com/eaglebank/auth-api/internal/repository"
	"github.com/eaglebank/auth-api/shared/cqrs"
	"github.com/eaglebank/auth-api/shared/events"
	"github.com/eaglebank/auth-api/shared/models"
	"go.uber.org/zap"
)

// ErrForbidden is returned when the caller may not perform a mutation.
var ErrForbidden = errors.New("forbidden")

// EventPublisher appends an event to a stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// UserCommandService applies account mutations to the store, keeps the read
// model current and announces each change on the user event stream.
type UserCommandService struct {
	store     repository.UserStore
	readRepo  *repository.UserReadRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewUserCommandService accepts a nil publisher when no event stream is
// configured.
func NewUserCommandService(
	store repository.UserStore,
	readRepo *repository.UserReadRepository,
	publisher EventPublisher,
	logger *zap.Logger,
) *UserCommandService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserCommandService{
		store:     store,
		readRepo:  readRepo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *UserCommandService) UpdateEmail(ctx context.Context, cmd cqrs.UpdateEmailCommand) (*models.UserView, error) {
	user, err := s.store.FindByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	oldEmail := user.Email
	if oldEmail == cmd.Email {
		return models.NewUserView(user), nil
	}

	user.Email = cmd.Email
	if err := s.store.Update(ctx, user); err != nil {
		return nil, err
	}

	view := models.NewUserView(user)
	s.readRepo.CacheUserView(ctx, view)
	s.publish(ctx, events.UserEmailUpdated, events.UserEmailUpdatedEvent{
		UserID:   user.ID,
		OldEmail: oldEmail,
		NewEmail: user.Email,
	})
	return view, nil
}

// UpdateRole is only permitted to callers whose stored role is admin. The
// role carried by the request is never trusted.
func (s *UserCommandService) UpdateRole(ctx context.Context, cmd cqrs.UpdateRoleCommand) (*models.UserView, error) {
	caller, err := s.store.FindByID(ctx, cmd.RequestingUserID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	target, err := s.store.FindByID(ctx, cmd.TargetUserID)
	if err != nil {
		return nil, err
	}

	target.Role = cmd.Role
	if err := s.store.Update(ctx, target); err != nil {
		return nil, err
	}

	view := models.NewUserView(target)
	s.readRepo.CacheUserView(ctx, view)
	s.publish(ctx, events.UserRoleUpdated, events.UserRoleUpdatedEvent{
		UserID:    target.ID,
		Role:      target.Role,
		UpdatedBy: caller.ID,
	})
	return view, nil
}

func (s *UserCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) error {
	user, err := s.store.FindByID(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, cmd.UserID); err != nil {
		return err
	}

	s.readRepo.InvalidateUserView(ctx, cmd.UserID)
	s.publish(ctx, events.UserDeleted, events.UserDeletedEvent{
		UserID: user.ID,
		Email:  user.Email,
	})
	return nil
}

// publish never fails the mutation that triggered it.
func (s *UserCommandService) publish(ctx context.Context, eventType string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.UserEventsStream, eventType, data); err != nil {
		s.logger.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
