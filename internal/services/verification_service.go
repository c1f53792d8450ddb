package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/anonto42/circle/backend/internal/events"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
)

// VerificationService runs the verified-badge request queue
type VerificationService struct {
	requests  repositories.VerificationRepository
	users     repositories.UserRepository
	sessions  IdentityInvalidator
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewVerificationService(
	requests repositories.VerificationRepository,
	users repositories.UserRepository,
	sessions IdentityInvalidator,
	publisher events.Publisher,
	logger *slog.Logger,
) *VerificationService {
	return &VerificationService{
		requests:  requests,
		users:     users,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit queues a pending request carrying a snapshot of the user's profile
func (s *VerificationService) Submit(ctx context.Context, user *models.User, reason string) (*models.VerificationRequest, error) {
	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}

	_, err := s.requests.GetPendingByUserID(ctx, user.ID)
	if err == nil {
		return nil, ErrPendingRequest
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, storageErr(err, "check pending request")
	}

	req := &models.VerificationRequest{
		UserID:      user.ID,
		Handle:      user.Handle,
		DisplayName: user.DisplayName,
		Bio:         user.Bio,
		AvatarURL:   user.AvatarURL,
		Reason:      reason,
		Status:      models.VerificationPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.requests.CreateRequest(ctx, req); err != nil {
		return nil, storageErr(err, "create verification request")
	}

	publish(ctx, s.publisher, s.logger, events.New(events.VerificationReceived, user.ID, strconv.FormatUint(uint64(req.ID), 10), nil))
	return req, nil
}

// Pending lists requests awaiting review, oldest first
func (s *VerificationService) Pending(ctx context.Context) ([]models.VerificationRequest, error) {
	reqs, err := s.requests.ListByStatus(ctx, models.VerificationPending)
	if err != nil {
		return nil, storageErr(err, "list pending requests")
	}
	return reqs, nil
}

// Decide records an admin's outcome and, on approval, sets the identity's verified flag.
// The two writes are independent: when the second fails the request stays decided and
// the error is returned. Deciding again with the same outcome re-applies both writes,
// which repairs such a half-applied approval; a different outcome is ErrAlreadyDecided.
func (s *VerificationService) Decide(ctx context.Context, reviewer *models.User, requestID uint, outcome string) (*models.VerificationRequest, error) {
	if outcome != models.VerificationApproved && outcome != models.VerificationRejected {
		return nil, fmt.Errorf("%w: outcome must be approved or rejected", ErrInvalidInput)
	}
	if !reviewer.IsAdmin {
		return nil, ErrForbidden
	}

	req, err := s.requests.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, storageErr(err, "load verification request")
	}
	if req.Status != models.VerificationPending && req.Status != outcome {
		return nil, ErrAlreadyDecided
	}

	reviewedAt := s.now().UTC()
	if err := s.requests.UpdateDecision(ctx, req.ID, outcome, reviewer.ID, reviewedAt); err != nil {
		return nil, storageErr(err, "record decision")
	}
	req.Status = outcome
	req.ReviewedBy = &reviewer.ID
	req.ReviewedAt = &reviewedAt

	if outcome == models.VerificationApproved {
		if err := s.users.SetVerified(ctx, req.UserID, true); err != nil {
			return req, fmt.Errorf("request %d approved but identity not flagged: %w", req.ID, err)
		}
		s.sessions.Invalidate(req.UserID)
	}

	s.logger.Info("verification decided", "request_id", req.ID, "user_id", req.UserID, "outcome", outcome, "reviewer_id", reviewer.ID)
	publish(ctx, s.publisher, s.logger, events.New(events.VerificationDecided, reviewer.ID, strconv.FormatUint(uint64(req.UserID), 10), map[string]interface{}{
		"request_id": req.ID,
		"outcome":    outcome,
	}))
	return req, nil
}
