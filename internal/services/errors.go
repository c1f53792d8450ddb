package services

import (
	"errors"
	"fmt"

	"github.com/anonto42/circle/backend/internal/repositories"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrForbidden        = errors.New("forbidden")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
	ErrPostingTooFast   = errors.New("posting too fast")
	ErrBusy             = errors.New("another update for this item is in progress")
	ErrAlreadyDecided   = errors.New("verification request already decided")
	ErrAlreadyVerified  = errors.New("account already verified")
	ErrPendingRequest   = errors.New("verification request already pending")
	ErrConflict         = errors.New("already exists")
)

// storageErr lifts repository sentinels into service sentinels, keeping what for context
func storageErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, repositories.ErrInvalidID):
		return fmt.Errorf("%s: %w", what, ErrInvalidInput)
	case errors.Is(err, repositories.ErrDuplicate):
		return fmt.Errorf("%s: %w", what, ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}
