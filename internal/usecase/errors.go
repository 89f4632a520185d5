package usecase

import (
	"errors"
	"fmt"

	"skill-swap/internal/domain/swap"
	"skill-swap/internal/repository"
)

var ErrInternal = errors.New("internal error")

// translateStoreError maps repository failures onto the domain taxonomy. Errors
// already carrying a domain sentinel pass through.
func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrSwapNotFound):
		return fmt.Errorf("%w: swap not found", swap.ErrNotFound)
	case errors.Is(err, repository.ErrSwapDuplicate):
		return fmt.Errorf("%w: an active swap for this exchange already exists", swap.ErrConflict)
	case errors.Is(err, repository.ErrSwapVersionConflict):
		return fmt.Errorf("%w: swap was modified concurrently, retry", swap.ErrConflict)
	case isDomainError(err):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		swap.ErrValidation,
		swap.ErrAuthorization,
		swap.ErrNotFound,
		swap.ErrInvalidState,
		swap.ErrConflict,
		swap.ErrAlreadyRated,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
