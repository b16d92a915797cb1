package reconciler

import (
	"errors"

	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
)

var (
	// ErrPermission means the session user lacks the editor role, or the
	// role could not be read.
	ErrPermission = errors.New("user does not have editor permissions")
	// ErrNotFound means the target row is not in the local tree.
	ErrNotFound = errors.New("not found")
)

// IsRemote reports whether err came from the row store.
func IsRemote(err error) bool {
	var roe *store.RemoteOperationError
	return errors.As(err, &roe)
}

// IsValidation reports whether err is a form-level validation failure.
func IsValidation(err error) bool {
	var ve *models.ValidationError
	return errors.As(err, &ve)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrPermission):
		return "denied"
	case IsValidation(err):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "remote_error"
	}
}
