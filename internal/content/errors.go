package content

import (
	"errors"

	"github.com/sarkari/portal/internal/storage"
)

var (
	// ErrNotFound is returned when the target of an update or delete is absent.
	ErrNotFound = storage.ErrNotFound
	// ErrMissingJobID is returned when a child record has no parent job.
	ErrMissingJobID = errors.New("missing job id")
	// ErrMissingID is returned when an update or delete carries no id.
	ErrMissingID = errors.New("missing id")

	errWrongKind = errors.New("operation not supported for this collection")
)
