// Maps domain errors to API errors.

package handlers

import (
	"errors"

	"github.com/sarkari/portal/internal/content"
	"github.com/sarkari/portal/internal/listing"
	"github.com/sarkari/portal/internal/notify"
	"github.com/sarkari/portal/internal/server/dto"
)

// apiError converts an error returned by a domain service into an APIError.
// resource names the missing thing in 404 messages.
func apiError(err error, resource string) error {
	var apiErr *dto.APIError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, content.ErrNotFound):
		return dto.NotFound(resource)
	case errors.Is(err, listing.ErrUnknownSection):
		return dto.NotFound("Section")
	case errors.Is(err, content.ErrMissingJobID):
		return dto.MissingField("Missing job ID")
	case errors.Is(err, content.ErrMissingID):
		return dto.MissingField("Missing id")
	case errors.Is(err, notify.ErrMissingEndpoint):
		return dto.MissingField("Missing endpoint")
	default:
		return dto.StorageError(err)
	}
}
