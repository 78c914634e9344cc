package sdapi

import (
	"errors"
	"fmt"
)

// ErrDetailerMissing means the server answered but the ADetailer script is
// not installed, so detection-refinement passes cannot run. This is a
// capability problem the user has to fix on the server, never a retry case.
var ErrDetailerMissing = errors.New("ADetailer script not found on the server (install the adetailer extension)")

// StatusError is any non-200 response from the server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: status %d", e.Code)
}

// ModelNotFoundError means no installed checkpoint matched the configured
// keyword.
type ModelNotFoundError struct {
	Keyword string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %q not found on the server; download it into models/Stable-diffusion", e.Keyword)
}
