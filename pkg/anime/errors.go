package anime

import (
	"errors"
	"fmt"
)

var (
	ErrDetectionInsufficient = errors.New("could not detect anime information on this page")
	ErrUnsupportedSite       = errors.New("unsupported site")
	ErrNotFound              = errors.New("anime not found")
	ErrInvalidCredential     = errors.New("invalid token or username")
)

// RemoteAPIError carries the first message of a GraphQL errors[] payload.
type RemoteAPIError struct {
	Message string
}

func (e *RemoteAPIError) Error() string {
	return e.Message
}

// NetworkError is a transport-level failure talking to a remote service.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// WriteError wraps a failed progress write.
type WriteError struct {
	MediaID int
	Episode int
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to update anime %d to episode %d: %v", e.MediaID, e.Episode, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// RequiresAttention reports whether err means a believed-successful update did
// not happen, which warrants more than a transient notice.
func RequiresAttention(err error) bool {
	var we *WriteError
	if !errors.As(err, &we) {
		return false
	}
	var apiErr *RemoteAPIError
	var netErr *NetworkError
	return errors.As(we.Err, &apiErr) || errors.As(we.Err, &netErr)
}
