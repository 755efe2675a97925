package classifier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"github.com/openai/openai-go/v3"
)

// Backend failure taxonomy. All of these are per-file errors: the file is
// left unrenamed and reported, and processing continues with the next one.
var (
	ErrAuth       = errors.New("backend authentication failed")
	ErrConnection = errors.New("backend unreachable")
	ErrTimeout    = errors.New("backend request timed out")
)

// classifyErr maps a transport-level error onto the taxonomy above. Unknown
// errors count as connection failures since from the pipeline's point of view
// the backend did not answer.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAuth) || errors.Is(err, ErrConnection) || errors.Is(err, ErrTimeout) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return fmt.Errorf("%w: %v", ErrConnection, err)
}
