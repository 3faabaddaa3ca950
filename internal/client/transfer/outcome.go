package transfer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/privscan/internal/common"
)

// Kind is the terminal state of one transfer.
type Kind int

const (
	Success Kind = iota
	ServerRejected
	TimedOut
	TransportError
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case ServerRejected:
		return "server_rejected"
	case TimedOut:
		return "timed_out"
	case TransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Request describes one upload attempt.
type Request struct {
	SourcePath    string
	ServerBaseURL string
	EndpointPath  string
	// Filename is sent in X-Filename. Empty means the base name of SourcePath.
	Filename string
}

// Outcome is produced exactly once per started transfer.
type Outcome struct {
	Kind Kind
	// StatusCode is zero when no response was received.
	StatusCode int
	// Body holds a trimmed snippet of a rejection or a text confirmation.
	Body string
	// Payload is the decoded JSON document of a JSON success response.
	Payload any
	// SavedPath is where a raw response payload was written.
	SavedPath string
	Note      string
	Err       error
}

// Message renders the outcome as a short line for the user.
func (o Outcome) Message() string {
	switch o.Kind {
	case Success:
		switch {
		case o.Payload != nil:
			b, err := json.Marshal(o.Payload)
			if err != nil {
				return fmt.Sprintf("Success (JSON):\n%v", o.Payload)
			}
			return "Success (JSON):\n" + string(b)
		case o.SavedPath != "":
			return "Done! Saved response to:\n" + o.SavedPath
		case o.Note != "":
			return "Upload succeeded, " + o.Note + "."
		case o.Body != "":
			return "Success: " + o.Body
		default:
			return fmt.Sprintf("Success (%d)", o.StatusCode)
		}
	case ServerRejected:
		return fmt.Sprintf("Server error %d:\n%s", o.StatusCode, o.Body)
	case TimedOut:
		return "Timed out waiting for the server."
	default:
		msg := "unknown error"
		if o.Err != nil {
			msg = strings.TrimPrefix(o.Err.Error(), common.ErrTransport.Error()+": ")
		}
		return "Upload failed:\n" + msg
	}
}

// ValidationError reports a local problem found before any network I/O.
// It matches common.ErrLocalValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{common.ErrLocalValidation}
	}
	return []error{common.ErrLocalValidation, e.Err}
}
