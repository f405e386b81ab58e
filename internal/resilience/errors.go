package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
)

// Failure taxonomy shared by every external-call boundary. Adapters wrap
// their underlying cause with one of these so callers can classify with
// errors.Is without knowing the transport.
var (
	// ErrSourceUnavailable marks a fetch or adapter failure. Always
	// recoverable: the caller degrades to an empty contribution.
	ErrSourceUnavailable = eris.New("source unavailable")

	// ErrOracleUnavailable marks a reasoning oracle that is not configured or
	// failed. The affected bottleneck is excluded from scoring.
	ErrOracleUnavailable = eris.New("oracle unavailable")

	// ErrMalformedOracleResponse marks oracle output that could not be decoded
	// into the expected verdict. Treated like ErrOracleUnavailable.
	ErrMalformedOracleResponse = eris.New("malformed oracle response")

	// ErrConfigurationMissing marks an absent catalog or credential. Fatal
	// only to the stage that needs it.
	ErrConfigurationMissing = eris.New("configuration missing")
)

// SourceUnavailable wraps err as ErrSourceUnavailable for the named source.
func SourceUnavailable(source string, err error) error {
	if err == nil {
		return eris.Wrapf(ErrSourceUnavailable, "%s", source)
	}
	return eris.Wrapf(ErrSourceUnavailable, "%s: %v", source, err)
}

// OracleUnavailable wraps err as ErrOracleUnavailable.
func OracleUnavailable(err error) error {
	if err == nil {
		return ErrOracleUnavailable
	}
	return eris.Wrapf(ErrOracleUnavailable, "%v", err)
}

// MalformedOracleResponse wraps a decode failure as ErrMalformedOracleResponse.
func MalformedOracleResponse(reason string) error {
	return eris.Wrapf(ErrMalformedOracleResponse, "%s", reason)
}

// ConfigurationMissing reports which setting is absent.
func ConfigurationMissing(what string) error {
	return eris.Wrapf(ErrConfigurationMissing, "%s", what)
}

// TransientError wraps an error that is safe to retry (429, 5xx, timeouts).
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as transient with an optional HTTP status code.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

var transientPatterns = []string{
	"connection reset by peer",
	"broken pipe",
	"temporary failure in name resolution",
	"tls handshake timeout",
	"i/o timeout",
	"server closed idle connection",
}

// IsTransient reports whether err is worth retrying: an explicit
// TransientError, a network timeout, a reset/refused connection, or one of
// the well-known transport messages.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus reports whether an HTTP status is worth retrying.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
