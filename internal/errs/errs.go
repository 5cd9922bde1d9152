package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidReference    = errors.New("invalid repository reference")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

var errorInvalidParamFmt = "invalid request params: %s %v"
var errorRecordNotFoundFmt = "%s not found: %s"
var errorMissingParamFmt = "missing required param: %s"

func NewInvalidParamErr(name string, value interface{}) error {
	return fmt.Errorf("%w: "+errorInvalidParamFmt, ErrInvalidInput, name, value)
}

func NewMissingParamError(names string) error {
	return fmt.Errorf("%w: "+errorMissingParamFmt, ErrInvalidInput, names)
}

func NewRecordNotFoundErr(kind string, id string) error {
	return fmt.Errorf("%w: "+errorRecordNotFoundFmt, ErrNotFound, kind, id)
}

func NewConflictErr(kind string, id string) error {
	return fmt.Errorf("%w: %s already exists: %s", ErrConflict, kind, id)
}

// UpstreamError is returned when the remote repository host could not serve a
// listing. Status is 0 for transport failures and timeouts.
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream unavailable: %v", e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("upstream unavailable: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("upstream unavailable: status %d", e.Status)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstreamUnavailable}
	}
	return []error{ErrUpstreamUnavailable, e.Err}
}

// AnalysisError wraps a failure raised inside the analysis sequence. The
// project has already been moved to the failed state when it is returned.
type AnalysisError struct {
	ProjectID string
	Err       error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis of %s failed: %v", e.ProjectID, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an error onto the status code returned by the API.
func HTTPStatus(err error) int {
	var analysisErr *AnalysisError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &analysisErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
