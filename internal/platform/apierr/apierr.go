package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for retry and surfacing decisions.
type Kind string

const (
	KindInvalidArgument    Kind = "invalid_argument"
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindDependencyNotReady Kind = "dependency_not_ready"
	KindGenerationFailure  Kind = "generation_failure"
	KindInternal           Kind = "internal"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrDependencyNotReady = errors.New("dependency not ready")
	ErrGenerationFailure  = errors.New("generation failure")
)

type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "keys.Make" or "scope.Resolve".
	Op   string
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Code
	if e.Err != nil {
		if msg != "" {
			msg = msg + ": " + e.Err.Error()
		} else {
			msg = e.Err.Error()
		}
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) match any *Error of the matching kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return sentinelFor(e.Kind) == target
}

func New(kind Kind, op, code string, err error) *Error {
	return &Error{Kind: kind, Op: op, Code: code, Err: err}
}

func InvalidArgument(op, code string) error {
	return New(KindInvalidArgument, op, code, nil)
}

func NotFound(op, code string) error {
	return New(KindNotFound, op, code, nil)
}

func Forbidden(op, code string) error {
	return New(KindForbidden, op, code, nil)
}

func DependencyNotReady(op, code string) error {
	return New(KindDependencyNotReady, op, code, nil)
}

func GenerationFailure(op string, cause error) error {
	return New(KindGenerationFailure, op, "", cause)
}

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != "" {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrDependencyNotReady):
		return KindDependencyNotReady
	case errors.Is(err, ErrGenerationFailure):
		return KindGenerationFailure
	}
	return KindInternal
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case "":
		return http.StatusOK
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindDependencyNotReady:
		return http.StatusConflict
	case KindGenerationFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func sentinelFor(k Kind) error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindNotFound:
		return ErrNotFound
	case KindForbidden:
		return ErrForbidden
	case KindDependencyNotReady:
		return ErrDependencyNotReady
	case KindGenerationFailure:
		return ErrGenerationFailure
	}
	return nil
}
