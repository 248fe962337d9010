package domain

import (
	"errors"
	"fmt"
)

// Kind buckets an error by how callers should treat it: validation errors are
// rejected and never retried, conflicts are safe to re-check with fresh state,
// configuration errors are fatal at startup, dependency errors are retried
// with backoff and then surfaced as stale.
type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindNotFound
	KindConfiguration
	KindDependency
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Msg == e.Msg
}

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

func Conflict(msg string) error { return &Error{Kind: KindConflict, Msg: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Msg: msg} }

func Configuration(msg string) error { return &Error{Kind: KindConfiguration, Msg: msg} }

func Dependency(msg string, err error) error {
	return &Error{Kind: KindDependency, Msg: msg, Err: err}
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err, or ok=false when err carries no taxonomy.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

var (
	ErrVoucherNotAvailable = Conflict("voucher assignment is not available for redemption")
	ErrVoucherInactive     = Conflict("voucher is inactive")
	ErrVoucherExpired      = Conflict("voucher is expired")
	ErrAlreadyAssigned     = Conflict("voucher is already assigned to this customer")
	ErrOverpayment         = Conflict("payment exceeds outstanding amount")
	ErrRateUnavailable     = Conflict("no withdrawal fee rate covers this merchant")
	ErrRateNotFound        = NotFound("no matching fee tier")
)
