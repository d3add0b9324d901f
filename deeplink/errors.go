package deeplink

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Sentinel errors. Every typed error below reports its sentinel through Is,
// so callers can use errors.Is without knowing the concrete type.
var (
	// ErrSyntax is returned for malformed template source strings.
	ErrSyntax = errors.New("deeplink: invalid template syntax")

	// ErrConsecutiveArguments is returned when two arguments are declared
	// with no literal text between them.
	ErrConsecutiveArguments = errors.New("deeplink: consecutive arguments")

	// ErrDuplicateArgument is returned when a template binds the same field
	// path more than once.
	ErrDuplicateArgument = errors.New("deeplink: duplicate argument")

	// ErrUnknownField is returned when a field path does not resolve to a
	// supported field of the record type.
	ErrUnknownField = errors.New("deeplink: unknown field")

	// ErrMalformedURL is returned when a URL has no structured components.
	ErrMalformedURL = errors.New("deeplink: malformed url")

	// ErrLiteralMismatch is returned when a literal of the template is not
	// found where it is expected in the URL.
	ErrLiteralMismatch = errors.New("deeplink: literal mismatch")

	// ErrBind is returned when a captured value cannot be written to its field.
	ErrBind = errors.New("deeplink: bind failed")

	// ErrRejected is recorded when a handler declines a structural match.
	ErrRejected = errors.New("deeplink: handler rejected match")

	// ErrHandler is recorded when a handler fails.
	ErrHandler = errors.New("deeplink: handler failed")

	// ErrNoMatch is returned when no registration claims a URL.
	ErrNoMatch = errors.New("deeplink: no matching registration")

	// ErrShadowed is returned by VerifySample when an earlier registration
	// claims the sample URL.
	ErrShadowed = errors.New("deeplink: registration shadowed")
)

// SyntaxError reports a malformed template source string.
type SyntaxError struct {
	Pattern string
	Reason  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("deeplink: invalid template %q: %s", e.Pattern, e.Reason)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// ConsecutiveArgumentsError reports two arguments with no literal between them.
type ConsecutiveArgumentsError struct {
	First  string
	Second string
}

func (e *ConsecutiveArgumentsError) Error() string {
	return fmt.Sprintf("deeplink: arguments %q and %q are consecutive, a literal is required between them", e.First, e.Second)
}

func (e *ConsecutiveArgumentsError) Is(target error) bool { return target == ErrConsecutiveArguments }

// DuplicateArgumentError reports a field path bound more than once.
type DuplicateArgumentError struct {
	Field string
}

func (e *DuplicateArgumentError) Error() string {
	return fmt.Sprintf("deeplink: argument %q is declared more than once", e.Field)
}

func (e *DuplicateArgumentError) Is(target error) bool { return target == ErrDuplicateArgument }

// UnknownFieldError reports a field path that cannot be bound on Type.
type UnknownFieldError struct {
	Type  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("deeplink: type %s has no bindable field %q", e.Type, e.Field)
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }

// MalformedURLError reports a URL that cannot yield a relative reference.
type MalformedURLError struct {
	URL string
	Err error
}

func (e *MalformedURLError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("deeplink: cannot extract url components from %q: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("deeplink: cannot extract url components from %q", e.URL)
}

func (e *MalformedURLError) Is(target error) bool { return target == ErrMalformedURL }

func (e *MalformedURLError) Unwrap() error { return e.Err }

// LiteralMismatchError reports the part of the relative reference that could
// not be matched and the template literal (or template description) that
// failed against it.
type LiteralMismatchError struct {
	Remainder string
	Literal   string
}

func (e *LiteralMismatchError) Error() string {
	return fmt.Sprintf("deeplink: path %q does not match %q", e.Remainder, e.Literal)
}

func (e *LiteralMismatchError) Is(target error) bool { return target == ErrLiteralMismatch }

// BindError reports a captured value that could not be assigned.
type BindError struct {
	Field string
	Value string
	Err   error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("deeplink: cannot bind %q to %q: %v", e.Value, e.Field, e.Err)
}

func (e *BindError) Is(target error) bool { return target == ErrBind }

func (e *BindError) Unwrap() error { return e.Err }

// RejectedError is recorded when the handler of Template returned false.
type RejectedError struct {
	Template string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("deeplink: handler for %q rejected the match", e.Template)
}

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

// HandlerError wraps an error returned by the handler of Template.
type HandlerError struct {
	Template string
	Err      error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("deeplink: handler for %q failed: %v", e.Template, e.Err)
}

func (e *HandlerError) Is(target error) bool { return target == ErrHandler }

func (e *HandlerError) Unwrap() error { return e.Err }

// NoMatchError is returned when no registration claimed URL. Errors holds one
// entry per attempted registration, in registration order.
type NoMatchError struct {
	URL    *url.URL
	Errors []error
}

func (e *NoMatchError) Error() string {
	var b strings.Builder
	b.WriteString("deeplink: no matching registration found for ")
	if e.URL != nil {
		b.WriteString(fmt.Sprintf("%q", e.URL.String()))
	} else {
		b.WriteString("<nil>")
	}
	for _, err := range e.Errors {
		b.WriteString("\n\t")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *NoMatchError) Is(target error) bool { return target == ErrNoMatch }

func (e *NoMatchError) Unwrap() []error { return e.Errors }

// ShadowedError is returned by VerifySample when ClaimedBy, registered
// before Template, claimed the sample URL.
type ShadowedError struct {
	Template  string
	ClaimedBy string
}

func (e *ShadowedError) Error() string {
	return fmt.Sprintf("deeplink: %q is shadowed by earlier registration %q", e.Template, e.ClaimedBy)
}

func (e *ShadowedError) Is(target error) bool { return target == ErrShadowed }
