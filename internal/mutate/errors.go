package mutate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// FieldErrors maps a form field (json name) to its inline message.
type FieldErrors map[string]string

// ValidationError is returned for input rejected before submission. It is
// never sent to the server.
type ValidationError struct {
	Fields FieldErrors
}

func (e ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// UserError carries the message shown to the user for a failed mutation.
type UserError struct {
	Message string
	Cause   error
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Cause }

// serverMessager is implemented by API errors that carry the server's message.
type serverMessager interface {
	ServerMessage() string
}

// Known server messages and the text shown instead. Matched case-insensitively
// as substrings, first match wins.
var reclassify = []struct {
	substr  string
	message string
}{
	{"already assigned", "This member is already on that team."},
	{"duplicate", "A record with the same details already exists."},
	{"foreign key", "That record is still referenced and cannot be changed."},
	{"not found", "That record no longer exists. Refresh and try again."},
}

var ErrCanceled = errors.New("request canceled")

// Friendly converts a mutation error into what the UI displays: the server's
// message, or a fixed phrase for known substrings. Validation errors pass
// through unchanged.
func Friendly(err error) error {
	if err == nil {
		return nil
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return err
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return &UserError{Message: ErrCanceled.Error(), Cause: err}
	}

	var sm serverMessager
	if !errors.As(err, &sm) && isTransport(err) {
		return &UserError{Message: "Could not reach the server: " + rootCause(err).Error(), Cause: err}
	}

	msg := err.Error()
	if sm != nil {
		msg = sm.ServerMessage()
	}
	lower := strings.ToLower(msg)
	for _, r := range reclassify {
		if strings.Contains(lower, r.substr) {
			return &UserError{Message: r.message, Cause: err}
		}
	}
	return &UserError{Message: msg, Cause: err}
}

func isTransport(err error) bool {
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded)
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
