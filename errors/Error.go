package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a coded error. Two Errors match under Is when their codes are
// equal, anywhere along the wrapped chain.
type Error struct {
	code       ERR
	message    string
	wrappedErr error
}

// Error renders as "CODE (n): message", followed by ": wrapped" when an
// error is wrapped.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%d): %s", e.code, int32(e.code), e.message)

	if e.wrappedErr != nil {
		sb.WriteString(": ")
		sb.WriteString(e.wrappedErr.Error())
	}

	return sb.String()
}

func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}

	if t, ok := target.(*Error); ok && t != nil && t.code == e.code {
		return true
	}

	return e.wrappedErr != nil && errors.Is(e.wrappedErr, target)
}

func (e *Error) As(target interface{}) bool {
	if e == nil {
		return false
	}

	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}

	return e.wrappedErr != nil && errors.As(e.wrappedErr, target)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.wrappedErr
}

func (e *Error) Code() ERR {
	if e == nil {
		return ERR_UNKNOWN
	}

	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}

	return e.message
}

func (e *Error) WrappedErr() error {
	if e == nil {
		return nil
	}

	return e.wrappedErr
}

// New creates a coded error. A trailing error parameter is wrapped and the
// rest format the message.
func New(code ERR, message string, params ...interface{}) *Error {
	var wrapped error

	if n := len(params); n > 0 {
		if err, ok := params[n-1].(error); ok {
			wrapped = err
			params = params[:n-1]
		}
	}

	if _, ok := ERR_name[int32(code)]; !ok {
		message = "invalid error code"
	} else if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}

	return &Error{
		code:       code,
		message:    message,
		wrappedErr: wrapped,
	}
}

// Join flattens the non-nil errors into a single comma separated error.
func Join(errs ...error) error {
	messages := make([]string, 0, len(errs))

	for _, err := range errs {
		if err != nil {
			messages = append(messages, err.Error())
		}
	}

	if len(messages) == 0 {
		return nil
	}

	return errors.New(strings.Join(messages, ", "))
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
