// Package errors provides coded errors and utilities for categorizing them.
package errors

import (
	"context"
	"errors"
	"strings"
)

// IsRetryableError determines if an error is transient and the operation should be retried.
// This includes network timeouts, temporary unavailability, and other transient conditions.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var tErr *Error
	if As(err, &tErr) {
		switch tErr.Code() {
		case ERR_NETWORK_TIMEOUT,
			ERR_NETWORK_ERROR,
			ERR_NETWORK_CONNECTION_REFUSED,
			ERR_SERVICE_UNAVAILABLE,
			ERR_STORAGE_UNAVAILABLE:
			return true
		}
	}

	return false
}

// IsIntegrityError reports whether err, or any error it wraps, means the
// persisted ranges no longer agree with the chain. Such errors are never retried.
func IsIntegrityError(err error) bool {
	if err == nil {
		return false
	}

	return Is(err, ErrDataCorrupt) || Is(err, ErrConservation) || Is(err, ErrNotFound)
}

// IsNetworkError determines if an error is network-related.
// This includes timeouts, connection failures, and invalid responses.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var tErr *Error
	if As(err, &tErr) {
		switch tErr.Code() {
		case ERR_NETWORK_ERROR,
			ERR_NETWORK_TIMEOUT,
			ERR_NETWORK_CONNECTION_REFUSED,
			ERR_NETWORK_INVALID_RESPONSE:
			return true
		}
	}

	errStr := strings.ToLower(err.Error())
	networkStrings := []string{
		"connection refused",
		"connection reset",
		"dial tcp",
		"no such host",
		"i/o timeout",
		"broken pipe",
	}

	for _, s := range networkStrings {
		if strings.Contains(errStr, s) {
			return true
		}
	}

	return false
}

// IsContextError determines if an error is related to context cancellation or deadline.
func IsContextError(err error) bool {
	if err == nil {
		return false
	}

	if err == context.Canceled || err == context.DeadlineExceeded {
		return true
	}

	var tErr *Error
	if As(err, &tErr) {
		if tErr.Code() == ERR_CONTEXT_CANCELED {
			return true
		}
	}

	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// GetErrorCategory returns a string representing the category of the error.
// This is useful for logging and metrics.
func GetErrorCategory(err error) string {
	if err == nil {
		return "none"
	}

	if IsContextError(err) {
		return "context"
	}

	if IsNetworkError(err) {
		return "network"
	}

	if IsIntegrityError(err) {
		return "integrity"
	}

	var tErr *Error
	if As(err, &tErr) {
		code := tErr.Code()
		switch {
		case code >= 10 && code <= 19:
			return "block"
		case code >= 50 && code <= 59:
			return "service"
		case code >= 60 && code <= 69:
			return "storage"
		case code >= 70 && code <= 79:
			return "integrity"
		case code >= 110 && code <= 119:
			return "network"
		}
	}

	return "unknown"
}
