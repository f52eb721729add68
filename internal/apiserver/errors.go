package apiserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/malbeclabs/pathtracer/internal/blastradius"
	"github.com/malbeclabs/pathtracer/internal/collector"
)

// ErrorKind is one of the error categories spec.md §7 distinguishes.
type ErrorKind string

const (
	KindInput              ErrorKind = "input_error"
	KindNotFound           ErrorKind = "not_found"
	KindCollector          ErrorKind = "collector_error"
	KindPlugin             ErrorKind = "plugin_error"
	KindInvariantViolation ErrorKind = "invariant_violation"
)

// TraceError is the handler-level error shape, grounded on
// controlplane/internet-latency-collector/internal/collector/errors.go's
// CollectorError: a kind, the operation it happened in, a message, and
// an optional wrapped cause.
type TraceError struct {
	Kind      ErrorKind
	Operation string
	Message   string
	Cause     error
}

func (e *TraceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s in %s: %s: %v", e.Kind, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s in %s: %s", e.Kind, e.Operation, e.Message)
}

func (e *TraceError) Unwrap() error { return e.Cause }

func newInputError(op, msg string) *TraceError {
	return &TraceError{Kind: KindInput, Operation: op, Message: msg}
}

// newNotFoundError reports an unknown device/node (spec.md §6.3), as
// distinct from malformed input: the request was well-formed but named
// something that isn't in the inventory.
func newNotFoundError(op, msg string) *TraceError {
	return &TraceError{Kind: KindNotFound, Operation: op, Message: msg}
}

// statusFor maps an error to the HTTP status spec.md §6.3 prescribes:
// 404 for unknown device/node, 502 for collector-layer failure, 400 for
// malformed input, 500 otherwise.
func statusFor(err error) int {
	var traceErr *TraceError
	if errors.As(err, &traceErr) {
		switch traceErr.Kind {
		case KindInput:
			return http.StatusBadRequest
		case KindNotFound:
			return http.StatusNotFound
		case KindCollector:
			return http.StatusBadGateway
		case KindInvariantViolation:
			return http.StatusInternalServerError
		}
	}

	var collErr *collector.CollectorError
	if errors.As(err, &collErr) {
		return http.StatusBadGateway
	}

	var invalidNode *blastradius.InvalidNodeError
	if errors.As(err, &invalidNode) {
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

// writeError writes a JSON error body with the status statusFor(err)
// computes.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
