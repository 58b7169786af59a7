// Package status defines the structured error model shared by every
// latticefield component. Internal code may wrap errors with stack context
// via github.com/pkg/errors; the external interface adapter in package api
// is the only place that must translate a Status into the exit-code
// taxonomy callers see.
package status

import "fmt"

// Code is a stable status code in the ranges documented by the external
// interface: 0 success, 1-99 config, 100-199 memory, 200-299 runtime,
// 300-399 physics, 400-499 I/O, 500-599 cache, 900 not implemented, 999
// unknown.
type Code int

const (
	OK Code = 0

	// Configuration errors (1-99).
	InvalidDimensions  Code = 1
	InvalidRC          Code = 2
	InvalidDT          Code = 3
	InvalidKappa       Code = 4
	InvalidGamma       Code = 5
	InvalidLatticeSize Code = 6
	InvalidParameter   Code = 7

	// Memory errors (100-199).
	OutOfMemory      Code = 100
	CacheAllocFailed Code = 101

	// Runtime errors (200-299).
	NullHandle    Code = 200
	OutOfBounds   Code = 201
	InvalidHandle Code = 202

	// Physics errors (300-399).
	NumericalInstability Code = 300
	UnphysicalState      Code = 301

	// I/O errors (400-499).
	WisdomIOFailed  Code = 400
	WisdomDirFailed Code = 401

	// Cache errors (500-599).
	CacheNotBuilt      Code = 500
	CacheRebuildFailed Code = 501
	SpatialHashFailed  Code = 502

	NotImplemented Code = 900
	Unknown        Code = 999
)

// Status is the structured {code, message} value returned from every
// user-visible operation. It is a value type, not an error interface
// implementation, by design: Status crosses the external API boundary
// where Go errors and panics must not.
type Status struct {
	Code    Code
	Message string
}

// OKStatus is the canonical success value.
var OKStatus = Status{Code: OK, Message: ""}

// Ok reports whether s represents success.
func (s Status) Ok() bool {
	return s.Code == OK
}

// Error implements the error interface so Status can still be used with
// %w/errors.Is in internal code that prefers it, without requiring every
// caller to special-case Status.
func (s Status) Error() string {
	if s.Message == "" {
		return fmt.Sprintf("status %d", s.Code)
	}
	return fmt.Sprintf("status %d: %s", s.Code, s.Message)
}

// New constructs a Status with a formatted message.
func New(code Code, format string, args ...interface{}) Status {
	return Status{Code: code, Message: fmt.Sprintf(format, args...)}
}

// FromError wraps a generic error under Unknown, used at adapter
// boundaries that must not let a bare error escape.
func FromError(err error) Status {
	if err == nil {
		return OKStatus
	}
	if s, ok := err.(Status); ok {
		return s
	}
	return Status{Code: Unknown, Message: err.Error()}
}
