package errcode

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Infeasible means no divider combination satisfies the hardware
	// legality constraints for a requested frequency. Fatal: the clock
	// tree is foundational and cannot be retried with the same inputs.
	Infeasible Code = "infeasible"

	// Conflict means the caller supplied mutually incompatible explicit
	// targets. Detected at freeze time, also fatal.
	Conflict Code = "conflict"

	// Consumed means a single-use value (the RCC configuration, a
	// peripheral handle) was used a second time.
	Consumed Code = "consumed"

	InUse             Code = "in_use"
	UnknownPeripheral Code = "unknown_peripheral"
	OutOfRange        Code = "out_of_range"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
