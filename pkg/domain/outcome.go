package domain

// Status tags an Outcome.
type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Outcome attaches an in-flight status to a payload. It always carries the
// payload, so Map can be applied whatever the status is.
type Outcome[T any] struct {
	Status Status
	Data   T
	Err    error // Set only when Status == StatusError
}

// Loading wraps data in the Loading status.
func Loading[T any](data T) Outcome[T] {
	return Outcome[T]{Status: StatusLoading, Data: data}
}

// Success wraps data in the Success status.
func Success[T any](data T) Outcome[T] {
	return Outcome[T]{Status: StatusSuccess, Data: data}
}

// Failure wraps data in the Error status with its cause.
func Failure[T any](data T, cause error) Outcome[T] {
	return Outcome[T]{Status: StatusError, Data: data, Err: cause}
}

// Map transforms the payload, keeping the status tag and the error cause.
func Map[T, U any](o Outcome[T], fn func(T) U) Outcome[U] {
	return Outcome[U]{Status: o.Status, Data: fn(o.Data), Err: o.Err}
}

// IsLoading reports whether the outcome is in flight.
func (o Outcome[T]) IsLoading() bool { return o.Status == StatusLoading }

// IsError reports whether the outcome failed.
func (o Outcome[T]) IsError() bool { return o.Status == StatusError }

// Unit is the payload of outcomes that only carry a status.
type Unit struct{}

// UIState is one emission of the combined status+step stream.
// Seq increases with every emission of an engine, so two emissions carrying
// the same logical step are still distinct events.
type UIState struct {
	Outcome[Step]
	Seq uint64
}

// Step returns the step carried by the emission.
func (s UIState) Step() Step { return s.Data }
