package services

/*
Result is the outcome of one branch of a fan-out. A degraded branch
carries the error that caused it so it can be logged, but it is never
returned to the caller of the pipeline.
*/
type Result[T any] struct {
	Value T
	Err   error
}

func Succeeded[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

func Degraded[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

func (r Result[T]) IsDegraded() bool {
	return r.Err != nil
}

func (r Result[T]) ValueOr(fallback T) T {
	if r.IsDegraded() {
		return fallback
	}

	return r.Value
}
