package workerpool

import "errors"

const Namespace = "workerpool"

var (
	ErrZeroSizedPool = errors.New(Namespace + ": pool size must be greater than zero")
	ErrPoolClosed    = errors.New(Namespace + ": cannot submit a job to a closed pool")
	ErrNilJob        = errors.New(Namespace + ": job is nil")
	ErrJobPanicked   = errors.New(Namespace + ": job execution panicked")
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
)
