package core

import "errors"

var (
	ErrUnauthenticated  = errors.New("user not authenticated")
	ErrStoreFailure     = errors.New("document store failure")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidStatus    = errors.New("invalid status")
)
