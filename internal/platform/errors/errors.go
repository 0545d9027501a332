package apperrors

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoRecords        = errors.New("no records")
	ErrProducerBusy     = errors.New("producer slot is busy")
	ErrSessionClosed    = errors.New("session is closed")
	ErrSessionLagging   = errors.New("session outbound queue is full")
	ErrRegistryClosed   = errors.New("registry is closed")
	ErrStoreUnavailable = errors.New("record store unavailable")
)
