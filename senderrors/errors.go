package senderrors

import "errors"

var (
	ErrConnRefused   = errors.New("connection refused") // a connect() on a stream socket found no one listening on the remote address
	ErrDial          = errors.New("could not connect")
	ErrTransmit      = errors.New("transmission failed")
	ErrCancelled     = errors.New("operation cancelled")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrInvalidOrder  = errors.New("invalid order")
)
