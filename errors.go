package esl

import "errors"

var (
	// ErrDisconnected means the connection is gone. It is sticky: once a
	// Conn reports it, every further send or receive reports it too
	// until the Conn is closed.
	ErrDisconnected = errors.New("esl: disconnected")

	// ErrTimeout means a bounded send-and-receive or connect handshake
	// ran out of budget before the reply arrived. Bounded event receives
	// do not use it;
	// they return a nil event instead.
	ErrTimeout = errors.New("esl: timed out")

	// ErrAuthFailed means the server rejected the password during the
	// connect handshake.
	ErrAuthFailed = errors.New("esl: authentication failed")
)
