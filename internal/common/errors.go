package common

import "errors"

var (

	// storage specific errors
	ErrUnknownUser = errors.New("unknown user")

	// session specific errors
	ErrInvalidToken = errors.New("invalid user token")

	// join specific errors
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrAlreadyJoined    = errors.New("already joined on the active session")

	// direct message specific errors
	ErrUnknownRecipient = errors.New("unknown recipient")
)
