package services

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrMealNotFound       = errors.New("meal not found")
	ErrAlreadyConfirmed   = errors.New("meal already confirmed")
	ErrFriendshipNotFound = errors.New("friend request not found")
	ErrSelfFriendship     = errors.New("cannot befriend yourself")
	ErrLLMUnavailable     = errors.New("text generation unavailable")
	ErrInvalidTime        = errors.New("time must be HH:MM")
	ErrInvalidInput       = errors.New("invalid input")
)
