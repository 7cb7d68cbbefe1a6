package domain

import "errors"

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
	ErrEmptyGameCode   = errors.New("game code is required")
)
