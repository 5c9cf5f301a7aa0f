package service

import "errors"

// Sentinel errors the handlers map onto HTTP status codes.
var (
	ErrEmailTaken         = errors.New("email taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomNotJoinable    = errors.New("room not found or not public")
	ErrNotRoomCreator     = errors.New("not the room creator")
	ErrInvalidSubject     = errors.New("invalid subject reference")
	ErrSubjectTaken       = errors.New("subject name taken")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrInvalidMessage     = errors.New("invalid message data")
)
