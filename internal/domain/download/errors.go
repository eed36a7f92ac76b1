package download

import "errors"

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrNoPhotosFound  = errors.New("no photos match the request")
	ErrInvalidRequest = errors.New("invalid download request")
)
