package event

import "errors"

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotEventHost  = errors.New("not the event host")
	ErrSlugTaken     = errors.New("slug already taken")
)
