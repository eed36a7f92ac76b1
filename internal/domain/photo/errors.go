package photo

import "errors"

var (
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrNotPhotoOwner     = errors.New("you can only manage your own photos")
	ErrUploadNotVerified = errors.New("upload could not be verified")
)
