package comment

// AddCommentRequest adds a comment to a photo
type AddCommentRequest struct {
	AuthorName string `json:"author_name" validate:"omitempty,max=80"`
	Body       string `json:"body" validate:"required,min=1,max=1000"`
}
