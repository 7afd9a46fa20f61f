package shared

type CreatePostRequest struct {
	Username string `json:"username"`
	Caption  string `json:"caption"`

	// nil selects the text-only JSON body
	Image *ImageFile `json:"-"`
}

type CreatePostResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Post
}

type DeletePostResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
