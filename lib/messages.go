package lib

import "instavibe/shared"

const (
	MsgEnterUsername = "Please enter a username"
	MsgEnterCaption  = "Please enter a caption"
	MsgTakePhoto     = "Please take a photo first"

	MsgUploadFailed   = "Upload failed"
	MsgServerWaking   = "Server error. The backend might be waking up. Please try again in 30 seconds."
	MsgNetworkError   = "Network error. Please check your internet connection."
	MsgCheckInput     = "Please check your input"
	MsgPhotoPosted    = "Post created successfully with your photo! 📸"
	MsgTextPostPosted = "Post created successfully!"

	MsgFailedToLoad   = "Failed to load posts"
	MsgInvalidFormat  = "Invalid data format received from server"
	MsgFailedToDelete = "Failed to delete post"
	MsgNoPosts        = "No posts found. Be the first to create a post!"
)

const PlaceholderImageUrl = "https://via.placeholder.com/300x300?text=Image+Error"

// UploadErrorMessage turns a failed upload into the message shown to the user.
func UploadErrorMessage(apiErr *shared.ApiError) string {
	if apiErr == nil {
		return ""
	}

	switch apiErr.Type {
	case shared.ApiErrorTypeNetwork:
		return MsgNetworkError
	case shared.ApiErrorTypeServerTransient:
		return MsgServerWaking
	case shared.ApiErrorTypeBadRequest:
		msg := apiErr.Msg
		if msg == "" {
			msg = MsgCheckInput
		}
		return "Bad request: " + msg
	case shared.ApiErrorTypeDataFormat:
		return MsgUploadFailed
	}

	if apiErr.Msg != "" {
		return apiErr.Msg
	}
	return MsgUploadFailed
}

// FeedErrorMessage maps a failed listing to the message shown in place of the feed.
func FeedErrorMessage(apiErr *shared.ApiError) string {
	if apiErr != nil && apiErr.Type == shared.ApiErrorTypeDataFormat {
		return MsgInvalidFormat
	}
	return MsgFailedToLoad
}
