package shared

type Post struct {
	Id         string    `json:"_id"`
	Username   string    `json:"username"`
	Caption    string    `json:"caption"`
	ImageUrl   string    `json:"file_url"`
	FileName   string    `json:"file_name,omitempty"`
	UploadedAt Timestamp `json:"upload_time"`
}

// ImageFile is an encoded image ready to be attached to a multipart upload.
type ImageFile struct {
	Name     string
	MimeType string
	Data     []byte
}
