package dto

import "io"

// UploadedFile is a file taken from a multipart request.
type UploadedFile struct {
	Reader      io.Reader
	FileName    string
	Size        int64
	ContentType string
}

type MessageResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}
