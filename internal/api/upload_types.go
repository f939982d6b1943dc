package api

import "io"

// FileUpload is a document sent as the multipart "file" part.
type FileUpload struct {
	Filename string
	Content  io.Reader
}

// SubmitRequest carries the fields of the PO submission form.
type SubmitRequest struct {
	ReceivedDate string
	PONumber     string
	VendorName   string
	File         *FileUpload
}
