package models

import "strings"

type File struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mime_type"`
	BunnyUrl     string `json:"bunny_url,omitempty"`
	FileType     string `json:"file_type"`
	UploadedAt   string `json:"uploaded_at"`
}

const (
	FileTypeImage    = "image"
	FileTypeDocument = "document"
	FileTypeOther    = "other"
)

// FileTypeFromMime clasifica un archivo según su tipo MIME
func FileTypeFromMime(mimeType string) string {
	if strings.HasPrefix(mimeType, "image/") {
		return FileTypeImage
	}
	if strings.Contains(mimeType, "pdf") || strings.Contains(mimeType, "document") || strings.Contains(mimeType, "text") {
		return FileTypeDocument
	}
	return FileTypeOther
}
