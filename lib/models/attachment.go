package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// AttachmentUploadRequest represents a request to get an upload URL for a
// supporting document before the permit request is submitted
type AttachmentUploadRequest struct {
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

// AttachmentUploadResponse represents the response with presigned URL. The
// attachment descriptor is meant to be sent back inside the permit draft.
type AttachmentUploadResponse struct {
	Attachment Attachment `json:"attachment"`
	UploadURL  string     `json:"upload_url"`
	ExpiresAt  string     `json:"expires_at"`
}

// AttachmentDownloadResponse represents the response with download URL
type AttachmentDownloadResponse struct {
	DownloadURL string `json:"download_url"`
	FileName    string `json:"file_name"`
	MimeType    string `json:"mime_type"`
	ExpiresAt   string `json:"expires_at"`
}

// MaxAttachmentSize is the largest accepted upload (10MB)
const MaxAttachmentSize = 10 * 1024 * 1024

// DataURLPrefix marks attachments whose content is inlined in the record
const DataURLPrefix = "data:"

var attachmentMimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ValidateFileType checks if the file type is allowed
func ValidateFileType(fileName string) bool {
	_, ok := attachmentMimeTypes[strings.ToLower(filepath.Ext(fileName))]
	return ok
}

// IsAllowedMimeType reports whether mimeType is one of the accepted types
func IsAllowedMimeType(mimeType string) bool {
	for _, allowed := range attachmentMimeTypes {
		if allowed == mimeType {
			return true
		}
	}
	return false
}

// GetMimeType returns the MIME type for a file based on its extension
func GetMimeType(fileName string) string {
	if mimeType, exists := attachmentMimeTypes[strings.ToLower(filepath.Ext(fileName))]; exists {
		return mimeType
	}
	return "application/octet-stream"
}

// GenerateAttachmentS3Key creates the S3 key of an uploaded attachment
func GenerateAttachmentS3Key(attachmentID, fileName string, uploadedAt time.Time) string {
	cleanFileName := strings.ReplaceAll(filepath.Base(fileName), " ", "_")
	return fmt.Sprintf("attachments/%s/%s_%s",
		uploadedAt.UTC().Format("2006/01/02"), attachmentID, cleanFileName)
}

// IsInline reports whether the attachment content is stored in the record
func (a *Attachment) IsInline() bool {
	return strings.HasPrefix(a.ContentRef, DataURLPrefix)
}
