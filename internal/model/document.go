package model

import "time"

// Document represents an evidence file attached to a case.
// This is a pure domain model with no database-specific dependencies or tags.
// StoragePath is the object storage key; the bytes live in the storage layer.
type Document struct {
	ID           string       `json:"id"`
	DocumentType DocumentType `json:"documentType"`
	FileName     string       `json:"fileName"`
	StoragePath  string       `json:"storagePath"`
	FileSize     int64        `json:"fileSize"`
	MimeType     string       `json:"mimeType"`
	UploadedAt   time.Time    `json:"uploadedAt"`
	CaseID       string       `json:"caseId"`
}
