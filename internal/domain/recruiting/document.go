package recruiting

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/shared"
)

// DocumentKind classifies a candidate file
type DocumentKind string

const (
	DocumentKindResume      DocumentKind = "resume"
	DocumentKindCoverLetter DocumentKind = "cover_letter"
	DocumentKindPortfolio   DocumentKind = "portfolio"
	DocumentKindOther       DocumentKind = "other"
)

// IsValid checks if the kind is a known value
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindResume, DocumentKindCoverLetter, DocumentKindPortfolio, DocumentKindOther:
		return true
	}
	return false
}

// DocumentStatus tracks the upload lifecycle
type DocumentStatus string

const (
	// DocumentStatusPending means a presigned URL was issued but the upload is not confirmed
	DocumentStatusPending DocumentStatus = "pending"
	DocumentStatusActive  DocumentStatus = "active"
	DocumentStatusDeleted DocumentStatus = "deleted"
)

// AllowedDocumentContentTypes is the upload allow-list
var AllowedDocumentContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/rtf": true,
	"text/plain":      true,
	"image/png":       true,
	"image/jpeg":      true,
}

// Document errors
var (
	ErrChecksumMismatch   = shared.NewDomainError("CHECKSUM_MISMATCH", "Uploaded file does not match the declared checksum")
	ErrUploadNotFound     = shared.NewDomainError("UPLOAD_NOT_FOUND", "The file has not been uploaded yet")
	ErrDocumentNotActive  = shared.NewDomainError("DOCUMENT_NOT_ACTIVE", "Document upload has not been confirmed")
	ErrInvalidContentType = shared.NewDomainError("INVALID_CONTENT_TYPE", "File type is not allowed")
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// CandidateDocument is a file attached to a candidate, stored in object storage
type CandidateDocument struct {
	shared.OrgAggregateRoot
	CandidateID uuid.UUID
	Kind        DocumentKind
	FileName    string
	ContentType string
	FileSize    int64
	Checksum    string // base64 MD5, as sent in Content-MD5
	StorageKey  string
	Status      DocumentStatus
	ConfirmedAt *time.Time
}

// NewCandidateDocument creates a pending document and assigns its storage key
func NewCandidateDocument(organizationID, candidateID, uploadedBy uuid.UUID, kind DocumentKind, fileName, contentType string, fileSize, maxSize int64, checksum string) (*CandidateDocument, error) {
	if candidateID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CANDIDATE", "Candidate is required")
	}
	if kind == "" {
		kind = DocumentKindOther
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_KIND", "Unknown document kind")
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !AllowedDocumentContentTypes[contentType] {
		return nil, ErrInvalidContentType
	}
	if fileSize <= 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size must be positive")
	}
	if maxSize > 0 && fileSize > maxSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", fmt.Sprintf("File size cannot exceed %d bytes", maxSize))
	}
	checksum = strings.TrimSpace(checksum)
	if _, err := DecodeChecksum(checksum); err != nil {
		return nil, err
	}
	name := SanitizeFileName(fileName)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name is required")
	}

	doc := &CandidateDocument{
		OrgAggregateRoot: shared.NewOrgAggregateRootWithCreator(organizationID, uploadedBy),
		CandidateID:      candidateID,
		Kind:             kind,
		FileName:         name,
		ContentType:      contentType,
		FileSize:         fileSize,
		Checksum:         checksum,
		Status:           DocumentStatusPending,
	}
	doc.StorageKey = fmt.Sprintf("organizations/%s/candidates/%s/%s/%s", organizationID, candidateID, doc.ID, name)
	return doc, nil
}

// ChecksumHex returns the MD5 as lowercase hex, the form S3 reports in ETags
func (d *CandidateDocument) ChecksumHex() string {
	raw, err := DecodeChecksum(d.Checksum)
	if err != nil {
		return ""
	}
	return hex.EncodeToString(raw)
}

// MatchesETag compares the declared checksum with an object ETag.
// Multipart ETags ("<hash>-<parts>") are not content MD5s and are accepted as-is.
func (d *CandidateDocument) MatchesETag(etag string) bool {
	etag = strings.Trim(etag, `"`)
	if etag == "" || strings.Contains(etag, "-") {
		return true
	}
	return strings.EqualFold(etag, d.ChecksumHex())
}

// Confirm activates a pending document once the object is in storage
func (d *CandidateDocument) Confirm() error {
	if d.Status != DocumentStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending documents can be confirmed")
	}
	now := shared.Now()
	d.Status = DocumentStatusActive
	d.ConfirmedAt = &now
	d.UpdatedAt = now
	d.IncrementVersion()
	d.AddDomainEvent(NewDocumentConfirmedEvent(d))
	return nil
}

// Delete marks the document deleted
func (d *CandidateDocument) Delete() error {
	if d.Status == DocumentStatusDeleted {
		return shared.NewDomainError("ALREADY_DELETED", "Document is already deleted")
	}
	d.Status = DocumentStatusDeleted
	d.Touch()
	d.IncrementVersion()
	return nil
}

// IsActive returns true if the document can be downloaded
func (d *CandidateDocument) IsActive() bool {
	return d.Status == DocumentStatusActive
}

// DecodeChecksum parses a base64 MD5 digest
func DecodeChecksum(checksum string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(checksum))
	if err != nil || len(raw) != 16 {
		return nil, shared.NewDomainError("INVALID_CHECKSUM", "Checksum must be a base64-encoded MD5 digest")
	}
	return raw, nil
}

// SanitizeFileName keeps the base name and replaces unsafe characters
func SanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	name = unsafeFileChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if len(name) > 200 {
		ext := path.Ext(name)
		if len(ext) > 20 {
			ext = ""
		}
		name = name[:200-len(ext)] + ext
	}
	return name
}
