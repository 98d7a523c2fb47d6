package recruiting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
)

// ErrStorageDisabled is returned when no object store is configured
var ErrStorageDisabled = shared.NewDomainError("STORAGE_DISABLED", "Document storage is not configured")

// DocumentSettings bounds uploads and presigned URLs
type DocumentSettings struct {
	MaxUploadSize int64
	URLExpiry     time.Duration
}

// DocumentService manages candidate files held in object storage.
// Uploads go straight from the client to storage through presigned URLs.
type DocumentService struct {
	docRepo       recruiting.DocumentRepository
	candidateRepo recruiting.CandidateRepository
	storage       ObjectStorage
	settings      DocumentSettings
	publisher     shared.EventPublisher
	logger        *zap.Logger
}

// NewDocumentService creates a new DocumentService. storage may be nil, which
// disables every document operation.
func NewDocumentService(
	docRepo recruiting.DocumentRepository,
	candidateRepo recruiting.CandidateRepository,
	storage ObjectStorage,
	settings DocumentSettings,
	logger *zap.Logger,
) *DocumentService {
	if settings.URLExpiry <= 0 {
		settings.URLExpiry = 15 * time.Minute
	}
	return &DocumentService{
		docRepo:       docRepo,
		candidateRepo: candidateRepo,
		storage:       storage,
		settings:      settings,
		logger:        logger,
	}
}

// SetEventPublisher sets the publisher for document events
func (s *DocumentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// InitiateUpload records a pending document and returns a presigned PUT for it
func (s *DocumentService) InitiateUpload(ctx context.Context, viewer recruiting.Viewer, candidateID uuid.UUID, req InitiateUploadRequest) (*UploadTicket, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	if _, err := s.candidate(ctx, viewer.OrganizationID, candidateID); err != nil {
		return nil, err
	}
	doc, err := recruiting.NewCandidateDocument(
		viewer.OrganizationID, candidateID, viewer.UserID,
		recruiting.DocumentKind(req.Kind), req.FileName, req.ContentType,
		req.FileSize, s.settings.MaxUploadSize, req.Checksum,
	)
	if err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	presigned, err := s.storage.PresignUpload(ctx, doc.StorageKey, doc.ContentType, doc.Checksum, doc.FileSize, s.settings.URLExpiry)
	if err != nil {
		if delErr := s.docRepo.Delete(ctx, viewer.OrganizationID, doc.ID); delErr != nil {
			s.logger.Warn("Failed to drop pending document", zap.String("document_id", doc.ID.String()), zap.Error(delErr))
		}
		s.logger.Error("Failed to presign upload", zap.String("document_id", doc.ID.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Document upload initiated",
		zap.String("document_id", doc.ID.String()),
		zap.String("candidate_id", candidateID.String()),
		zap.Int64("size", doc.FileSize))
	return &UploadTicket{
		Document:  toDocumentResponse(doc),
		UploadURL: presigned.URL,
		Method:    presigned.Method,
		Headers:   presigned.Headers,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

// ConfirmUpload verifies the stored object and activates the document.
// A confirmed resume becomes the candidate's current resume.
func (s *DocumentService) ConfirmUpload(ctx context.Context, viewer recruiting.Viewer, documentID uuid.UUID) (*DocumentResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	doc, err := s.document(ctx, viewer.OrganizationID, documentID)
	if err != nil {
		return nil, err
	}
	if doc.IsActive() {
		resp := toDocumentResponse(doc)
		return &resp, nil
	}

	info, err := s.storage.StatObject(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, recruiting.ErrUploadNotFound
		}
		return nil, err
	}
	if info.Size != doc.FileSize || !doc.MatchesETag(info.ETag) {
		s.logger.Warn("Uploaded object does not match the declared file",
			zap.String("document_id", doc.ID.String()),
			zap.Int64("declared_size", doc.FileSize),
			zap.Int64("stored_size", info.Size))
		return nil, recruiting.ErrChecksumMismatch
	}

	if err := doc.Confirm(); err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}
	if doc.Kind == recruiting.DocumentKindResume {
		candidate, err := s.candidate(ctx, viewer.OrganizationID, doc.CandidateID)
		if err != nil {
			return nil, err
		}
		candidate.SetResume(doc.ID)
		if err := s.candidateRepo.Save(ctx, candidate); err != nil {
			return nil, err
		}
	}
	publishEvents(ctx, s.publisher, s.logger, doc)

	s.logger.Info("Document confirmed", zap.String("document_id", doc.ID.String()))
	resp := toDocumentResponse(doc)
	return &resp, nil
}

// Download returns a presigned GET for an active document
func (s *DocumentService) Download(ctx context.Context, viewer recruiting.Viewer, documentID uuid.UUID) (*DownloadLink, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	doc, err := s.document(ctx, viewer.OrganizationID, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.IsActive() {
		return nil, recruiting.ErrDocumentNotActive
	}
	presigned, err := s.storage.PresignDownload(ctx, doc.StorageKey, doc.FileName, s.settings.URLExpiry)
	if err != nil {
		return nil, err
	}
	return &DownloadLink{URL: presigned.URL, ExpiresAt: presigned.ExpiresAt}, nil
}

// List returns the non-deleted documents of a candidate
func (s *DocumentService) List(ctx context.Context, viewer recruiting.Viewer, candidateID uuid.UUID) ([]DocumentResponse, error) {
	if _, err := s.candidate(ctx, viewer.OrganizationID, candidateID); err != nil {
		return nil, err
	}
	docs, err := s.docRepo.FindByCandidate(ctx, viewer.OrganizationID, candidateID)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		if d.Status == recruiting.DocumentStatusDeleted {
			continue
		}
		out = append(out, toDocumentResponse(d))
	}
	return out, nil
}

// Delete marks a document deleted and removes its object. The row is kept so
// the upload stays auditable; a failed object removal only logs.
func (s *DocumentService) Delete(ctx context.Context, viewer recruiting.Viewer, documentID uuid.UUID) error {
	doc, err := s.document(ctx, viewer.OrganizationID, documentID)
	if err != nil {
		return err
	}
	if err := doc.Delete(); err != nil {
		return err
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		return err
	}

	candidate, err := s.candidate(ctx, viewer.OrganizationID, doc.CandidateID)
	if err != nil {
		return err
	}
	if candidate.ClearResume(doc.ID) {
		if err := s.candidateRepo.Save(ctx, candidate); err != nil {
			return err
		}
	}

	if s.storage != nil {
		if err := s.storage.DeleteObject(ctx, doc.StorageKey); err != nil {
			s.logger.Warn("Failed to delete document object",
				zap.String("document_id", doc.ID.String()),
				zap.String("key", doc.StorageKey),
				zap.Error(err))
		}
	}
	s.logger.Info("Document deleted", zap.String("document_id", doc.ID.String()))
	return nil
}

// stalePurgeBatch caps the documents removed per purge run
const stalePurgeBatch = 200

// PurgeStalePending removes uploads that were never confirmed within maxAge,
// together with any object the client managed to store. It returns the
// number of rows removed.
func (s *DocumentService) PurgeStalePending(ctx context.Context, maxAge time.Duration) (int, error) {
	docs, err := s.docRepo.FindStalePending(ctx, time.Now().Add(-maxAge), stalePurgeBatch)
	if err != nil {
		return 0, err
	}
	purged := 0
	for _, doc := range docs {
		if s.storage != nil {
			if err := s.storage.DeleteObject(ctx, doc.StorageKey); err != nil && !errors.Is(err, ErrObjectNotFound) {
				s.logger.Warn("Failed to delete abandoned upload",
					zap.String("document_id", doc.ID.String()),
					zap.String("key", doc.StorageKey),
					zap.Error(err))
				continue
			}
		}
		if err := s.docRepo.Delete(ctx, doc.OrganizationID, doc.ID); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return purged, err
		}
		purged++
	}
	if purged > 0 {
		s.logger.Info("Purged abandoned uploads", zap.Int("count", purged))
	}
	return purged, nil
}

func (s *DocumentService) candidate(ctx context.Context, organizationID, candidateID uuid.UUID) (*recruiting.CandidateProfile, error) {
	candidate, err := s.candidateRepo.FindByID(ctx, organizationID, candidateID)
	if err != nil {
		return nil, notFoundAs(err, ErrCandidateNotFound)
	}
	return candidate, nil
}

// document loads a non-deleted document
func (s *DocumentService) document(ctx context.Context, organizationID, documentID uuid.UUID) (*recruiting.CandidateDocument, error) {
	doc, err := s.docRepo.FindByID(ctx, organizationID, documentID)
	if err != nil {
		return nil, notFoundAs(err, ErrDocumentNotFound)
	}
	if doc.Status == recruiting.DocumentStatusDeleted {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}
