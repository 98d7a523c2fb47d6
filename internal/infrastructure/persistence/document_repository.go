package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/backend/internal/domain/recruiting"
	"github.com/hireflow/backend/internal/domain/shared"
	"github.com/hireflow/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by ID within an organization
func (r *GormDocumentRepository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*recruiting.CandidateDocument, error) {
	var model models.CandidateDocumentModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCandidate lists the pending and active documents of a candidate, newest first
func (r *GormDocumentRepository) FindByCandidate(ctx context.Context, organizationID, candidateID uuid.UUID) ([]*recruiting.CandidateDocument, error) {
	var rows []models.CandidateDocumentModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND candidate_id = ? AND status <> ?", organizationID, candidateID, recruiting.DocumentStatusDeleted).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]*recruiting.CandidateDocument, len(rows))
	for i := range rows {
		docs[i] = rows[i].ToDomain()
	}
	return docs, nil
}

// Save creates or updates a document
func (r *GormDocumentRepository) Save(ctx context.Context, doc *recruiting.CandidateDocument) error {
	return r.db.WithContext(ctx).Save(models.CandidateDocumentModelFromDomain(doc)).Error
}

// Delete removes a document row
func (r *GormDocumentRepository) Delete(ctx context.Context, organizationID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		Delete(&models.CandidateDocumentModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindStalePending returns abandoned uploads across all organizations
func (r *GormDocumentRepository) FindStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*recruiting.CandidateDocument, error) {
	var rows []models.CandidateDocumentModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", recruiting.DocumentStatusPending, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	docs := make([]*recruiting.CandidateDocument, len(rows))
	for i := range rows {
		docs[i] = rows[i].ToDomain()
	}
	return docs, nil
}

// Ensure GormDocumentRepository implements DocumentRepository
var _ recruiting.DocumentRepository = (*GormDocumentRepository)(nil)
