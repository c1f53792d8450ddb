package repositories

import (
	"context"
	"time"

	"github.com/anonto42/circle/backend/internal/models"
	"gorm.io/gorm"
)

// VerificationRepository stores verification requests
type VerificationRepository interface {
	CreateRequest(ctx context.Context, req *models.VerificationRequest) error
	GetRequestByID(ctx context.Context, id uint) (*models.VerificationRequest, error)
	GetPendingByUserID(ctx context.Context, userID uint) (*models.VerificationRequest, error)
	ListByStatus(ctx context.Context, status string) ([]models.VerificationRequest, error)
	UpdateDecision(ctx context.Context, id uint, status string, reviewerID uint, reviewedAt time.Time) error
}

type PostgresVerificationRepository struct {
	db *gorm.DB
}

func NewPostgresVerificationRepository(db *gorm.DB) *PostgresVerificationRepository {
	return &PostgresVerificationRepository{db: db}
}

func (r *PostgresVerificationRepository) CreateRequest(ctx context.Context, req *models.VerificationRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *PostgresVerificationRepository) GetRequestByID(ctx context.Context, id uint) (*models.VerificationRequest, error) {
	var req models.VerificationRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *PostgresVerificationRepository) GetPendingByUserID(ctx context.Context, userID uint) (*models.VerificationRequest, error) {
	var req models.VerificationRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.VerificationPending).
		First(&req).Error
	if err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

// ListByStatus returns requests in submission order
func (r *PostgresVerificationRepository) ListByStatus(ctx context.Context, status string) ([]models.VerificationRequest, error) {
	reqs := []models.VerificationRequest{}
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at, id").Find(&reqs).Error
	return reqs, err
}

func (r *PostgresVerificationRepository) UpdateDecision(ctx context.Context, id uint, status string, reviewerID uint, reviewedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.VerificationRequest{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      status,
		"reviewed_by": reviewerID,
		"reviewed_at": reviewedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
