package marketplace

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/easyukapp/easyuk-backend/pkg/db/models"
	"github.com/easyukapp/easyuk-backend/pkg/enums"
)

// Repository exposes listing persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a listing repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new listing row.
func (r *Repository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// FindByID returns the listing or gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// Update persists the full listing row.
func (r *Repository) Update(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

// ListVisible returns browsable listings newest-first. Trial and active
// listings are visible; cancelled ones are not.
func (r *Repository) ListVisible(ctx context.Context) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.ListingStatus{enums.ListingStatusTrial, enums.ListingStatusActive}).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByProvider returns every listing owned by the provider, newest-first.
func (r *Repository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListExpiredTrials returns trial listings whose window lapsed without a
// captured subscription, bounded by limit.
func (r *Repository) ListExpiredTrials(ctx context.Context, now time.Time, limit int) ([]models.Listing, error) {
	var rows []models.Listing
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.ListingStatusTrial).
		Where("trial_end < ?", now).
		Where("stripe_subscription_id IS NULL").
		Order("trial_end ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CancelExpiredTrial cancels a single trial with a write-time precondition so
// a concurrently captured payment is never clobbered. Returns false when the
// precondition failed (zero rows updated).
func (r *Repository) CancelExpiredTrial(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		Where("status = ?", enums.ListingStatusTrial).
		Where("stripe_subscription_id IS NULL").
		Update("status", enums.ListingStatusCancelled)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Activate moves a trial or cancelled listing to active and attaches the
// subscription. Returns false when no eligible row matched.
func (r *Repository) Activate(ctx context.Context, id uuid.UUID, subscriptionID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		Where("status IN ?", []enums.ListingStatus{enums.ListingStatusTrial, enums.ListingStatusCancelled}).
		Updates(map[string]any{
			"status":                 enums.ListingStatusActive,
			"stripe_subscription_id": subscriptionID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CancelActive cancels an active listing and detaches its subscription.
// Returns false when the listing was not active.
func (r *Repository) CancelActive(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		Where("status = ?", enums.ListingStatusActive).
		Updates(map[string]any{
			"status":                 enums.ListingStatusCancelled,
			"stripe_subscription_id": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListActiveWithSubscription returns active listings carrying a subscription
// reference, oldest-first, bounded by limit. Used by the reconcile job.
func (r *Repository) ListActiveWithSubscription(ctx context.Context, limit int) ([]models.Listing, error) {
	var rows []models.Listing
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.ListingStatusActive).
		Where("stripe_subscription_id IS NOT NULL").
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// IncrementViewCount bumps the listing's view counter.
func (r *Repository) IncrementViewCount(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementClickCount bumps the listing's click counter.
func (r *Repository) IncrementClickCount(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		Update("click_count", gorm.Expr("click_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
