package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/easyukapp/easyuk-backend/pkg/db/models"
	"github.com/easyukapp/easyuk-backend/pkg/enums"
	pkgerrors "github.com/easyukapp/easyuk-backend/pkg/errors"
	"github.com/easyukapp/easyuk-backend/pkg/geo"
	"github.com/easyukapp/easyuk-backend/pkg/logger"
)

type listingsRepository interface {
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	ListVisible(ctx context.Context) ([]models.Listing, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Listing, error)
	ListExpiredTrials(ctx context.Context, now time.Time, limit int) ([]models.Listing, error)
	CancelExpiredTrial(ctx context.Context, id uuid.UUID) (bool, error)
	Activate(ctx context.Context, id uuid.UUID, subscriptionID string) (bool, error)
	CancelActive(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementClickCount(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service exposes listing lifecycle, browse, and engagement semantics.
type Service interface {
	CreateListing(ctx context.Context, providerID uuid.UUID, input CreateListingInput) (*models.Listing, error)
	EditListing(ctx context.Context, providerID, listingID uuid.UUID, input UpdateListingInput) (*models.Listing, error)
	GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error)
	ListProviderListings(ctx context.Context, providerID uuid.UUID) ([]models.Listing, error)
	Browse(ctx context.Context, query BrowseQuery) ([]models.Listing, error)
	HandlePaymentResult(ctx context.Context, result PaymentResult) error
	ExpireTrials(ctx context.Context, now time.Time) (SweepResult, error)
	RecordView(ctx context.Context, listingID uuid.UUID) error
	RecordClick(ctx context.Context, listingID uuid.UUID) error
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo           listingsRepository
	Logger         *logger.Logger
	Now            func() time.Time
	TrialDays      int
	NearbyRadiusKm float64
	BrowseTimeout  time.Duration
	SweepBatchSize int
}

type service struct {
	repo           listingsRepository
	logg           *logger.Logger
	now            func() time.Time
	trialDays      int
	nearbyRadiusKm float64
	browseTimeout  time.Duration
	sweepBatchSize int
}

// NewService builds the marketplace service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.TrialDays <= 0 {
		return nil, fmt.Errorf("trial days must be positive")
	}
	if params.NearbyRadiusKm <= 0 {
		return nil, fmt.Errorf("nearby radius must be positive")
	}
	if params.BrowseTimeout <= 0 {
		return nil, fmt.Errorf("browse timeout must be positive")
	}
	if params.SweepBatchSize <= 0 {
		return nil, fmt.Errorf("sweep batch size must be positive")
	}
	return &service{
		repo:           params.Repo,
		logg:           params.Logger,
		now:            params.Now,
		trialDays:      params.TrialDays,
		nearbyRadiusKm: params.NearbyRadiusKm,
		browseTimeout:  params.BrowseTimeout,
		sweepBatchSize: params.SweepBatchSize,
	}, nil
}

func (s *service) CreateListing(ctx context.Context, providerID uuid.UUID, input CreateListingInput) (*models.Listing, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider identity missing")
	}
	if strings.TrimSpace(input.ServiceName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service_name is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	if len(input.Photos) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one photo is required")
	}

	tier := input.SubscriptionTier
	if tier == "" {
		tier = enums.SubscriptionTierStandard
	}
	if !tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid subscription tier")
	}

	if err := validateCoordinate(input.Latitude, input.Longitude); err != nil {
		return nil, err
	}

	start, end := trialWindow(s.now(), s.trialDays)
	listing := &models.Listing{
		ProviderID:       providerID,
		ServiceName:      strings.TrimSpace(input.ServiceName),
		Description:      input.Description,
		Category:         input.Category,
		Pricing:          input.Pricing,
		Photos:           input.Photos,
		Languages:        input.Languages,
		Phone:            input.Phone,
		Email:            input.Email,
		SocialLinks:      input.SocialLinks,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		Address:          input.Address,
		Status:           enums.ListingStatusTrial,
		SubscriptionTier: tier,
		TrialStart:       &start,
		TrialEnd:         &end,
	}

	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	return created, nil
}

func (s *service) EditListing(ctx context.Context, providerID, listingID uuid.UUID, input UpdateListingInput) (*models.Listing, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider identity missing")
	}
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	if input.SubscriptionTier != nil {
		return nil, pkgerrors.New(pkgerrors.CodeImmutableField, "subscription_tier cannot be changed")
	}
	if input.TrialStart != nil || input.TrialEnd != nil {
		return nil, pkgerrors.New(pkgerrors.CodeImmutableField, "trial window cannot be changed")
	}

	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup listing")
	}
	if listing.ProviderID != providerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing does not belong to provider")
	}

	if input.ServiceName != nil {
		if strings.TrimSpace(*input.ServiceName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "service_name cannot be empty")
		}
		listing.ServiceName = strings.TrimSpace(*input.ServiceName)
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
		}
		listing.Category = *input.Category
	}
	if input.Photos != nil {
		if len(input.Photos) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one photo is required")
		}
		listing.Photos = input.Photos
	}
	if input.Description != nil {
		listing.Description = input.Description
	}
	if input.Pricing != nil {
		listing.Pricing = input.Pricing
	}
	if input.Languages != nil {
		listing.Languages = input.Languages
	}
	if input.Phone != nil {
		listing.Phone = input.Phone
	}
	if input.Email != nil {
		listing.Email = input.Email
	}
	if input.SocialLinks != nil {
		listing.SocialLinks = input.SocialLinks
	}
	if input.Latitude != nil || input.Longitude != nil {
		lat := listing.Latitude
		lng := listing.Longitude
		if input.Latitude != nil {
			lat = input.Latitude
		}
		if input.Longitude != nil {
			lng = input.Longitude
		}
		if err := validateCoordinate(lat, lng); err != nil {
			return nil, err
		}
		listing.Latitude = lat
		listing.Longitude = lng
	}
	if input.Address != nil {
		listing.Address = input.Address
	}

	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
	}
	return listing, nil
}

func (s *service) GetListing(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup listing")
	}
	return listing, nil
}

func (s *service) ListProviderListings(ctx context.Context, providerID uuid.UUID) ([]models.Listing, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider identity missing")
	}
	rows, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list provider listings")
	}
	return rows, nil
}

func (s *service) Browse(ctx context.Context, query BrowseQuery) ([]models.Listing, error) {
	if query.Nearby && query.Origin != nil && !query.Origin.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "origin coordinate out of range")
	}

	ctx, cancel := context.WithTimeout(ctx, s.browseTimeout)
	defer cancel()

	snapshot, err := s.repo.ListVisible(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "browse timed out")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query visible listings")
	}
	return Rank(snapshot, query, s.nearbyRadiusKm), nil
}

// HandlePaymentResult records the outcome of a billing event. Captured
// payments activate the listing from trial or cancelled; a capture that loses
// the write race once is retried before surfacing a conflict, because a paid
// listing must never be silently lost.
func (s *service) HandlePaymentResult(ctx context.Context, result PaymentResult) error {
	if result.ListingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}

	if result.Captured {
		if strings.TrimSpace(result.SubscriptionID) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "subscription id is required for capture")
		}
		return s.applyCapture(ctx, result.ListingID, result.SubscriptionID)
	}
	return s.applyCancellation(ctx, result.ListingID)
}

func (s *service) applyCapture(ctx context.Context, listingID uuid.UUID, subscriptionID string) error {
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.repo.Activate(ctx, listingID, subscriptionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate listing")
		}
		if ok {
			return nil
		}

		listing, err := s.repo.FindByID(ctx, listingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup listing")
		}
		if listing.Status == enums.ListingStatusActive {
			if listing.HasSubscription() && *listing.StripeSubscriptionID == subscriptionID {
				return nil // duplicate delivery
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "listing already active with another subscription")
		}
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "payment capture lost the write race")
}

func (s *service) applyCancellation(ctx context.Context, listingID uuid.UUID) error {
	ok, err := s.repo.CancelActive(ctx, listingID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel listing")
	}
	if ok {
		return nil
	}

	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup listing")
	}
	if listing.Status == enums.ListingStatusCancelled {
		return nil // duplicate delivery
	}
	// Cancellation for a trial listing carries no state change; the trial
	// keeps running until its window lapses.
	return nil
}

// ExpireTrials cancels trials past their window in bounded batches. A row
// that loses the optimistic write (payment landed mid-sweep) is skipped, not
// fatal.
func (s *service) ExpireTrials(ctx context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult
	for {
		batch, err := s.repo.ListExpiredTrials(ctx, now, s.sweepBatchSize)
		if err != nil {
			return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query expired trials")
		}
		if len(batch) == 0 {
			return result, nil
		}

		result.Inspected += len(batch)
		batchCancelled := 0
		for _, listing := range batch {
			ok, err := s.repo.CancelExpiredTrial(ctx, listing.ID)
			if err != nil {
				lctx := s.logg.WithListingID(ctx, listing.ID.String())
				s.logg.Error(lctx, "expiry sweep: cancel failed", err)
				result.Skipped++
				continue
			}
			if !ok {
				lctx := s.logg.WithListingID(ctx, listing.ID.String())
				s.logg.Warn(lctx, "expiry sweep: listing no longer eligible, skipping")
				result.Skipped++
				continue
			}
			result.Cancelled++
			batchCancelled++
		}

		if len(batch) < s.sweepBatchSize {
			return result, nil
		}
		// A full batch with zero progress means every row is stuck; leave
		// the remainder for the next scheduled run instead of spinning.
		if batchCancelled == 0 {
			return result, nil
		}
	}
}

func (s *service) RecordView(ctx context.Context, listingID uuid.UUID) error {
	return s.recordEngagement(ctx, listingID, s.repo.IncrementViewCount)
}

func (s *service) RecordClick(ctx context.Context, listingID uuid.UUID) error {
	return s.recordEngagement(ctx, listingID, s.repo.IncrementClickCount)
}

func (s *service) recordEngagement(ctx context.Context, listingID uuid.UUID, bump func(context.Context, uuid.UUID) (bool, error)) error {
	if listingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	ok, err := bump(ctx, listingID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment counter")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	return nil
}

func validateCoordinate(lat, lng *float64) error {
	if lat == nil && lng == nil {
		return nil
	}
	if lat == nil || lng == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "latitude and longitude must be provided together")
	}
	if !(geo.Coordinate{Lat: *lat, Lng: *lng}).Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "coordinate out of range")
	}
	return nil
}
