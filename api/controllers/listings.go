package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/easyukapp/easyuk-backend/api/middleware"
	"github.com/easyukapp/easyuk-backend/api/responses"
	"github.com/easyukapp/easyuk-backend/api/validators"
	"github.com/easyukapp/easyuk-backend/internal/marketplace"
	"github.com/easyukapp/easyuk-backend/pkg/enums"
	pkgerrors "github.com/easyukapp/easyuk-backend/pkg/errors"
	"github.com/easyukapp/easyuk-backend/pkg/geo"
	"github.com/easyukapp/easyuk-backend/pkg/logger"
	"github.com/easyukapp/easyuk-backend/pkg/types"
)

// CreateListing handles listing creation for authenticated providers.
func CreateListing(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "marketplace service unavailable"))
			return
		}

		providerID, err := providerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.CreateListing(r.Context(), providerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, listing)
	}
}

// UpdateListing applies a partial edit to one of the provider's listings.
func UpdateListing(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "marketplace service unavailable"))
			return
		}

		providerID, err := providerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listingID, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateListingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.EditListing(r.Context(), providerID, listingID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

// MyListings returns every listing owned by the authenticated provider.
func MyListings(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "marketplace service unavailable"))
			return
		}

		providerID, err := providerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listings, err := svc.ListProviderListings(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listings)
	}
}

// GetListing returns a single listing without requiring authentication.
func GetListing(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "marketplace service unavailable"))
			return
		}

		listingID, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.GetListing(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

// BrowseListings runs the public filtered, ranked search.
func BrowseListings(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "marketplace service unavailable"))
			return
		}

		query, err := browseQueryFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listings, err := svc.Browse(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listings)
	}
}

// RecordListingView bumps the view counter for a listing.
func RecordListingView(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return recordEngagement(svc, logg, func(svc marketplace.Service, r *http.Request, id uuid.UUID) error {
		return svc.RecordView(r.Context(), id)
	})
}

// RecordListingClick bumps the click counter for a listing.
func RecordListingClick(svc marketplace.Service, logg *logger.Logger) http.HandlerFunc {
	return recordEngagement(svc, logg, func(svc marketplace.Service, r *http.Request, id uuid.UUID) error {
		return svc.RecordClick(r.Context(), id)
	})
}

func recordEngagement(svc marketplace.Service, logg *logger.Logger, apply func(marketplace.Service, *http.Request, uuid.UUID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "marketplace service unavailable"))
			return
		}

		listingID, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := apply(svc, r, listingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func providerFromContext(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return uid, nil
}

func listingIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "listingId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing id")
	}
	return id, nil
}

func browseQueryFromRequest(r *http.Request) (marketplace.BrowseQuery, error) {
	query := marketplace.BrowseQuery{
		Text: strings.TrimSpace(r.URL.Query().Get("q")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		category, err := enums.ParseListingCategory(raw)
		if err != nil {
			return marketplace.BrowseQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		query.Category = category
	}

	sort, err := enums.ParseSortMode(strings.TrimSpace(r.URL.Query().Get("sort")))
	if err != nil {
		return marketplace.BrowseQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort mode")
	}
	query.Sort = sort

	nearby, err := validators.ParseQueryBool(r, "nearby")
	if err != nil {
		return marketplace.BrowseQuery{}, err
	}
	query.Nearby = nearby

	lat, err := validators.ParseQueryFloat(r, "lat")
	if err != nil {
		return marketplace.BrowseQuery{}, err
	}
	lng, err := validators.ParseQueryFloat(r, "lng")
	if err != nil {
		return marketplace.BrowseQuery{}, err
	}
	if (lat == nil) != (lng == nil) {
		return marketplace.BrowseQuery{}, pkgerrors.New(pkgerrors.CodeValidation, "lat and lng must be supplied together")
	}
	if lat != nil {
		query.Origin = &geo.Coordinate{Lat: *lat, Lng: *lng}
	}

	return query, nil
}

type createListingRequest struct {
	ServiceName      string             `json:"service_name" validate:"required"`
	Description      *string            `json:"description,omitempty"`
	Category         string             `json:"category" validate:"required"`
	Pricing          *string            `json:"pricing,omitempty"`
	Photos           []string           `json:"photos" validate:"required,min=1,dive,required"`
	Languages        []string           `json:"languages,omitempty"`
	Phone            *string            `json:"phone,omitempty"`
	Email            *string            `json:"email,omitempty" validate:"omitempty,email"`
	SocialLinks      *types.SocialLinks `json:"social_links,omitempty"`
	Latitude         *float64           `json:"latitude,omitempty"`
	Longitude        *float64           `json:"longitude,omitempty"`
	Address          *string            `json:"address,omitempty"`
	SubscriptionTier *string            `json:"subscription_tier,omitempty"`
}

func (r createListingRequest) toCreateInput() (marketplace.CreateListingInput, error) {
	category, err := enums.ParseListingCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return marketplace.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}

	input := marketplace.CreateListingInput{
		ServiceName: strings.TrimSpace(r.ServiceName),
		Description: r.Description,
		Category:    category,
		Pricing:     r.Pricing,
		Photos:      r.Photos,
		Languages:   r.Languages,
		Phone:       r.Phone,
		Email:       r.Email,
		SocialLinks: r.SocialLinks,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Address:     r.Address,
	}

	if r.SubscriptionTier != nil {
		tier, err := enums.ParseSubscriptionTier(strings.TrimSpace(*r.SubscriptionTier))
		if err != nil {
			return marketplace.CreateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subscription tier")
		}
		input.SubscriptionTier = tier
	}

	return input, nil
}

type updateListingRequest struct {
	ServiceName *string            `json:"service_name,omitempty"`
	Description *string            `json:"description,omitempty"`
	Category    *string            `json:"category,omitempty"`
	Pricing     *string            `json:"pricing,omitempty"`
	Photos      []string           `json:"photos,omitempty"`
	Languages   []string           `json:"languages,omitempty"`
	Phone       *string            `json:"phone,omitempty"`
	Email       *string            `json:"email,omitempty" validate:"omitempty,email"`
	SocialLinks *types.SocialLinks `json:"social_links,omitempty"`
	Latitude    *float64           `json:"latitude,omitempty"`
	Longitude   *float64           `json:"longitude,omitempty"`
	Address     *string            `json:"address,omitempty"`

	SubscriptionTier *string    `json:"subscription_tier,omitempty"`
	TrialStart       *time.Time `json:"trial_start,omitempty"`
	TrialEnd         *time.Time `json:"trial_end,omitempty"`
}

func (r updateListingRequest) toUpdateInput() (marketplace.UpdateListingInput, error) {
	input := marketplace.UpdateListingInput{
		ServiceName: r.ServiceName,
		Description: r.Description,
		Pricing:     r.Pricing,
		Photos:      r.Photos,
		Languages:   r.Languages,
		Phone:       r.Phone,
		Email:       r.Email,
		SocialLinks: r.SocialLinks,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Address:     r.Address,
		TrialStart:  r.TrialStart,
		TrialEnd:    r.TrialEnd,
	}

	if r.Category != nil {
		category, err := enums.ParseListingCategory(strings.TrimSpace(*r.Category))
		if err != nil {
			return marketplace.UpdateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}

	if r.SubscriptionTier != nil {
		tier, err := enums.ParseSubscriptionTier(strings.TrimSpace(*r.SubscriptionTier))
		if err != nil {
			return marketplace.UpdateListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subscription tier")
		}
		input.SubscriptionTier = &tier
	}

	return input, nil
}
