package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/easyukapp/easyuk-backend/api/middleware"
	"github.com/easyukapp/easyuk-backend/internal/marketplace"
	"github.com/easyukapp/easyuk-backend/pkg/db/models"
	"github.com/easyukapp/easyuk-backend/pkg/enums"
	"github.com/easyukapp/easyuk-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type stubMarketplaceService struct {
	created     []marketplace.CreateListingInput
	browsed     []marketplace.BrowseQuery
	viewed      []uuid.UUID
	clicked     []uuid.UUID
	createErr   error
	browseErr   error
	lastEditID  uuid.UUID
	editInputs  []marketplace.UpdateListingInput
	returnedRow *models.Listing
}

func (s *stubMarketplaceService) CreateListing(_ context.Context, providerID uuid.UUID, input marketplace.CreateListingInput) (*models.Listing, error) {
	s.created = append(s.created, input)
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.returnedRow != nil {
		return s.returnedRow, nil
	}
	return &models.Listing{ID: uuid.New(), ProviderID: providerID, ServiceName: input.ServiceName}, nil
}

func (s *stubMarketplaceService) EditListing(_ context.Context, _, listingID uuid.UUID, input marketplace.UpdateListingInput) (*models.Listing, error) {
	s.lastEditID = listingID
	s.editInputs = append(s.editInputs, input)
	return &models.Listing{ID: listingID}, nil
}

func (s *stubMarketplaceService) GetListing(_ context.Context, listingID uuid.UUID) (*models.Listing, error) {
	return &models.Listing{ID: listingID}, nil
}

func (s *stubMarketplaceService) ListProviderListings(_ context.Context, providerID uuid.UUID) ([]models.Listing, error) {
	return []models.Listing{{ProviderID: providerID}}, nil
}

func (s *stubMarketplaceService) Browse(_ context.Context, query marketplace.BrowseQuery) ([]models.Listing, error) {
	s.browsed = append(s.browsed, query)
	if s.browseErr != nil {
		return nil, s.browseErr
	}
	return []models.Listing{}, nil
}

func (s *stubMarketplaceService) HandlePaymentResult(context.Context, marketplace.PaymentResult) error {
	return nil
}

func (s *stubMarketplaceService) ExpireTrials(context.Context, time.Time) (marketplace.SweepResult, error) {
	return marketplace.SweepResult{}, nil
}

func (s *stubMarketplaceService) RecordView(_ context.Context, listingID uuid.UUID) error {
	s.viewed = append(s.viewed, listingID)
	return nil
}

func (s *stubMarketplaceService) RecordClick(_ context.Context, listingID uuid.UUID) error {
	s.clicked = append(s.clicked, listingID)
	return nil
}

func TestCreateListing(t *testing.T) {
	logg := testLogger()
	providerID := uuid.New()
	body := `{"service_name":"Deep Clean","category":"cleaning","photos":["photos/1.jpg"]}`

	t.Run("missing user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/listings", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CreateListing(&stubMarketplaceService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 when user missing, got %d", rec.Code)
		}
	})

	t.Run("invalid category", func(t *testing.T) {
		payload := `{"service_name":"Deep Clean","category":"juggling","photos":["photos/1.jpg"]}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/listings", strings.NewReader(payload))
		req = req.WithContext(middleware.WithUserID(req.Context(), providerID.String()))
		rec := httptest.NewRecorder()
		CreateListing(&stubMarketplaceService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown category, got %d", rec.Code)
		}
	})

	t.Run("missing photos", func(t *testing.T) {
		payload := `{"service_name":"Deep Clean","category":"cleaning","photos":[]}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/listings", strings.NewReader(payload))
		req = req.WithContext(middleware.WithUserID(req.Context(), providerID.String()))
		rec := httptest.NewRecorder()
		CreateListing(&stubMarketplaceService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for empty photos, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubMarketplaceService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/listings", strings.NewReader(body))
		req = req.WithContext(middleware.WithUserID(req.Context(), providerID.String()))
		rec := httptest.NewRecorder()
		CreateListing(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
		}
		if len(stub.created) != 1 {
			t.Fatalf("expected one create call, got %d", len(stub.created))
		}
		if stub.created[0].Category != enums.ListingCategoryCleaning {
			t.Fatalf("unexpected category %s", stub.created[0].Category)
		}
	})
}

func TestBrowseListings(t *testing.T) {
	logg := testLogger()

	t.Run("passes filters through", func(t *testing.T) {
		stub := &stubMarketplaceService{}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/listings?q=clean&category=cleaning&sort=price&nearby=true&lat=51.5&lng=-0.12", nil)
		rec := httptest.NewRecorder()
		BrowseListings(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		if len(stub.browsed) != 1 {
			t.Fatalf("expected one browse call, got %d", len(stub.browsed))
		}
		got := stub.browsed[0]
		if got.Text != "clean" || got.Category != enums.ListingCategoryCleaning || got.Sort != enums.SortModePrice || !got.Nearby {
			t.Fatalf("unexpected browse query: %+v", got)
		}
		if got.Origin == nil || got.Origin.Lat != 51.5 || got.Origin.Lng != -0.12 {
			t.Fatalf("unexpected origin: %+v", got.Origin)
		}
	})

	t.Run("defaults to newest and no category", func(t *testing.T) {
		stub := &stubMarketplaceService{}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil)
		rec := httptest.NewRecorder()
		BrowseListings(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		got := stub.browsed[0]
		if got.Sort != enums.SortModeNewest {
			t.Fatalf("expected newest default, got %s", got.Sort)
		}
		if !got.Category.IsWildcard() {
			t.Fatalf("expected wildcard category, got %s", got.Category)
		}
	})

	t.Run("rejects lat without lng", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/listings?lat=51.5", nil)
		rec := httptest.NewRecorder()
		BrowseListings(&stubMarketplaceService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for half a coordinate, got %d", rec.Code)
		}
	})

	t.Run("rejects unknown sort", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/listings?sort=oldest", nil)
		rec := httptest.NewRecorder()
		BrowseListings(&stubMarketplaceService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown sort, got %d", rec.Code)
		}
	})
}

func TestUpdateListingRejectsInvalidID(t *testing.T) {
	logg := testLogger()
	ctx := middleware.WithUserID(context.Background(), uuid.NewString())
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("listingId", "not-a-uuid")
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/listings/not-a-uuid", strings.NewReader(`{}`))
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	UpdateListing(&stubMarketplaceService{}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
	}
}

func TestRecordListingView(t *testing.T) {
	logg := testLogger()
	listingID := uuid.New()
	stub := &stubMarketplaceService{}

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("listingId", listingID.String())
	ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/listings/"+listingID.String()+"/views", nil)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	RecordListingView(stub, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(stub.viewed) != 1 || stub.viewed[0] != listingID {
		t.Fatalf("expected view recorded for %s, got %v", listingID, stub.viewed)
	}
}
