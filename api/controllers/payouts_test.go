package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carplusapp/carplus-backend/internal/orders"
	"github.com/carplusapp/carplus-backend/internal/payouts"
	"github.com/carplusapp/carplus-backend/pkg/db/models"
	pkgerrors "github.com/carplusapp/carplus-backend/pkg/errors"
	"github.com/carplusapp/carplus-backend/pkg/pagination"
)

type stubPayoutsService struct {
	eligibleFn  func(ctx context.Context, resellerID uuid.UUID) ([]models.Order, error)
	summariesFn func(ctx context.Context) ([]orders.PendingSummary, error)
	executeFn   func(ctx context.Context, input payouts.ExecuteInput) (*payouts.Receipt, error)
	listFn      func(ctx context.Context, params pagination.Params, filters payouts.ListFilters) (*payouts.PayoutList, error)
	findFn      func(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	reconcileFn func(ctx context.Context, id uuid.UUID) (*models.Payout, error)
}

func (s stubPayoutsService) EligibleOrders(ctx context.Context, resellerID uuid.UUID) ([]models.Order, error) {
	if s.eligibleFn != nil {
		return s.eligibleFn(ctx, resellerID)
	}
	return []models.Order{}, nil
}

func (s stubPayoutsService) PendingSummaries(ctx context.Context) ([]orders.PendingSummary, error) {
	if s.summariesFn != nil {
		return s.summariesFn(ctx)
	}
	return []orders.PendingSummary{}, nil
}

func (s stubPayoutsService) Execute(ctx context.Context, input payouts.ExecuteInput) (*payouts.Receipt, error) {
	if s.executeFn != nil {
		return s.executeFn(ctx, input)
	}
	return &payouts.Receipt{}, nil
}

func (s stubPayoutsService) List(ctx context.Context, params pagination.Params, filters payouts.ListFilters) (*payouts.PayoutList, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params, filters)
	}
	return &payouts.PayoutList{}, nil
}

func (s stubPayoutsService) Find(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	if s.findFn != nil {
		return s.findFn(ctx, id)
	}
	return &models.Payout{ID: id}, nil
}

func (s stubPayoutsService) Reconcile(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	if s.reconcileFn != nil {
		return s.reconcileFn(ctx, id)
	}
	return &models.Payout{ID: id}, nil
}

func (s stubPayoutsService) ReconcileUnsettled(ctx context.Context, batchSize int) (int, error) {
	return 0, nil
}

func withURLParam(req *http.Request, name, value string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add(name, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func TestPayoutSummaryReturnsBacklog(t *testing.T) {
	resellerID := uuid.New()
	svc := stubPayoutsService{
		summariesFn: func(context.Context) ([]orders.PendingSummary, error) {
			return []orders.PendingSummary{{ResellerID: resellerID, ResellerName: "Loja da Ana", OrderCount: 3}}, nil
		},
	}

	handler := PayoutSummary(svc, nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Resellers []orders.PendingSummary `json:"resellers"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Resellers) != 1 || envelope.Data.Resellers[0].ResellerID != resellerID {
		t.Fatalf("unexpected payload %v", envelope.Data)
	}
}

func TestResellerEligibleOrdersRejectsBadID(t *testing.T) {
	handler := ResellerEligibleOrders(stubPayoutsService{}, nil)
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "resellerId", "not-a-uuid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestExecutePayoutDecodesBody(t *testing.T) {
	resellerID := uuid.New()
	orderID := uuid.New()
	var got payouts.ExecuteInput
	svc := stubPayoutsService{
		executeFn: func(_ context.Context, input payouts.ExecuteInput) (*payouts.Receipt, error) {
			got = input
			return &payouts.Receipt{PayoutID: uuid.New(), ResellerID: input.ResellerID}, nil
		},
	}

	body := strings.NewReader(`{"order_ids":["` + orderID.String() + `"],"description":"  semana 34  ","schedule_date":"2026-09-01"}`)
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", body), "resellerId", resellerID.String())
	resp := httptest.NewRecorder()
	ExecutePayout(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if got.ResellerID != resellerID {
		t.Fatalf("unexpected reseller id %s", got.ResellerID)
	}
	if len(got.OrderIDs) != 1 || got.OrderIDs[0] != orderID {
		t.Fatalf("unexpected order ids %v", got.OrderIDs)
	}
	if got.Description != "semana 34" {
		t.Fatalf("expected trimmed description, got %q", got.Description)
	}
	if got.ScheduleDate != "2026-09-01" {
		t.Fatalf("unexpected schedule date %q", got.ScheduleDate)
	}
}

func TestExecutePayoutAllowsEmptyBody(t *testing.T) {
	resellerID := uuid.New()
	var got payouts.ExecuteInput
	svc := stubPayoutsService{
		executeFn: func(_ context.Context, input payouts.ExecuteInput) (*payouts.Receipt, error) {
			got = input
			return &payouts.Receipt{}, nil
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "resellerId", resellerID.String())
	resp := httptest.NewRecorder()
	ExecutePayout(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if len(got.OrderIDs) != 0 {
		t.Fatalf("expected no explicit order ids, got %v", got.OrderIDs)
	}
}

func TestExecutePayoutRejectsMalformedScheduleDate(t *testing.T) {
	called := false
	svc := stubPayoutsService{
		executeFn: func(_ context.Context, _ payouts.ExecuteInput) (*payouts.Receipt, error) {
			called = true
			return &payouts.Receipt{}, nil
		},
	}

	body := strings.NewReader(`{"schedule_date":"01/09/2026"}`)
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", body), "resellerId", uuid.NewString())
	resp := httptest.NewRecorder()
	ExecutePayout(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if called {
		t.Fatalf("service should not run on invalid input")
	}
}

func TestExecutePayoutSurfacesConflict(t *testing.T) {
	svc := stubPayoutsService{
		executeFn: func(_ context.Context, _ payouts.ExecuteInput) (*payouts.Receipt, error) {
			return nil, pkgerrors.New(pkgerrors.CodePayoutConflict, "eligible orders changed during payout")
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "resellerId", uuid.NewString())
	resp := httptest.NewRecorder()
	ExecutePayout(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodePayoutConflict) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}

func TestListPayoutsParsesFilters(t *testing.T) {
	resellerID := uuid.New()
	var gotParams pagination.Params
	var gotFilters payouts.ListFilters
	svc := stubPayoutsService{
		listFn: func(_ context.Context, params pagination.Params, filters payouts.ListFilters) (*payouts.PayoutList, error) {
			gotParams = params
			gotFilters = filters
			return &payouts.PayoutList{}, nil
		},
	}

	url := "/?limit=5&cursor=abc&reseller_id=" + resellerID.String() + "&status=DONE"
	resp := httptest.NewRecorder()
	ListPayouts(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, url, nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotParams.Limit != 5 || gotParams.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", gotParams)
	}
	if gotFilters.ResellerID == nil || *gotFilters.ResellerID != resellerID {
		t.Fatalf("unexpected reseller filter %v", gotFilters.ResellerID)
	}
	if gotFilters.Status == nil || string(*gotFilters.Status) != "DONE" {
		t.Fatalf("unexpected status filter %v", gotFilters.Status)
	}
}

func TestListPayoutsRejectsUnknownStatus(t *testing.T) {
	resp := httptest.NewRecorder()
	ListPayouts(stubPayoutsService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/?status=bogus", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestReconcilePayoutMapsNotFound(t *testing.T) {
	svc := stubPayoutsService{
		reconcileFn: func(_ context.Context, _ uuid.UUID) (*models.Payout, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/", nil), "payoutId", uuid.NewString())
	resp := httptest.NewRecorder()
	ReconcilePayout(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
