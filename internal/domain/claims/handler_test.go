package claims

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *testEnv, *echo.Echo) {
	env := newTestEnv()
	h := NewHandler(env.svc)
	e := echo.New()
	return h, env, e
}

func TestHandler_CreateClaim(t *testing.T) {
	h, env, e := newTestHandler()
	pid := env.newProvider()
	body := `{"providerId":"` + pid.String() + `","year":2026,"month":3,"amountSubmitted":500}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateClaim(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var resp claimEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Claim.Status != StatusDraft {
		t.Errorf("status = %s, want draft", resp.Claim.Status)
	}
}

func TestHandler_CreateClaim_UnknownProvider(t *testing.T) {
	h, _, e := newTestHandler()
	body := `{"providerId":"` + uuid.New().String() + `","year":2026,"month":3}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateClaim(c)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", he.Code)
	}
}

func TestHandler_GetClaim(t *testing.T) {
	h, env, e := newTestHandler()
	cl := env.seedClaim(t, StatusDraft, 100, 0)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())

	if err := h.GetClaim(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_GetClaim_NotFound(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetClaim(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
}

func TestHandler_GetClaim_InvalidID(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetClaim(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_ListClaims(t *testing.T) {
	h, env, e := newTestHandler()
	env.seedClaim(t, StatusDraft, 100, 0)
	env.seedClaim(t, StatusSubmitted, 200, 0)

	req := httptest.NewRequest(http.MethodGet, "/list?page=1&limit=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListClaims(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp listEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Pagination.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Pagination.Total)
	}
	if resp.Pagination.Pages != 1 {
		t.Errorf("pages = %d, want 1", resp.Pagination.Pages)
	}
	if len(resp.Claims) != 2 {
		t.Errorf("claims = %d, want 2", len(resp.Claims))
	}
}

func TestHandler_ListClaims_StatusFilter(t *testing.T) {
	h, env, e := newTestHandler()
	env.seedClaim(t, StatusDraft, 100, 0)
	env.seedClaim(t, StatusSubmitted, 200, 0)

	req := httptest.NewRequest(http.MethodGet, "/list?status=draft", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListClaims(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp listEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Claims) != 1 {
		t.Errorf("claims = %d, want 1", len(resp.Claims))
	}
}

func TestHandler_ListClaims_EmptyIsArray(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/list", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListClaims(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"claims":[]`) {
		t.Errorf("empty list should serialize as [], got %s", rec.Body.String())
	}
}

func TestHandler_Submit(t *testing.T) {
	h, env, e := newTestHandler()
	cl := env.seedClaim(t, StatusDraft, 100, 0)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())

	if err := h.Submit(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp claimEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Claim.Status != StatusSubmitted {
		t.Errorf("status = %s, want submitted", resp.Claim.Status)
	}
}

func TestHandler_MarkPaid_WrongState(t *testing.T) {
	h, env, e := newTestHandler()
	cl := env.seedClaim(t, StatusDraft, 100, 0)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())

	err := h.MarkPaid(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
	if msg, _ := he.Message.(string); !strings.Contains(msg, "Only claims awaiting payment") {
		t.Errorf("unexpected message %v", he.Message)
	}
}

func TestHandler_Reject_MissingReason(t *testing.T) {
	h, env, e := newTestHandler()
	cl := env.seedClaim(t, StatusSubmitted, 100, 0)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())

	err := h.Reject(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_DeleteClaim_NonDraft(t *testing.T) {
	h, env, e := newTestHandler()
	cl := env.seedClaim(t, StatusSubmitted, 100, 0)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(cl.ID.String())

	err := h.DeleteClaim(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_FilterByStatus_Invalid(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("status")
	c.SetParamValues("bogus")

	err := h.FilterByStatus(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestHandler_FilterByProvider(t *testing.T) {
	h, env, e := newTestHandler()
	cl := env.seedClaim(t, StatusDraft, 100, 0)
	env.seedClaim(t, StatusDraft, 50, 0)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("providerId")
	c.SetParamValues(cl.ProviderID.String())

	if err := h.FilterByProvider(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp listEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Claims) != 1 {
		t.Errorf("claims = %d, want 1", len(resp.Claims))
	}
}

func TestHandler_AddDetail(t *testing.T) {
	h, env, e := newTestHandler()
	cl := env.seedClaim(t, StatusDraft, 0, 0)

	body := `{"enrolleeId":"` + uuid.New().String() + `","serviceDate":"2026-03-10T00:00:00Z","amountClaimed":150}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("claimId")
	c.SetParamValues(cl.ID.String())

	if err := h.AddDetail(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if env.claims.items[cl.ID].AmountSubmitted != 150 {
		t.Errorf("claim amountSubmitted = %v, want 150", env.claims.items[cl.ID].AmountSubmitted)
	}
}

func TestHandler_AnalyticsSummary(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.AnalyticsSummary(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
