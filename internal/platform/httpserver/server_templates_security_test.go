package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	permissionentities "pollsbot/contexts/identity-access/permission-service/domain/entities"
	templatehttp "pollsbot/contexts/polling/template-service/transport/http"
)

func TestCreateTemplateRequiresCreateTier(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"name":"team-vote","question":"Approve {item}?","options":["yes","no"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/templates/v1/templates", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTemplateRenderBumpsUsage(t *testing.T) {
	server := newTestServer()
	seedUser(t, server, "creator-1", permissionentities.TierCreate)

	body := []byte(`{"name":"team-vote","question":"Approve {item}?","options":["yes","no"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/templates/v1/templates", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "creator-1")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	renderReq := httptest.NewRequest(
		http.MethodPost,
		"/api/templates/v1/templates/team-vote/render",
		bytes.NewReader([]byte(`{"bindings":{"item":"the Q3 budget"}}`)),
	)
	renderReq.Header.Set("Content-Type", "application/json")
	renderReq.Header.Set("X-User-Id", "voter-1")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, renderReq)
	if rr.Code != http.StatusOK {
		t.Fatalf("render: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var rendered templatehttp.RenderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &rendered); err != nil {
		t.Fatalf("decode render: %v", err)
	}
	if rendered.Question != "Approve the Q3 budget?" {
		t.Fatalf("unexpected rendered question: %q", rendered.Question)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/templates/v1/templates/team-vote", nil)
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, getReq)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var tpl templatehttp.TemplateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &tpl); err != nil {
		t.Fatalf("decode template: %v", err)
	}
	if tpl.UsageCount != 1 {
		t.Fatalf("expected usage count 1, got %d", tpl.UsageCount)
	}
}

func TestDeleteTemplateByStrangerIsForbidden(t *testing.T) {
	server := newTestServer()
	seedUser(t, server, "creator-1", permissionentities.TierCreate)

	body := []byte(`{"name":"team-vote","question":"Approve {item}?","options":["yes","no"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/templates/v1/templates", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "creator-1")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	deleteReq := httptest.NewRequest(http.MethodDelete, "/api/templates/v1/templates/team-vote", nil)
	deleteReq.Header.Set("X-User-Id", "stranger-1")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, deleteReq)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDeleteTemplateByAdminSucceeds(t *testing.T) {
	server := newTestServer()
	seedUser(t, server, "creator-1", permissionentities.TierCreate)
	seedUser(t, server, "admin-1", permissionentities.TierAdmin)

	body := []byte(`{"name":"team-vote","question":"Approve {item}?","options":["yes","no"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/templates/v1/templates", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "creator-1")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	deleteReq := httptest.NewRequest(http.MethodDelete, "/api/templates/v1/templates/team-vote", nil)
	deleteReq.Header.Set("X-User-Id", "admin-1")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, deleteReq)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGrantTierRequiresAdmin(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"user_id":"user-2","tier":"create"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/permissions/v1/grants", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGrantTierByAdminTakesEffect(t *testing.T) {
	server := newTestServer()
	seedUser(t, server, "admin-1", permissionentities.TierAdmin)

	body := []byte(`{"user_id":"user-2","tier":"create"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/permissions/v1/grants", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "admin-1")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("grant: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	pollBody := []byte(`{"chat_id":"chat-1","question":"Lunch?","options":["yes","no"],"threshold":0}`)
	pollReq := httptest.NewRequest(http.MethodPost, "/api/polls/v1/polls", bytes.NewReader(pollBody))
	pollReq.Header.Set("Content-Type", "application/json")
	pollReq.Header.Set("X-User-Id", "user-2")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, pollReq)
	if rr.Code != http.StatusOK {
		t.Fatalf("create after grant: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}
