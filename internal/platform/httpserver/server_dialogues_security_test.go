package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	permissionentities "pollsbot/contexts/identity-access/permission-service/domain/entities"
	dialoguehttp "pollsbot/contexts/polling/conversation-service/transport/http"
)

func TestStartDialogueRequiresUserHeader(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"chat_id":"chat-1","kind":"poll_creation"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/dialogues/v1/dialogues", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestStartPollCreationDialogueRequiresCreateTier(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"chat_id":"chat-1","kind":"poll_creation"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/dialogues/v1/dialogues", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestPollCreationWizardOverHTTP(t *testing.T) {
	server := newTestServer()
	seedUser(t, server, "creator-1", permissionentities.TierCreate)

	advance := func(input string) dialoguehttp.StepOutcomeResponse {
		t.Helper()
		payload, _ := json.Marshal(dialoguehttp.AdvanceDialogueRequest{Input: input})
		req := httptest.NewRequest(http.MethodPost, "/api/dialogues/v1/dialogues/steps", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-Id", "creator-1")

		rr := httptest.NewRecorder()
		server.mux.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("advance %q: expected 200, got %d body=%s", input, rr.Code, rr.Body.String())
		}
		var outcome dialoguehttp.StepOutcomeResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &outcome); err != nil {
			t.Fatalf("decode outcome: %v", err)
		}
		return outcome
	}

	startBody := []byte(`{"chat_id":"chat-1","kind":"poll_creation","threshold":60}`)
	req := httptest.NewRequest(http.MethodPost, "/api/dialogues/v1/dialogues", bytes.NewReader(startBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "creator-1")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	advance("Where should we hold the offsite?")
	advance("Berlin")
	advance("Lisbon")
	advance("done")
	outcome := advance("yes")

	if outcome.Outcome != "completed" {
		t.Fatalf("expected completed outcome, got %q", outcome.Outcome)
	}
	if outcome.Poll == nil || len(outcome.Poll.Options) != 2 || outcome.Poll.Threshold != 60 {
		t.Fatalf("unexpected draft: %+v", outcome.Poll)
	}
}

func TestTemplateWizardOverInboundActions(t *testing.T) {
	server := newTestServer()
	seedUser(t, server, "creator-1", permissionentities.TierCreate)

	act := func(kind, payload string) dialoguehttp.ReplyResponse {
		t.Helper()
		body, _ := json.Marshal(dialoguehttp.InboundActionRequest{
			ChatID:  "chat-1",
			Kind:    kind,
			Payload: payload,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/dialogues/v1/dialogues/actions", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-Id", "creator-1")

		rr := httptest.NewRecorder()
		server.mux.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("action %s %q: expected 200, got %d body=%s", kind, payload, rr.Code, rr.Body.String())
		}
		var reply dialoguehttp.ReplyResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &reply); err != nil {
			t.Fatalf("decode reply: %v", err)
		}
		return reply
	}

	startBody := []byte(`{"chat_id":"chat-1","kind":"template_creation"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/dialogues/v1/dialogues", bytes.NewReader(startBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "creator-1")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	act("free_text", "weekly-retro")
	act("free_text", "Keep doing {practice}?")
	act("free_text", "Yes")

	reply := act("free_text", "No")
	if len(reply.Buttons) != 1 || reply.Buttons[0] != "done" {
		t.Fatalf("expected a done quick reply after two options, got %+v", reply.Buttons)
	}

	reply = act("free_text", "done")
	if len(reply.Buttons) != 2 {
		t.Fatalf("expected yes/no quick replies at the confirm step, got %+v", reply.Buttons)
	}

	reply = act("callback", "yes")
	if reply.Text != `Template "weekly-retro" saved.` {
		t.Fatalf("unexpected completion reply: %+v", reply)
	}
}

func TestRejectedStepEditsPreviousMessage(t *testing.T) {
	server := newTestServer()
	seedUser(t, server, "creator-1", permissionentities.TierCreate)

	startBody := []byte(`{"chat_id":"chat-1","kind":"template_creation"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/dialogues/v1/dialogues", bytes.NewReader(startBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "creator-1")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	body, _ := json.Marshal(dialoguehttp.InboundActionRequest{
		ChatID:  "chat-1",
		Kind:    "free_text",
		Payload: "x",
	})
	req = httptest.NewRequest(http.MethodPost, "/api/dialogues/v1/dialogues/actions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "creator-1")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var reply dialoguehttp.ReplyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if !reply.EditPrevious {
		t.Fatalf("expected a rejected step to edit the previous message, got %+v", reply)
	}
	if reply.Text == "" {
		t.Fatal("expected a rejection reason in the reply text")
	}
}

func TestCancelCommandWithoutActiveDialogueReturnsNotFound(t *testing.T) {
	server := newTestServer()
	body, _ := json.Marshal(dialoguehttp.InboundActionRequest{
		ChatID:  "chat-1",
		Kind:    "command",
		Payload: "/cancel",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/dialogues/v1/dialogues/actions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCancelDialogueWithoutActiveOneReturnsNotFound(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodDelete, "/api/dialogues/v1/dialogues", nil)
	req.Header.Set("X-User-Id", "user-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}
