package player

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSettingsAndOnboardingEndpoints(t *testing.T) {
	repo, err := NewFileRepo(t.TempDir())
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	h := NewHandler()
	h.SetRepoResolver(func(_ *http.Request) *FileRepo { return repo })

	getRec := httptest.NewRecorder()
	h.Settings(getRec, httptest.NewRequest(http.MethodGet, "/api/player/settings", nil))
	if getRec.Code != http.StatusOK {
		t.Fatalf("settings expected 200, got %d", getRec.Code)
	}

	patchRec := httptest.NewRecorder()
	h.Settings(patchRec, jsonReq(http.MethodPatch, "/api/player/settings", map[string]any{
		"playerName":  "Dr. Tester",
		"keybindings": map[string]string{CmdEndTurn: "e"},
	}))
	if patchRec.Code != http.StatusOK {
		t.Fatalf("settings patch expected 200, got %d body=%s", patchRec.Code, patchRec.Body.String())
	}
	var out Settings
	if err := json.NewDecoder(patchRec.Body).Decode(&out); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if out.PlayerName != "Dr. Tester" {
		t.Fatalf("expected player name Dr. Tester, got %q", out.PlayerName)
	}
	if out.KeyFor(CmdEndTurn) != "e" {
		t.Fatalf("expected end turn on e, got %q", out.KeyFor(CmdEndTurn))
	}

	conflictRec := httptest.NewRecorder()
	h.Settings(conflictRec, jsonReq(http.MethodPatch, "/api/player/settings", map[string]any{
		"keybindings": map[string]string{CmdQuit: "e"},
	}))
	if conflictRec.Code != http.StatusConflict {
		t.Fatalf("conflicting key expected 409, got %d", conflictRec.Code)
	}

	stepRec := httptest.NewRecorder()
	h.Onboarding(stepRec, jsonReq(http.MethodPost, "/api/player/onboarding", map[string]any{"step": StepWelcome}))
	if stepRec.Code != http.StatusOK {
		t.Fatalf("mark step expected 200, got %d body=%s", stepRec.Code, stepRec.Body.String())
	}
	var ob struct {
		Onboarding Onboarding `json:"onboarding"`
		Next       string     `json:"next"`
	}
	if err := json.NewDecoder(stepRec.Body).Decode(&ob); err != nil {
		t.Fatalf("decode onboarding: %v", err)
	}
	if ob.Next != StepActionPoints {
		t.Fatalf("expected next step %q, got %q", StepActionPoints, ob.Next)
	}

	badRec := httptest.NewRecorder()
	h.Onboarding(badRec, jsonReq(http.MethodPost, "/api/player/onboarding", map[string]any{"step": "skydiving"}))
	if badRec.Code != http.StatusBadRequest {
		t.Fatalf("unknown step expected 400, got %d", badRec.Code)
	}

	dismissRec := httptest.NewRecorder()
	h.Onboarding(dismissRec, jsonReq(http.MethodPost, "/api/player/onboarding", map[string]any{"dismiss": true}))
	if dismissRec.Code != http.StatusOK {
		t.Fatalf("dismiss expected 200, got %d", dismissRec.Code)
	}
	if repo.Get().Onboarding.NextStep() != "" {
		t.Fatalf("expected tutorial finished after dismiss")
	}

	methodRec := httptest.NewRecorder()
	h.Onboarding(methodRec, httptest.NewRequest(http.MethodDelete, "/api/player/onboarding", nil))
	if methodRec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("delete expected 405, got %d", methodRec.Code)
	}
}

func jsonReq(method, path string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}
