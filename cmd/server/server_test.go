package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/liamcoop/sopscript/sop"
)

func newTestServer() *Server {
	engine := sop.NewEngine(sop.NewInMemorySOPStore())
	return NewServer(engine, nil)
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func validSOPBody() map[string]any {
	return map[string]any{
		"name":    "Support Escalation",
		"version": "1.0",
		"rules": []map[string]any{{
			"name":    "Escalate refunds",
			"trigger": map[string]any{"type": "message"},
			"conditions": []map[string]any{
				{"field": "message.content", "operator": "contains", "value": "refund"},
			},
			"thenActions": []map[string]any{
				{"type": "escalate", "config": map[string]any{"team": "support"}},
			},
			"enabled": true,
			"order":   1,
		}},
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["storage"] != "memory" {
		t.Errorf("storage = %q, want memory", resp["storage"])
	}
}

func TestCompileEndpoint(t *testing.T) {
	s := newTestServer()

	rec := postJSON(t, s, "/api/v1/compile", validSOPBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("compile returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp CompileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !strings.Contains(resp.Script, "# SOP: Support Escalation") {
		t.Errorf("script missing header: %q", resp.Script)
	}
	if !strings.Contains(resp.Script, `message.content ~= "refund"`) {
		t.Errorf("script missing condition: %q", resp.Script)
	}
	if !strings.Contains(resp.Script, `escalate(team: "support")`) {
		t.Errorf("script missing action: %q", resp.Script)
	}
	if len(resp.Errors) != 0 {
		t.Errorf("unexpected errors: %v", resp.Errors)
	}
}

func TestCompileEndpointReportsDiagnosticsButStillCompiles(t *testing.T) {
	s := newTestServer()

	body := map[string]any{
		"name": "",
		"rules": []map[string]any{{
			"name":    "Inert",
			"trigger": map[string]any{"type": "message"},
			"enabled": true,
		}},
	}

	rec := postJSON(t, s, "/api/v1/compile", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("compile with diagnostics should still be 200, got %d", rec.Code)
	}

	var resp CompileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Errors) == 0 {
		t.Error("expected the missing-name error")
	}
	if len(resp.Warnings) == 0 {
		t.Error("expected the inert-rule warning")
	}
	if !strings.Contains(resp.Script, "    # No actions defined") {
		t.Errorf("inert rule should compile with placeholder, got %q", resp.Script)
	}
}

func TestValidateEndpoint(t *testing.T) {
	s := newTestServer()

	rec := postJSON(t, s, "/api/v1/validate", map[string]any{"name": "", "rules": []any{}})
	if rec.Code != http.StatusOK {
		t.Fatalf("validate returned %d", rec.Code)
	}

	var resp ValidateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Valid {
		t.Error("empty document should not be valid")
	}
	if len(resp.Errors) < 2 {
		t.Errorf("expected name and rules errors, got %v", resp.Errors)
	}
}

func TestHighlightEndpoint(t *testing.T) {
	s := newTestServer()

	rec := postJSON(t, s, "/api/v1/highlight", HighlightRequest{Script: "TRIGGER message\nEND"})
	if rec.Code != http.StatusOK {
		t.Fatalf("highlight returned %d", rec.Code)
	}

	var resp HighlightResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Lines) != 2 {
		t.Fatalf("expected 2 token lines, got %d", len(resp.Lines))
	}
	if resp.Lines[0][0].Text != "TRIGGER" || resp.Lines[0][0].Class != "keyword" {
		t.Errorf("first token = %+v", resp.Lines[0][0])
	}
}

func TestSOPLifecycle(t *testing.T) {
	s := newTestServer()

	// Create
	rec := postJSON(t, s, "/api/v1/sops", validSOPBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned %d: %s", rec.Code, rec.Body.String())
	}

	var created sop.SOP
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode created sop: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created sop should have a generated ID")
	}
	if created.Rules[0].ID == "" {
		t.Error("rules should get generated IDs too")
	}

	// Get
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sops/"+created.ID, nil)
	rec2 := httptest.NewRecorder()
	s.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("get returned %d", rec2.Code)
	}

	// Script preview
	req = httptest.NewRequest(http.MethodGet, "/api/v1/sops/"+created.ID+"/script", nil)
	rec3 := httptest.NewRecorder()
	s.ServeHTTP(rec3, req)
	if rec3.Code != http.StatusOK {
		t.Fatalf("script preview returned %d", rec3.Code)
	}
	var preview CompileResponse
	if err := json.Unmarshal(rec3.Body.Bytes(), &preview); err != nil {
		t.Fatalf("failed to decode preview: %v", err)
	}
	if !strings.Contains(preview.Script, "TRIGGER message") {
		t.Errorf("preview script = %q", preview.Script)
	}

	// Export
	req = httptest.NewRequest(http.MethodGet, "/api/v1/sops/"+created.ID+"/script?download=true", nil)
	rec4 := httptest.NewRecorder()
	s.ServeHTTP(rec4, req)
	if rec4.Code != http.StatusOK {
		t.Fatalf("export returned %d", rec4.Code)
	}
	if ct := rec4.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("export content type = %q", ct)
	}
	if cd := rec4.Header().Get("Content-Disposition"); !strings.Contains(cd, "Support_Escalation.s1") {
		t.Errorf("export disposition = %q", cd)
	}

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/sops/"+created.ID, nil)
	rec5 := httptest.NewRecorder()
	s.ServeHTTP(rec5, req)
	if rec5.Code != http.StatusNoContent {
		t.Fatalf("delete returned %d", rec5.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sops/"+created.ID, nil)
	rec6 := httptest.NewRecorder()
	s.ServeHTTP(rec6, req)
	if rec6.Code != http.StatusNotFound {
		t.Errorf("get after delete returned %d", rec6.Code)
	}
}

func TestCreateSOPRejectsBlockingErrors(t *testing.T) {
	s := newTestServer()

	rec := postJSON(t, s, "/api/v1/sops", map[string]any{"name": "", "rules": []any{}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("create with errors returned %d, want 422", rec.Code)
	}

	var resp ValidateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Errors) < 2 {
		t.Errorf("expected diagnostics in the refusal, got %v", resp.Errors)
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Support Escalation", "Support_Escalation.s1"},
		{"", "sop.s1"},
		{"   ", "sop.s1"},
		{"v1.2/final", "v12final.s1"},
		{"***", "sop.s1"},
	}

	for _, tt := range tests {
		if got := exportFilename(tt.name); got != tt.want {
			t.Errorf("exportFilename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
