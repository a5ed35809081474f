package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/crisoull/bodega/internal/auth"
	"github.com/crisoull/bodega/internal/bulk"
	"github.com/crisoull/bodega/internal/db"
	"github.com/crisoull/bodega/internal/model"
	"github.com/crisoull/bodega/internal/store"
)

const testJWTSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	st := store.New(db.NewTestDB(t))
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("loading store: %v", err)
	}

	router := NewRouter(&Server{
		Store:     st,
		JWTSecret: testJWTSecret,
		Log:       zerolog.Nop(),
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, st
}

func setupTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	server, st := newTestServer(t)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	st.CreateUser(ctx, "admin", string(hash), model.RoleAdmin)

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password123"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return server, token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLoginLockout(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	for i := 0; i < auth.MaxLoginAttempts; i++ {
		resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
		resp.Body.Close()
	}

	// Even the right password is blocked while locked out.
	good, _ := json.Marshal(map[string]string{"username": "admin", "password": "password123"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(good))
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429 during lockout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLoginInputScreening(t *testing.T) {
	st := store.New(db.NewTestDB(t))
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("loading store: %v", err)
	}

	hooks := &auth.Hooks{}
	hooks.Pre(auth.ScreenLogin)
	router := NewRouter(&Server{
		Store:     st,
		JWTSecret: testJWTSecret,
		Log:       zerolog.Nop(),
		Hooks:     hooks,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	body, _ := json.Marshal(map[string]string{
		"username": "admin'; DROP TABLE users; --",
		"password": "password123",
	})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for screened username, got %d", resp.StatusCode)
	}
}

func TestToolsAPIFlow(t *testing.T) {
	server, token := setupTestServer(t)

	// Create tool.
	req, _ := authRequest("POST", server.URL+"/api/tools", token, map[string]any{
		"name":     "Taladro",
		"quantity": 2,
		"weight":   1.8,
		"category": "Eléctrica",
		"status":   "Disponible",
		"location": "Bodega A",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created model.Tool
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	// Loan it.
	req, _ = authRequest("POST", server.URL+"/api/tools/1/loan", token, map[string]string{
		"responsible": "Pedro",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for loan, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Return it.
	req, _ = authRequest("POST", server.URL+"/api/tools/1/return", token, map[string]string{
		"responsible": "Pedro",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for return, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The ledger has both events.
	req, _ = authRequest("GET", server.URL+"/api/history", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	var history []model.Movement
	json.NewDecoder(resp.Body).Decode(&history)
	resp.Body.Close()
	if len(history) != 2 {
		t.Errorf("expected 2 ledger entries, got %d", len(history))
	}
}

func TestToolValidationErrors(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/tools", token, map[string]any{
		"name":     "ab",
		"quantity": 0,
		"category": "Nada",
		"status":   "Nada",
		"location": "Nada",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body struct {
		Messages []string `json:"messages"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if len(body.Messages) < 4 {
		t.Errorf("expected all validation messages returned, got %v", body.Messages)
	}
}

func TestScanEndpoint(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/tools", token, map[string]any{
		"name":     "Taladro",
		"quantity": 1,
		"category": "Eléctrica",
		"status":   "Disponible",
		"location": "Bodega A",
	})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()

	// First scan loans the tool out.
	req, _ = authRequest("POST", server.URL+"/api/scan", token, map[string]string{
		"payload":     `{"type":"tool","serialNumber":"T-1","name":"Taladro"}`,
		"responsible": "Pedro",
	})
	resp, _ = http.DefaultClient.Do(req)
	var first scanResponse
	json.NewDecoder(resp.Body).Decode(&first)
	resp.Body.Close()
	if first.Action != model.ActionLoan {
		t.Fatalf("expected loan action, got %q", first.Action)
	}

	// Second scan returns it.
	req, _ = authRequest("POST", server.URL+"/api/scan", token, map[string]string{
		"payload":     `{"type":"tool","serialNumber":"T-1","name":"Taladro"}`,
		"responsible": "Pedro",
	})
	resp, _ = http.DefaultClient.Do(req)
	var second scanResponse
	json.NewDecoder(resp.Body).Decode(&second)
	resp.Body.Close()
	if second.Action != model.ActionReturn {
		t.Errorf("expected return action, got %q", second.Action)
	}
}

func TestExportEndpoint(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("GET", server.URL+"/api/export", token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != workbookMIME {
		t.Errorf("expected workbook content type, got %q", ct)
	}
}

func TestBackupIgnoresFilters(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/tools", token, map[string]any{
		"name":     "Taladro",
		"quantity": 1,
		"category": "Eléctrica",
		"status":   "Disponible",
		"location": "Bodega A",
	})
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()

	// A filter that matches nothing narrows the export sheet.
	req, _ = authRequest("GET", server.URL+"/api/export?status=Prestado", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	exported, _, _, _, err := bulk.Restore(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("reading export artifact: %v", err)
	}
	if len(exported) != 0 {
		t.Fatalf("expected filtered export empty, got %d tools", len(exported))
	}

	// The same filter on a backup changes nothing.
	req, _ = authRequest("GET", server.URL+"/api/backup?status=Prestado", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	backed, _, _, _, err := bulk.Restore(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("reading backup artifact: %v", err)
	}
	if len(backed) != 1 || backed[0].Name != "Taladro" {
		t.Errorf("expected complete backup with 1 tool, got %d", len(backed))
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := newTestServer(t)

	resp, _ := http.Get(server.URL + "/api/tools")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	server, st := newTestServer(t)

	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	st.CreateUser(ctx, "user1", string(hash), model.RoleUser)

	userToken, _ := auth.GenerateToken(testJWTSecret, 1, "user1", model.RoleUser)

	// Regular user cannot create tools (manager+ required).
	req, _ := authRequest("POST", server.URL+"/api/tools", userToken, map[string]any{
		"name": "Test", "quantity": 1,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user creating tool, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Regular user cannot access user management.
	req, _ = authRequest("GET", server.URL+"/api/users", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user accessing users, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Regular user cannot wipe data (admin required).
	req, _ = authRequest("DELETE", server.URL+"/api/data", userToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for user clearing data, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSettingsEndpoints(t *testing.T) {
	server, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/settings/categories", token, map[string]string{
		"name": "Soldadura",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var settings model.Settings
	json.NewDecoder(resp.Body).Decode(&settings)
	resp.Body.Close()
	if !model.Contains(settings.ToolCategories, "Soldadura") {
		t.Error("expected new category in response")
	}

	// Duplicate add conflicts.
	req, _ = authRequest("POST", server.URL+"/api/settings/categories", token, map[string]string{
		"name": "Soldadura",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("DELETE", server.URL+"/api/settings/categories/Soldadura", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for removal, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
