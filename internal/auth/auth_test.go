package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finhorizon/horizon/internal/db"
	"github.com/finhorizon/horizon/internal/verify"
)

var testSecret = []byte("test-secret")

func setupTestService(t *testing.T) *Service {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewService(NewStore(database), testSecret, time.Hour, nil)
}

func setupTestRouter(t *testing.T) (*Service, chi.Router) {
	t.Helper()
	svc := setupTestService(t)

	r := chi.NewRouter()
	svc.RegisterPublicRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(testSecret))
		svc.RegisterProtectedRoutes(r)
	})
	return svc, r
}

func postJSON(t *testing.T, r chi.Router, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	userID, err := UserIDFromToken(token, testSecret)
	if err != nil {
		t.Fatalf("UserIDFromToken: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q, want user-1", userID)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("user-1", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := UserIDFromToken(token, testSecret); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := GenerateToken("user-1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := UserIDFromToken(token, []byte("other")); err == nil {
		t.Error("expected token signed with other secret to be rejected")
	}
}

func TestSignupAndLogin(t *testing.T) {
	_, r := setupTestRouter(t)

	w := postJSON(t, r, "/api/auth/signup", credentialsRequest{
		Email: "alice@example.com", Password: "correcthorse",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Duplicate email.
	w = postJSON(t, r, "/api/auth/signup", credentialsRequest{
		Email: "alice@example.com", Password: "correcthorse",
	}, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409, got %d", w.Code)
	}

	// Login with the right password.
	w = postJSON(t, r, "/api/auth/login", credentialsRequest{
		Email: "alice@example.com", Password: "correcthorse",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", w.Code)
	}

	var body struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Token == "" {
		t.Fatal("expected a token")
	}

	// Wrong password.
	w = postJSON(t, r, "/api/auth/login", credentialsRequest{
		Email: "alice@example.com", Password: "wrongwrong",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", w.Code)
	}
}

// The signup form gates submission behind the slide-to-verify widget:
// the user drags past the threshold, waits out the verifying pause, and
// only then posts the credentials.
func TestSignupFlowWithSliderVerification(t *testing.T) {
	_, r := setupTestRouter(t)

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	slider := verify.NewWithClock(func() time.Time { return now })

	slider.Begin()
	slider.Move(40)
	slider.Move(92)
	if !slider.Release() {
		t.Fatal("expected release past the threshold to verify")
	}
	if got := slider.State(); got != verify.StateVerifying {
		t.Fatalf("state = %q, want verifying", got)
	}

	// Submitting is blocked until the verifying pause has elapsed.
	now = now.Add(verify.VerifyingDelay)
	if got := slider.State(); got != verify.StateVerified {
		t.Fatalf("state = %q, want verified", got)
	}

	w := postJSON(t, r, "/api/auth/signup", credentialsRequest{
		Email: "bob@example.com", Password: "correcthorse",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	_, r := setupTestRouter(t)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestProfileDefaultsToEmailLocalPart(t *testing.T) {
	svc, r := setupTestRouter(t)

	w := postJSON(t, r, "/api/auth/signup", credentialsRequest{
		Email: "bob.smith@example.com", Password: "correcthorse",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", w.Code)
	}

	var body struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	profile, err := svc.Store().GetProfile(context.Background(), body.User.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.DisplayName != "bob.smith" {
		t.Errorf("DisplayName = %q, want bob.smith", profile.DisplayName)
	}

	// Profile is reachable and updatable through the gated routes.
	req := httptest.NewRequest("GET", "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get profile: expected 200, got %d", rec.Code)
	}
}

func TestPasswordReset(t *testing.T) {
	svc, r := setupTestRouter(t)
	ctx := context.Background()

	if _, err := svc.Store().CreateUser(ctx, "carol@example.com", "oldpassword"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	token, err := svc.Store().CreateResetToken(ctx, "carol@example.com")
	if err != nil {
		t.Fatalf("CreateResetToken: %v", err)
	}

	w := postJSON(t, r, "/api/auth/reset-password", resetPasswordRequest{
		Token: token, Password: "newpassword",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if _, err := svc.Store().Authenticate(ctx, "carol@example.com", "newpassword"); err != nil {
		t.Errorf("expected new password to work: %v", err)
	}
	if _, err := svc.Store().Authenticate(ctx, "carol@example.com", "oldpassword"); err == nil {
		t.Error("expected old password to be rejected")
	}

	// Tokens are single use.
	w = postJSON(t, r, "/api/auth/reset-password", resetPasswordRequest{
		Token: token, Password: "anotherpassword",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("reused token: expected 400, got %d", w.Code)
	}
}

func TestLocalPart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice@example.com", "alice"},
		{"bob.smith@corp.io", "bob.smith"},
		{"noat", "noat"},
	}
	for _, tt := range tests {
		if got := LocalPart(tt.in); got != tt.want {
			t.Errorf("LocalPart(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
