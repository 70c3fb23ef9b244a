package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/md-rashed-zaman/barberbook/libs/auth"
	"github.com/md-rashed-zaman/barberbook/services/auth-service/internal/storage"
)

func TestPasswordHashing(t *testing.T) {
	password := "pass123"
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if err := verifyPassword(hash, password); err != nil {
		t.Fatalf("verifyPassword should succeed: %v", err)
	}
	if err := verifyPassword(hash, "wrong-pass"); err == nil {
		t.Fatal("verifyPassword should fail for wrong password")
	}
}

type fakeUsers struct {
	mu     sync.Mutex
	users  map[string]storage.User
	shops  map[string]string
	broken bool
}

func (f *fakeUsers) Register(_ context.Context, u storage.User, shopName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken {
		return errors.New("db down")
	}
	key := strings.ToLower(u.Email)
	if _, ok := f.users[key]; ok {
		return storage.ErrEmailTaken
	}
	f.users[key] = u
	f.shops[u.ShopID] = shopName
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (storage.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[strings.ToLower(email)]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}
	return u, nil
}

func newTestHandler() (*http.ServeMux, *fakeUsers) {
	users := &fakeUsers{users: map[string]storage.User{}, shops: map[string]string{}}
	h := NewAuthHandler(users,
		auth.NewSigner("test-secret", "barberbook", time.Hour),
		auth.NewVerifier("test-secret", "barberbook"),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	mux := http.NewServeMux()
	h.Routes(mux)
	return mux, users
}

func post(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rw
}

func TestRegisterLoginMe(t *testing.T) {
	mux, users := newTestHandler()

	rw := post(mux, "/api/v1/auth/register", `{"email":"dono@navalha.com","password":"segredo1","shopName":"Navalha"}`)
	if rw.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rw.Code, rw.Body.String())
	}
	var reg tokenResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reg.AccessToken == "" || reg.ShopID == "" || users.shops[reg.ShopID] != "Navalha" {
		t.Fatalf("unexpected register response %+v", reg)
	}

	if rw := post(mux, "/api/v1/auth/register", `{"email":"DONO@navalha.com","password":"segredo1","shopName":"Outra"}`); rw.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", rw.Code)
	}

	rw = post(mux, "/api/v1/auth/login", `{"email":"Dono@Navalha.com","password":"segredo1"}`)
	if rw.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rw.Code, rw.Body.String())
	}
	var login tokenResponse
	_ = json.Unmarshal(rw.Body.Bytes(), &login)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rw = httptest.NewRecorder()
	mux.ServeHTTP(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("me: %d", rw.Code)
	}
	var me meResponse
	_ = json.Unmarshal(rw.Body.Bytes(), &me)
	if me.ShopID != reg.ShopID || me.Role != auth.RoleOwner || me.UserID == "" {
		t.Fatalf("unexpected me %+v", me)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	mux, _ := newTestHandler()
	post(mux, "/api/v1/auth/register", `{"email":"a@b.com","password":"segredo1","shopName":"X"}`)

	if rw := post(mux, "/api/v1/auth/login", `{"email":"a@b.com","password":"errada"}`); rw.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rw.Code)
	}
	if rw := post(mux, "/api/v1/auth/login", `{"email":"nobody@b.com","password":"segredo1"}`); rw.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", rw.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	mux, users := newTestHandler()
	rw := post(mux, "/api/v1/auth/register", `{"email":"not-an-email","password":"123","shopName":" "}`)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
	for _, f := range []string{"email", "password", "shopName"} {
		if !strings.Contains(rw.Body.String(), `"`+f+`"`) {
			t.Fatalf("expected %s field error in %s", f, rw.Body.String())
		}
	}

	users.broken = true
	if rw := post(mux, "/api/v1/auth/register", `{"email":"c@d.com","password":"segredo1","shopName":"Y"}`); rw.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 on backend failure, got %d", rw.Code)
	}
}

func TestMeRejectsMissingToken(t *testing.T) {
	mux, _ := newTestHandler()
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	if rw.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rw.Code)
	}
}
