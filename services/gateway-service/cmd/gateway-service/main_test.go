package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/md-rashed-zaman/barberbook/libs/auth"
	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	"github.com/redis/go-redis/v9"
)

const testSecret = "test-secret-0123456789"

func TestRequireRole(t *testing.T) {
	h := requireRole(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), auth.RoleOwner)

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set(headerRole, "staff")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rw.Code)
	}

	reqOK := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	reqOK.Header.Set(headerRole, auth.RoleOwner)
	rwOK := httptest.NewRecorder()
	h.ServeHTTP(rwOK, reqOK)
	if rwOK.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rwOK.Code)
	}
}

func TestRequireAuthSetsShopHeader(t *testing.T) {
	signer := auth.NewSigner(testSecret, "barberbook", time.Hour)
	token, _, err := signer.Sign("user-1", "shop-1", auth.RoleOwner)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	h := requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(headerShopID) != "shop-1" || r.Header.Get(headerUserID) != "user-1" || r.Header.Get(headerRole) != auth.RoleOwner {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}), auth.NewVerifier(testSecret, "barberbook"))

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}

	reqBad := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	reqBad.Header.Set("Authorization", "Bearer badtoken")
	rwBad := httptest.NewRecorder()
	h.ServeHTTP(rwBad, reqBad)
	if rwBad.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rwBad.Code)
	}
}

func TestRoutesForwardAndGuard(t *testing.T) {
	var gotShop, gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotShop = r.Header.Get(headerShopID)
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()
	target, _ := url.Parse(upstream.URL)

	mux := http.NewServeMux()
	registerRoutes(mux, upstreams{auth: target, shop: target, booking: target}, auth.NewVerifier(testSecret, "barberbook"), http.DefaultTransport)
	handler := httpx.Chain(mux, stripIdentity)

	// A forged shop header on a public route never reaches the upstream.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/shop?shop_id=s1", nil)
	req.Header.Set(headerShopID, "forged")
	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, req)
	if rw.Code != http.StatusOK || gotShop != "" || gotPath != "/api/v1/public/shop" {
		t.Fatalf("public route: code=%d shop=%q path=%q", rw.Code, gotShop, gotPath)
	}

	rw = httptest.NewRecorder()
	handler.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil))
	if rw.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rw.Code)
	}

	token, _, _ := auth.NewSigner(testSecret, "barberbook", time.Hour).Sign("u1", "shop-9", auth.RoleOwner)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/shop/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(headerShopID, "forged")
	rw = httptest.NewRecorder()
	handler.ServeHTTP(rw, req)
	if rw.Code != http.StatusOK || gotShop != "shop-9" {
		t.Fatalf("admin route: code=%d shop=%q", rw.Code, gotShop)
	}
}

func TestUpstreamDownReturns502(t *testing.T) {
	target, _ := url.Parse("http://127.0.0.1:1")
	mux := http.NewServeMux()
	registerRoutes(mux, upstreams{auth: target, shop: target, booking: target}, auth.NewVerifier(testSecret, ""), http.DefaultTransport)

	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	if rw.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rw.Code)
	}
}

func TestRedisRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	limiter := httpx.NewRedisLimiter(rdb, 2, time.Minute, "test")
	h := httpx.WithRateLimit(limiter, httpx.ClientIP, slog.New(slog.NewTextHandler(io.Discard, nil)), false)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
	)

	codes := make([]int, 3)
	for i := range codes {
		rw := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/public/services", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rw, req)
		codes[i] = rw.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}
