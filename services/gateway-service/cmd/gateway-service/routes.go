package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/md-rashed-zaman/barberbook/libs/auth"
	"github.com/md-rashed-zaman/barberbook/libs/httpx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	headerShopID = "X-Shop-Id"
	headerUserID = "X-User-Id"
	headerRole   = "X-Role"
)

func registerRoutes(mux *http.ServeMux, u upstreams, verifier *auth.Verifier, transport http.RoundTripper) {
	authProxy := newProxy(u.auth, transport)
	shopProxy := newProxy(u.shop, transport)
	bookingProxy := newProxy(u.booking, transport)
	owner := func(next http.Handler) http.Handler {
		return requireAuth(requireRole(next, auth.RoleOwner), verifier)
	}

	registerProxy(mux, "/api/v1/auth", authProxy)
	registerProxy(mux, "/api/v1/public", bookingProxy)
	registerProxy(mux, "/media", shopProxy)
	registerProxy(mux, "/api/v1/shop", owner(shopProxy))
	registerProxy(mux, "/api/v1/appointments", owner(bookingProxy))
}

func newProxy(target *url.URL, transport http.RoundTripper) *httputil.ReverseProxy {
	p := httputil.NewSingleHostReverseProxy(target)
	if transport == nil {
		transport = otelhttp.NewTransport(http.DefaultTransport)
	}
	p.Transport = transport
	p.ErrorHandler = func(w http.ResponseWriter, _ *http.Request, _ error) {
		httpx.WriteError(w, http.StatusBadGateway, "upstream unavailable")
	}
	return p
}

func registerProxy(mux *http.ServeMux, prefix string, handler http.Handler) {
	if !strings.HasSuffix(prefix, "/") {
		mux.Handle(prefix, handler)
		mux.Handle(prefix+"/", handler)
		return
	}
	mux.Handle(prefix, handler)
}

// stripIdentity drops identity headers a client might forge; only
// requireAuth may set them.
func stripIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(headerShopID)
		r.Header.Del(headerUserID)
		r.Header.Del(headerRole)
		next.ServeHTTP(w, r)
	})
}

func requireAuth(next http.Handler, verifier *auth.Verifier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") || len(strings.TrimSpace(authHeader)) <= len("Bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
			return
		}

		claims, err := verifier.Verify(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
		if err != nil || claims.ShopID == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		r.Header.Set(headerUserID, claims.Subject)
		r.Header.Set(headerShopID, claims.ShopID)
		r.Header.Set(headerRole, claims.Role)
		next.ServeHTTP(w, r)
	})
}

func requireRole(next http.Handler, roles ...string) http.Handler {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := allowed[r.Header.Get(headerRole)]; !ok {
			httpx.WriteError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
