package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	"github.com/angelmondragon/nazorat-backend/pkg/types"
)

func captureActor(dst *types.Actor, seen *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*dst, *seen = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestActorParsesHeaders(t *testing.T) {
	var actor types.Actor
	var seen bool
	handler := Actor(nil)(captureActor(&actor, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ActorIDHeader, "42")
	req.Header.Set(ActorRoleHeader, "Admin")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !seen || actor.ID != 42 || actor.Role != enums.UserRoleAdmin {
		t.Fatalf("unexpected actor %+v (seen=%v)", actor, seen)
	}
}

func TestActorDefaultsRoleAndAllowsAnonymous(t *testing.T) {
	var actor types.Actor
	var seen bool
	handler := Actor(nil)(captureActor(&actor, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ActorIDHeader, "7")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !seen || actor.Role != enums.UserRoleUser {
		t.Fatalf("expected plain user role, got %+v", actor)
	}

	seen = false
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if seen {
		t.Fatalf("anonymous request should carry no actor")
	}
}

func TestActorRejectsMalformedHeaders(t *testing.T) {
	handler := Actor(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	for _, tc := range []struct{ id, role string }{
		{id: "abc"},
		{id: "0"},
		{id: "5", role: "superuser"},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(ActorIDHeader, tc.id)
		if tc.role != "" {
			req.Header.Set(ActorRoleHeader, tc.role)
		}
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("id=%q role=%q: expected 401 got %d", tc.id, tc.role, resp.Code)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := Actor(nil)(RequireAdmin(nil)(ok))

	cases := []struct {
		name   string
		id     string
		role   string
		status int
	}{
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "user", id: "3", role: "user", status: http.StatusForbidden},
		{name: "admin", id: "1", role: "admin", status: http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.id != "" {
			req.Header.Set(ActorIDHeader, tc.id)
			req.Header.Set(ActorRoleHeader, tc.role)
		}
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != tc.status {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.status, resp.Code)
		}
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "INTERNAL_ERROR") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestRequestIDEchoesOrMints(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if got := resp.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected echoed id, got %q", got)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := resp.Header().Get(requestIDHeader); len(got) != 36 {
		t.Fatalf("expected minted uuid, got %q", got)
	}
}
