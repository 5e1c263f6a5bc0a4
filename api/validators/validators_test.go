package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
)

type replyBody struct {
	Reply         string `json:"reply" validate:"required,max=10"`
	MarkCompleted bool   `json:"mark_completed"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reply":"ok","mark_completed":true}`))
	var body replyBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Reply != "ok" || !body.MarkCompleted {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field": `{"reply":"ok","extra":1}`,
		"missing":       `{}`,
		"too long":      `{"reply":"01234567890"}`,
		"garbage":       `{"reply":`,
	}
	for name, raw := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
		var body replyBody
		err := DecodeJSONBody(req, &body)
		if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	var body replyBody
	typed := pkgerrors.As(DecodeJSONBody(req, &body))
	details, ok := typed.Details().(map[string]string)
	if !ok || details["reply"] != "is required" {
		t.Fatalf("expected field detail keyed by json name, got %#v", typed.Details())
	}
}

func TestParseQueryDate(t *testing.T) {
	loc := time.FixedZone("TJT", 5*3600)
	req := httptest.NewRequest(http.MethodGet, "/?from=2025-06-01&to=06/30/2025", nil)

	from, err := ParseQueryDate(req, "from", loc)
	if err != nil || from == nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !from.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected date %v", from)
	}
	if _, err := ParseQueryDate(req, "to", loc); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if missing, err := ParseQueryDate(req, "absent", loc); err != nil || missing != nil {
		t.Fatalf("absent date should be nil, got %v %v", missing, err)
	}
}

func TestParseQueryID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?topic_id=4&user_id=0", nil)
	if id, err := ParseQueryID(req, "topic_id"); err != nil || id == nil || *id != 4 {
		t.Fatalf("unexpected result %v %v", id, err)
	}
	if _, err := ParseQueryID(req, "user_id"); err == nil {
		t.Fatalf("zero id must be rejected")
	}
}

func TestParsePathID(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("requestId", "15")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	id, err := ParsePathID(req, "requestId")
	if err != nil || id != 15 {
		t.Fatalf("unexpected result %d %v", id, err)
	}
	if _, err := ParsePathID(req, "topicId"); err == nil {
		t.Fatalf("missing path parameter must be rejected")
	}
}

func TestSanitizeStringCountsRunes(t *testing.T) {
	if got := SanitizeString("  Душанбе  ", 3); got != "Душ" {
		t.Fatalf("unexpected value %q", got)
	}
	blank := "   "
	if OptionalString(&blank, 10) != nil {
		t.Fatalf("blank input should become nil")
	}
}
