package pagination

import (
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 4, 10, 11, 12, 0, time.UTC)
	encoded := EncodeCursor(Cursor{CreatedAt: at, ID: 42})

	got, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("ParseCursor returned error: %v", err)
	}
	if got.ID != 42 || !got.CreatedAt.Equal(at) {
		t.Fatalf("unexpected cursor %+v", got)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if c, err := ParseCursor("   "); err != nil || c != nil {
		t.Fatalf("blank cursor should be nil, got %+v %v", c, err)
	}
	if _, err := ParseCursor("!!!"); err == nil {
		t.Fatal("expected decode error")
	}
	bad := EncodeCursor(Cursor{CreatedAt: time.Now()})
	if _, err := ParseCursor(bad); err == nil {
		t.Fatal("expected zero id to be rejected")
	}
}

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit || NormalizeLimit(1000) != MaxLimit || NormalizeLimit(7) != 7 {
		t.Fatal("unexpected limit normalization")
	}
	if LimitWithBuffer(7) != 8 {
		t.Fatal("expected buffer of one")
	}
}

func TestTrimComputesNextCursor(t *testing.T) {
	type row struct{ id uint64 }
	rows := []row{{5}, {4}, {3}}
	page := Trim(rows, 2, func(r row) Cursor { return Cursor{CreatedAt: time.Unix(0, 0), ID: r.id} })
	if len(page.Items) != 2 || page.NextCursor == "" {
		t.Fatalf("unexpected page %+v", page)
	}
	next, err := ParseCursor(page.NextCursor)
	if err != nil || next.ID != 4 {
		t.Fatalf("expected cursor at id 4, got %+v %v", next, err)
	}

	last := Trim(rows[:1], 2, func(r row) Cursor { return Cursor{ID: r.id} })
	if last.NextCursor != "" {
		t.Fatal("final page must not carry a cursor")
	}
	empty := Trim([]row(nil), 2, func(r row) Cursor { return Cursor{ID: r.id} })
	if empty.Items == nil {
		t.Fatal("items should serialize as an empty list")
	}
}
