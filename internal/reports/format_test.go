package reports

import (
	"testing"
	"time"
)

func TestFilename(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := Filename(KindStatistics, "", at, "xlsx"); got != "statistics_20250102_030405.xlsx" {
		t.Fatalf("unexpected filename %q", got)
	}
	if got := Filename(KindWorkerStatistics, "karim.r", at, "docx"); got != "worker_statistics_karim_r_20250102_030405.docx" {
		t.Fatalf("unexpected worker filename %q", got)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	if got := Truncate("салом", 3); got != "сал..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("салом", 5); got != "салом" {
		t.Fatalf("text at the limit must be kept, got %q", got)
	}
}

func TestPercentText(t *testing.T) {
	cases := map[float64]string{0: "0%", 25: "25%", 33.3: "33.3%", 100: "100%"}
	for in, want := range cases {
		if got := percentText(in); got != want {
			t.Fatalf("percentText(%v) = %q, want %q", in, got, want)
		}
	}
}
