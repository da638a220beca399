package calendar

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCalendar(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trade_date.csv")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write calendar: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeCalendar(t, "20250102\n20250103\n20250106\n")

	cal, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cal.IsTradingDay("20250106") {
		t.Fatal("20250106 should be a trading day")
	}
	if cal.IsTradingDay("20250104") {
		t.Fatal("20250104 is a weekend")
	}
}

// TestLoadSkipsMalformedRows 非 yyyymmdd 行静默丢弃
func TestLoadSkipsMalformedRows(t *testing.T) {
	path := writeCalendar(t, "20250102\nnot-a-date\n2025\n20250103\n")

	cal, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cal.IsTradingDay("20250102") || !cal.IsTradingDay("20250103") {
		t.Fatal("valid rows should survive malformed neighbors")
	}
	if cal.IsTradingDay("2025") {
		t.Fatal("malformed row should be dropped")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("missing file should fail")
	}
}

// TestReload 换新日历文件后整批替换
func TestReload(t *testing.T) {
	path := writeCalendar(t, "20250102\n")
	cal, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := os.WriteFile(path, []byte("20260102\n"), 0o644); err != nil {
		t.Fatalf("rewrite calendar: %v", err)
	}
	if err := cal.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if cal.IsTradingDay("20250102") {
		t.Fatal("old calendar entries should be gone after reload")
	}
	if !cal.IsTradingDay("20260102") {
		t.Fatal("new calendar entries should be visible")
	}
}
