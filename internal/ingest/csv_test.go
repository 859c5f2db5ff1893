package ingest

import (
	"errors"
	"strings"
	"testing"

	apperrors "tradelens/internal/errors"
)

func TestReadCSV(t *testing.T) {
	input := "timestamp,asset,side,pnl\n" +
		"2024-05-06 09:30:00,AAPL,BUY,45.00\n" +
		"2024-05-06 10:15:00,MSFT,SELL,-12.50\n"

	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["asset"] != "AAPL" || rows[1]["asset"] != "MSFT" {
		t.Errorf("row order not preserved: %v", rows)
	}
	if rows[1]["pnl"] != "-12.50" {
		t.Errorf("pnl = %q, want -12.50", rows[1]["pnl"])
	}
}

func TestReadCSVStripsBOM(t *testing.T) {
	input := "\uFEFFtimestamp,side,pnl\n2024-05-06,BUY,10\n"
	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if _, ok := rows[0]["timestamp"]; !ok {
		t.Errorf("BOM not stripped from first header, keys: %v", rows[0])
	}
}

func TestReadCSVPadsShortRows(t *testing.T) {
	input := "timestamp,side,pnl\n2024-05-06,BUY\n"
	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if v, ok := rows[0]["pnl"]; !ok || v != "" {
		t.Errorf("short row should pad pnl with empty string, got %q ok=%v", v, ok)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	if !errors.Is(err, apperrors.ErrEmptyFile) {
		t.Errorf("err = %v, want ErrEmptyFile", err)
	}
}

func TestConcatPagesOrdersByNumber(t *testing.T) {
	pages := []Page{
		{Number: 3, Rows: []RawRow{{"id": "c"}}},
		{Number: 1, Rows: []RawRow{{"id": "a1"}, {"id": "a2"}}},
		{Number: 2, Rows: []RawRow{{"id": "b"}}},
	}

	rows := ConcatPages(pages)
	want := []string{"a1", "a2", "b", "c"}
	if len(rows) != len(want) {
		t.Fatalf("rows = %d, want %d", len(rows), len(want))
	}
	for i, id := range want {
		if rows[i]["id"] != id {
			t.Errorf("rows[%d] = %q, want %q", i, rows[i]["id"], id)
		}
	}

	// The input slice is left untouched.
	if pages[0].Number != 3 {
		t.Error("ConcatPages must not reorder the caller's slice")
	}
}

func TestConcatPagesEmpty(t *testing.T) {
	if rows := ConcatPages(nil); len(rows) != 0 {
		t.Errorf("rows = %v, want empty", rows)
	}
}
