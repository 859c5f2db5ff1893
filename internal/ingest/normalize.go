// Package ingest converts raw tabular trade-log rows into normalized records.
package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "tradelens/internal/errors"
	"tradelens/internal/models"
)

// RawRow is one uploaded row keyed by column name. Keys are matched
// case/whitespace-insensitively against the canonical column set.
type RawRow map[string]string

// Canonical column names after header normalization.
const (
	colTimestamp  = "timestamp"
	colAsset      = "asset"
	colSide       = "side"
	colQuantity   = "quantity"
	colEntryPrice = "entry_price"
	colExitPrice  = "exit_price"
	colProfitLoss = "profit_loss"
	colBalance    = "balance"
)

// headerSynonyms maps known alternate column names onto canonical ones.
// "price" is special-cased: it backs both entry and exit price when the
// dedicated columns are absent.
var headerSynonyms = map[string]string{
	"date":            colTimestamp,
	"time":            colTimestamp,
	"datetime":        colTimestamp,
	"symbol":          colAsset,
	"ticker":          colAsset,
	"instrument":      colAsset,
	"action":          colSide,
	"direction":       colSide,
	"qty":             colQuantity,
	"size":            colQuantity,
	"entry":           colEntryPrice,
	"exit":            colExitPrice,
	"pnl":             colProfitLoss,
	"profit":          colProfitLoss,
	"p/l":             colProfitLoss,
	"equity":          colBalance,
	"account_balance": colBalance,
}

// timestampLayouts are tried in order when parsing record timestamps.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
}

// CanonicalKey normalizes a raw column name: lower-cased, trimmed, inner
// whitespace collapsed to underscores, then mapped through known synonyms.
func CanonicalKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.Join(strings.Fields(key), "_")
	key = strings.ReplaceAll(key, "-", "_")
	if canonical, ok := headerSynonyms[key]; ok {
		return canonical
	}
	return key
}

// Normalize converts raw rows into validated trade records, preserving input
// order. Rows missing a required field (timestamp, side) or carrying an
// unknown side are dropped. When every row is rejected the result is an empty
// set plus ErrNoValidRows.
func Normalize(rows []RawRow) ([]models.TradeRecord, []*apperrors.RowError, error) {
	records := make([]models.TradeRecord, 0, len(rows))
	var rejects []*apperrors.RowError

	for i, row := range rows {
		rec, rowErr := normalizeRow(i, canonicalizeRow(row))
		if rowErr != nil {
			rejects = append(rejects, rowErr)
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 && len(rows) > 0 {
		return records, rejects, apperrors.ErrNoValidRows
	}
	return records, rejects, nil
}

func canonicalizeRow(row RawRow) RawRow {
	out := make(RawRow, len(row))
	for k, v := range row {
		out[CanonicalKey(k)] = strings.TrimSpace(v)
	}
	return out
}

func normalizeRow(index int, row RawRow) (models.TradeRecord, *apperrors.RowError) {
	var rec models.TradeRecord

	rawTS, ok := row[colTimestamp]
	if !ok || rawTS == "" {
		return rec, apperrors.NewRowError(index, colTimestamp, "missing required value")
	}
	rec.RawTimestamp = rawTS
	rec.Timestamp = parseTimestamp(rawTS)

	side := models.Side(strings.ToUpper(row[colSide]))
	if !side.Valid() {
		return rec, apperrors.NewRowError(index, colSide, "must be BUY or SELL")
	}
	rec.Side = side

	rec.Asset = strings.ToUpper(row[colAsset])
	if rec.Asset == "" {
		rec.Asset = "UNKNOWN"
	}

	rec.Quantity = CoerceNumber(row[colQuantity])
	rec.EntryPrice = numberOrFallback(row, colEntryPrice)
	rec.ExitPrice = numberOrFallback(row, colExitPrice)

	pnl := CoerceNumber(row[colProfitLoss])
	if math.IsNaN(pnl) {
		return rec, apperrors.NewRowError(index, colProfitLoss, "not a number")
	}
	rec.ProfitLoss = pnl

	if raw, ok := row[colBalance]; ok && raw != "" {
		if bal := CoerceNumber(raw); !math.IsNaN(bal) {
			rec.Balance = &bal
		}
	}

	return rec, nil
}

// numberOrFallback reads the given price column, falling back to a generic
// "price" column when the dedicated one is absent.
func numberOrFallback(row RawRow, col string) float64 {
	if raw, ok := row[col]; ok && raw != "" {
		return CoerceNumber(raw)
	}
	return CoerceNumber(row["price"])
}

// CoerceNumber parses a raw numeric string, tolerating currency symbols,
// thousands separators and surrounding whitespace. Non-numeric or empty input
// yields NaN, the defined not-a-number sentinel; it is never treated as zero.
func CoerceNumber(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return math.NaN()
	}

	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimFunc(cleaned, func(r rune) bool {
		return r == '$' || r == '€' || r == '£' || r == '₹' || r == '%' || r == ' '
	})

	// Accounting-style negatives: (123.45)
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	return value
}

// parseTimestamp tries the known layouts and returns the zero time when none
// match. Records with a zero timestamp are excluded from hour grouping only.
func parseTimestamp(raw string) time.Time {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
