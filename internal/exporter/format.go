package exporter

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/vinotumich/FIN427/pkg/contracts/domain"
)

// formatNull formats a nullable number; null is an empty cell
func formatNull(n domain.NullFloat) string {
	return n.String()
}

// formatFloat formats a float64 in shortest round-trip form; NaN is empty
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatPercent formats a percentage with exactly 2 decimal places
func formatPercent(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatDate formats a period; the zero time is an empty cell
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.PeriodLayout)
}
