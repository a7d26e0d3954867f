package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/octastat/pkg/domain/model"
)

// NotAvailable is rendered in place of a duration with a missing endpoint.
const NotAvailable = "n/a"

// CalculateRatio returns value/total as a percentage rounded to two decimals.
// A zero total yields NaN or Inf.
func CalculateRatio(value, total int) float64 {
	return math.Round(float64(value)*10000/float64(total)) / 100
}

// DurationBetween formats the absolute time between from and to.
func DurationBetween(from, to *time.Time) string {
	if from == nil || to == nil {
		return NotAvailable
	}
	return FormatDuration(from.Sub(*to))
}

// FormatDuration renders d as HH:MM:SS, leaving out the hours field when it is
// zero. Sub-second precision is truncated.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	seconds := int64(d / time.Second)
	hours := seconds / 3600
	minutes := (seconds / 60) % 60
	secs := seconds % 60

	fields := make([]string, 0, 3)
	if hours > 0 {
		fields = append(fields, fmt.Sprintf("%02d", hours))
	}
	fields = append(fields, fmt.Sprintf("%02d", minutes), fmt.Sprintf("%02d", secs))
	return strings.Join(fields, ":")
}

// FormatConclusions summarizes stats as success and failure percentages.
// Everything that is not a success counts as a failure.
func FormatConclusions(stats model.ConclusionStats) string {
	successRatio := CalculateRatio(stats.Success, stats.Count)
	failureRatio := CalculateRatio(stats.Count-stats.Success, stats.Count)

	return fmt.Sprintf("success: %s%%, failure: %s%%", formatRatio(successRatio), formatRatio(failureRatio))
}

func formatRatio(ratio float64) string {
	return strconv.FormatFloat(ratio, 'f', -1, 64)
}
