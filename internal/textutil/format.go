package textutil

import (
	"fmt"
	"math"
	"strconv"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatDuration renders a duration in seconds as m:ss. Minutes are never
// folded into hours, so a 75 minute video renders as 75:30. Fractional seconds
// are truncated and unusable input renders as 0:00.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}
	total := int64(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatBytes renders a byte count using base-1024 units. The value is rounded
// to two decimals and trailing zeros are dropped: 1536 renders as "1.5 KB".
// Counts beyond the gigabyte range stay in GB.
func FormatBytes(size int64) string {
	if size <= 0 {
		return "0 Bytes"
	}
	value := float64(size)
	unit := 0
	for value >= 1024 && unit < len(byteUnits)-1 {
		value /= 1024
		unit++
	}
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + byteUnits[unit]
}
