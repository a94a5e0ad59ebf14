package fsutils

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"K", "M", "G", "T", "P"}

// ShortSize formats a byte count in at most four characters plus the unit,
// with one decimal below 10 units. Negative sizes are unknown and shown as "-".
func ShortSize(size int64) string {
	if size < 0 {
		return "-"
	}
	if size < 1024 {
		return strconv.FormatInt(size, 10) + "B"
	}
	v := float64(size)
	i := -1
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	if v < 9.95 {
		return strconv.FormatFloat(v, 'f', 1, 64) + sizeUnits[i]
	}
	rounded := math.Round(v)
	if rounded >= 1024 && i < len(sizeUnits)-1 {
		return "1.0" + sizeUnits[i+1]
	}
	return strconv.FormatFloat(rounded, 'f', 0, 64) + sizeUnits[i]
}
