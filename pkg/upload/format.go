package upload

import (
	"math"
	"strconv"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes formats n with two decimals in base-1024 units.
//
//	FormatBytes(1536)    // "1.5 KB"
//	FormatBytes(1048576) // "1 MB"
func FormatBytes(n int64) string {
	return FormatBytesDecimals(n, 2)
}

// FormatBytesDecimals formats n in Bytes, KB, MB or GB, rounded to the
// given number of decimals with trailing zeros dropped. Values past GB
// stay in GB.
func FormatBytesDecimals(n int64, decimals int) string {
	if n == 0 {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}

	sign := ""
	v := float64(n)
	if v < 0 {
		sign = "-"
		v = -v
	}

	i := 0
	unit := 1.0
	for v >= unit*1024 && i < len(byteUnits)-1 {
		unit *= 1024
		i++
	}

	scale := math.Pow(10, float64(decimals))
	scaled := math.Round(v/unit*scale) / scale

	return sign + strconv.FormatFloat(scaled, 'f', -1, 64) + " " + byteUnits[i]
}
