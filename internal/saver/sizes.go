package saver

import (
	"fmt"
	"strconv"
)

// Kilobyte is the unit step used by all size conversions.
const Kilobyte = 1024

// FormatSize renders a byte count using the largest unit up to gigabytes,
// e.g. "512 bytes", "1.50K bytes", "3.20M bytes", "1.00G bytes".
func FormatSize(bytes int64) string {
	size := float64(bytes)
	str := strconv.FormatInt(bytes, 10) + " bytes"
	for _, unit := range []string{"K", "M", "G"} {
		if size < Kilobyte {
			break
		}
		size /= Kilobyte
		str = fmt.Sprintf("%.2f%s bytes", size, unit)
	}
	return str
}

// SizeInMegabytes converts a byte count to megabytes.
func SizeInMegabytes(bytes int64) float64 {
	return float64(bytes) / (Kilobyte * Kilobyte)
}
