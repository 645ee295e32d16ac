package careline

import (
	"strconv"
	"time"
)

// ExamMinutes is the turnaround between request and report in minutes,
// rounded to two decimals. A report before the request yields a negative
// value, which is stored as is.
func ExamMinutes(requested, reported time.Time) float64 {
	return round2(reported.Sub(requested).Seconds() / 60)
}

// round2 rounds the exact binary value to two decimals.
func round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}
