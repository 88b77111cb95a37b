package utils

import (
	"time"

	"github.com/dustin/go-humanize"
)

// SizePercentFormat formats size bytes transferred since lastTime as a rate.
func SizePercentFormat(lastTime time.Time, size int64) string {
	return RateFormat(time.Since(lastTime), size)
}

func RateFormat(elapsed time.Duration, size int64) string {
	s := elapsed.Seconds()
	if s <= 0 || size <= 0 {
		return "0 B / s"
	}
	return humanize.IBytes(uint64(float64(size)/s)) + " / s"
}

// ParseSize parses "25MiB", "1 GB" or a plain byte count.
func ParseSize(s string) (uint64, error) {
	return humanize.ParseBytes(s)
}
