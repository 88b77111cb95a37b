package utils

import (
	"testing"
	"time"
)

func TestFileNameFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://example.com/files/big.iso", "big.iso", false},
		{"https://example.com/files/big.iso?token=abc#frag", "big.iso", false},
		{"http://example.com/a/b/", "b", false},
		{"http://example.com/", "", true},
		{"http://example.com", "", true},
		{"://bad", "", true},
	}
	for _, tt := range tests {
		got, err := FileNameFromURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("FileNameFromURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("FileNameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestRateFormat(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		size    int64
		want    string
	}{
		{time.Second, 1024, "1.0 KiB / s"},
		{2 * time.Second, 4 * 1024 * 1024, "2.0 MiB / s"},
		{time.Second, 0, "0 B / s"},
		{0, 100, "0 B / s"},
	}
	for _, tt := range tests {
		if got := RateFormat(tt.elapsed, tt.size); got != tt.want {
			t.Errorf("RateFormat(%v, %d) = %q, want %q", tt.elapsed, tt.size, got, tt.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]uint64{
		"25MiB":    25 * 1024 * 1024,
		"1 MB":     1000 * 1000,
		"20971520": 20971520,
	}
	for in, want := range tests {
		got, err := ParseSize(in)
		if err != nil || got != want {
			t.Errorf("ParseSize(%q) = (%d, %v), want %d", in, got, err, want)
		}
	}
	if _, err := ParseSize("lots"); err == nil {
		t.Error("expected error for unparseable size")
	}
}
