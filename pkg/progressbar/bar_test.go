package progressbar

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestBarRendersBytes(t *testing.T) {
	var out bytes.Buffer
	var finished bool
	steps := 0

	b := New(
		WithOutput(&out),
		WithInterval(time.Hour),
		WithTitle("downloading"),
		WithStepHook(func(b *Bar) {
			steps++
			b.SetTotal(4 * 1024 * 1024)
			b.SetCur(1024 * 1024)
		}),
		WithFinishHook(func() { finished = true }),
	)
	go b.Run()
	b.Finish()

	if steps != 1 {
		t.Errorf("step hook ran %d times, want 1", steps)
	}
	if !finished {
		t.Error("finish hook did not run")
	}
	got := out.String()
	for _, want := range []string{"downloading", "25.00%", "1.0 MiB/4.0 MiB"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q does not contain %q", got, want)
		}
	}
}

func TestBarUnknownTotal(t *testing.T) {
	var out bytes.Buffer
	b := New(WithOutput(&out), WithInterval(time.Hour))
	b.SetCur(2048)
	go b.Run()
	b.Finish()

	if got := out.String(); !strings.Contains(got, "2.0 KiB") || strings.Contains(got, "%") {
		t.Errorf("unexpected output %q", got)
	}
}
