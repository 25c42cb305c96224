package timer

import (
	"testing"
	"time"
)

func TestDebouncerFiresOnceAfterQuietPeriod(t *testing.T) {
	clk := NewFake(time.Unix(0, 0))
	d := NewDebouncer(400 * time.Millisecond)

	if d.Fire(clk.Now()) {
		t.Fatal("unarmed debouncer fired")
	}

	d.Reset(clk.Now())
	clk.Advance(399 * time.Millisecond)
	if d.Fire(clk.Now()) {
		t.Fatal("fired before the quiet period elapsed")
	}

	clk.Advance(time.Millisecond)
	if !d.Fire(clk.Now()) {
		t.Fatal("did not fire at the deadline")
	}
	if d.Fire(clk.Now()) {
		t.Fatal("fired twice for one deadline")
	}
}

func TestDebouncerResetRestarts(t *testing.T) {
	clk := NewFake(time.Unix(0, 0))
	d := NewDebouncer(100 * time.Millisecond)

	fired := 0
	for i := 0; i < 5; i++ {
		d.Reset(clk.Now())
		clk.Advance(60 * time.Millisecond)
		if d.Fire(clk.Now()) {
			fired++
		}
	}
	clk.Advance(40 * time.Millisecond)
	if d.Fire(clk.Now()) {
		fired++
	}
	if fired != 1 {
		t.Errorf("fired %d times, want 1", fired)
	}
}

func TestDebouncerStop(t *testing.T) {
	clk := NewFake(time.Unix(0, 0))
	d := NewDebouncer(10 * time.Millisecond)
	d.Reset(clk.Now())
	d.Stop()
	clk.Advance(time.Second)
	if d.Pending() || d.Fire(clk.Now()) {
		t.Error("stopped debouncer still fired")
	}
}
