package layer

import "time"

const (
	// IndicatorDelay is how long an uncached load runs before the progress
	// indicator is shown.
	IndicatorDelay = 100 * time.Millisecond
	// FadeDuration is the fade-in of a freshly loaded, uncached image.
	FadeDuration = 150 * time.Millisecond
)

// Phase is the lifecycle of one base image load.
type Phase int

const (
	Idle Phase = iota
	Pending
	Ready
	Failed
)

// Loading tracks one base image load for one URL.
type Loading struct {
	url     string
	phase   Phase
	cached  bool
	started time.Time
	done    time.Time
}

// Start begins loading url. A cached url is ready at once and never shows
// the indicator or fades.
func (l *Loading) Start(url string, cached bool, now time.Time) {
	l.url = url
	l.cached = cached
	l.started = now
	l.done = now
	if cached {
		l.phase = Ready
		return
	}
	l.phase = Pending
}

// URL is the url being tracked.
func (l *Loading) URL() string { return l.url }

// Phase returns the current phase.
func (l *Loading) Phase() Phase { return l.phase }

// Finish records the outcome for url. Results for another url are ignored
// and false is returned.
func (l *Loading) Finish(url string, err error, now time.Time) bool {
	if url != l.url || l.phase != Pending {
		return false
	}
	l.done = now
	if err != nil {
		l.phase = Failed
		return true
	}
	l.phase = Ready
	return true
}

// Indicator reports whether the progress indicator is visible.
func (l *Loading) Indicator(now time.Time) bool {
	return l.phase == Pending && now.Sub(l.started) >= IndicatorDelay
}

// Alpha is the fade-in multiplier for the image of this load.
func (l *Loading) Alpha(now time.Time) float64 {
	if l.phase != Ready {
		return 0
	}
	if l.cached {
		return 1
	}
	a := float64(now.Sub(l.done)) / float64(FadeDuration)
	if a >= 1 {
		return 1
	}
	if a < 0 {
		return 0
	}
	return a
}
