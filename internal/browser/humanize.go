package browser

import (
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Humanizer produces the randomized pauses between UI actions.
type Humanizer struct {
	from time.Duration
	to   time.Duration
	rng  *rand.Rand
}

// NewHumanizer builds a humanizer for the given millisecond range.
// Pass a seeded rng in tests; nil gets a time-seeded one.
func NewHumanizer(fromMs, toMs int, rng *rand.Rand) *Humanizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Humanizer{
		from: time.Duration(fromMs) * time.Millisecond,
		to:   time.Duration(toMs) * time.Millisecond,
		rng:  rng,
	}
}

// Delay pauses for a random duration inside the configured range.
func (h *Humanizer) Delay() {
	span := h.to - h.from
	if span <= 0 {
		time.Sleep(h.from)
		return
	}
	time.Sleep(h.from + time.Duration(h.rng.Int63n(int64(span))))
}

// MouseJiggle simulates random mouse movements
func MouseJiggle(page playwright.Page) {
	x := float64(rand.Intn(800) + 100) //100-900
	y := float64(rand.Intn(600) + 100) //100-700

	page.Mouse().Move(x, y)
}

// SmoothScroll simulates human scrolling behavior
func SmoothScroll(page playwright.Page) {
	// Scroll down a bit
	page.Mouse().Wheel(0, 500)

	// Scroll up a tiny bit (human-like correction)
	page.Mouse().Wheel(0, -200)
}
