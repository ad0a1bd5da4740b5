// Package persona holds the receptionist's scripted personality: daily moods,
// canned templates, greetings and the keyword intent classifier.
package persona

import (
	"math/rand/v2"
	"time"
)

// Rand is the source of every random choice the persona makes.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// Persona resolves templates and picks phrases. It is safe for concurrent use
// when built with the default random source.
type Persona struct {
	rng Rand
	now func() time.Time
}

type Option func(*Persona)

// WithRand replaces the random source.
func WithRand(r Rand) Option {
	return func(p *Persona) { p.rng = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Persona) { p.now = now }
}

func New(opts ...Option) *Persona {
	p := &Persona{rng: globalRand{}, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Now returns the persona's current time.
func (p *Persona) Now() time.Time {
	return p.now()
}

// CurrentMood returns today's mood.
func (p *Persona) CurrentMood() Mood {
	return MoodFor(p.now())
}

// CurrentTimeModifier returns the special-occasion line for right now.
func (p *Persona) CurrentTimeModifier() string {
	return TimeModifier(p.now())
}

// Chance reports whether an event with the given probability happens.
func (p *Persona) Chance(probability float64) bool {
	return p.rng.Float64() > 1-probability
}

// Pick returns a random element of options.
func (p *Persona) Pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[p.rng.IntN(len(options))]
}
