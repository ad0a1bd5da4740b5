package persona

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqRand replays fixed values; IntN values are reduced modulo n.
type seqRand struct {
	ints   []int
	floats []float64
}

func (s *seqRand) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *seqRand) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func at(day time.Weekday, hour int) time.Time {
	// 2024-06-02 was a Sunday.
	return time.Date(2024, 6, 2+int(day), hour, 30, 0, 0, time.UTC)
}

func TestMoodFor(t *testing.T) {
	assert.Equal(t, "Existential Sunday Dread", MoodFor(at(time.Sunday, 9)).Name)
	assert.Equal(t, "Why-Am-I-Here Monday Blues", MoodFor(at(time.Monday, 9)).Name)
	assert.Equal(t, "Completely Checked Out Friday", MoodFor(at(time.Friday, 9)).Name)
	for _, m := range Moods {
		assert.Len(t, m.Traits, 3, m.Name)
	}
}

func TestTimeGreeting(t *testing.T) {
	assert.Equal(t, "Good morning", TimeGreeting(at(time.Tuesday, 11)))
	assert.Equal(t, "Good afternoon", TimeGreeting(at(time.Tuesday, 12)))
	assert.Equal(t, "Good afternoon", TimeGreeting(at(time.Tuesday, 16)))
	assert.Equal(t, "Good evening", TimeGreeting(at(time.Tuesday, 17)))
}

func TestTimeModifier(t *testing.T) {
	assert.Equal(t, mondayMorning, TimeModifier(at(time.Monday, 8)))
	assert.Equal(t, friday4pm, TimeModifier(at(time.Friday, 16)))
	assert.Equal(t, beforeLunch, TimeModifier(at(time.Wednesday, 11)))
	assert.Equal(t, afterLunch, TimeModifier(at(time.Wednesday, 13)))
	assert.Equal(t, "You do realize we close in 1 hour(s), right? This better be quick.", TimeModifier(at(time.Wednesday, 16)))
	assert.Equal(t, "You do realize we close in -2 hour(s), right? This better be quick.", TimeModifier(at(time.Wednesday, 19)))
	assert.Empty(t, TimeModifier(at(time.Wednesday, 9)))
	assert.Empty(t, TimeModifier(at(time.Wednesday, 15)))
}

func TestProcessTemplate(t *testing.T) {
	p := New(WithRand(&seqRand{ints: []int{1, 0}}))

	got := p.ProcessTemplate("{soundEffect:deepSigh} My {degree} degree, {number} times, {unknown}.")
	assert.Equal(t, "My Harvard Business degree, 47 times, {unknown}.", got.Text)
	assert.Equal(t, []string{"deepSigh"}, got.SoundEffects)
}

func TestProcessTemplateNoEffects(t *testing.T) {
	p := New()
	got := p.ProcessTemplate("  plain text  ")
	assert.Equal(t, "plain text", got.Text)
	assert.NotNil(t, got.SoundEffects)
	assert.Empty(t, got.SoundEffects)
}

func TestTemplatesFullyResolve(t *testing.T) {
	leftover := regexp.MustCompile(`\{\w+(:\w+)?\}`)
	p := New()
	for intent, templates := range Templates {
		for i, tpl := range templates {
			for j := 0; j < 20; j++ {
				got := p.ProcessTemplate(tpl)
				require.Falsef(t, leftover.MatchString(got.Text), "%s[%d] left %q", intent, i, got.Text)
			}
		}
	}
}

func TestResponseForIntentFallsBackToConfusion(t *testing.T) {
	p := New(WithRand(&seqRand{ints: []int{0}}))
	got := p.ResponseForIntent(Hours)
	assert.Equal(t, Templates[Confusion][0], got.Text)
}

func TestChance(t *testing.T) {
	p := New(WithRand(&seqRand{floats: []float64{0.95, 0.5}}))
	assert.True(t, p.Chance(0.1))
	assert.False(t, p.Chance(0.1))
}

func TestShouldInterrupt(t *testing.T) {
	p := New(WithRand(&seqRand{floats: []float64{0.99, 0.99, 0.1}}))
	assert.False(t, p.ShouldInterrupt(2, 0.15))
	assert.True(t, p.ShouldInterrupt(3, 0.15))
	assert.False(t, p.ShouldInterrupt(3, 0.15))
}

func TestRandomGreetingUsesTimeOfDay(t *testing.T) {
	p := New(
		WithRand(&seqRand{ints: []int{0}}),
		WithClock(func() time.Time { return at(time.Thursday, 18) }),
	)
	assert.True(t, strings.HasPrefix(p.RandomGreeting(), "Good evening, thank you for calling"))
	assert.Len(t, GreetingLines("x"), 10)
}

func TestSystemPrompt(t *testing.T) {
	mood := Moods[time.Tuesday]
	prompt := SystemPrompt(mood, afterLunch)
	assert.Contains(t, prompt, "Current mood: Passive Aggressive Tuesday")
	assert.Contains(t, prompt, "Mood traits: Backhanded compliments, ")
	assert.Contains(t, prompt, "Time context: "+afterLunch)

	assert.NotContains(t, SystemPrompt(mood, ""), "Time context")
}
