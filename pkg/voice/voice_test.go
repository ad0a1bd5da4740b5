package voice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/LingByte/LingReception/pkg/persona"
)

func TestClean(t *testing.T) {
	cases := map[string]string{
		"*DEEP SIGH* Fine.":       "... ... ... Fine.",
		"*eye roll*   whatever":   "whatever",
		"I am *so* thrilled":      "I am so thrilled",
		"*typing* hold on":        "... ... hold on",
		"Wait..... what":          "Wait... what",
		"*Dramatic Sigh* again":   "... ... ... ... again",
		"*a big SIGH here* stays": "*a big SIGH here* stays",
		"line one\n\n  line two":  "line one line two",
	}
	for in, want := range cases {
		assert.Equal(t, want, Clean(in), in)
	}
}

func TestEnhanceStyles(t *testing.T) {
	got := Enhance("Fine.", Options{Style: Sarcastic, Voice: "brian"})
	assert.Equal(t, Enhanced{Voice: "Polly.Brian-Neural", Rate: "115%", Volume: "medium", Text: "Fine."}, got)

	got = Enhance("Fine.", Options{Style: Condescending, Voice: "brian"})
	assert.Equal(t, "Polly.Amy-Neural", got.Voice)
	assert.Equal(t, "soft", got.Volume)

	got = Enhance("Fine.", Options{Style: Dramatic, Voice: "amy"})
	assert.Equal(t, "Polly.Ruth-Neural", got.Voice)
	assert.Equal(t, "... Fine.", got.Text)

	got = Enhance("No. Problem.", Options{Style: PassiveAggressive})
	assert.Equal(t, "No... Problem...", got.Text)
	assert.Equal(t, "Polly.Olivia-Neural", got.Voice)

	got = Enhance("Fine", Options{Style: Exhausted, Voice: "kendra", Breathing: true})
	assert.Equal(t, "Polly.Kendra-Neural", got.Voice)
	assert.Equal(t, "... ... ... Fine ...", got.Text)

	got = Enhance("Yay", Options{Style: OverlyCheerful})
	assert.Equal(t, "loud", got.Volume)
	assert.Equal(t, "Polly.Joanna-Neural", got.Voice)
}

func TestEnhanceUnknownStyleAndVoice(t *testing.T) {
	got := Enhance("Hi", Options{Style: "weird", Voice: "nobody"})
	assert.Equal(t, "Polly.Amy-Neural", got.Voice)
	assert.Equal(t, "Hi", got.Text)
}

func TestForMood(t *testing.T) {
	sunday := persona.MoodFor(time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, Assignment{Voice: "Polly.Brian-Neural", Style: Exhausted}, ForMood(sunday))
	assert.Equal(t, DefaultAssignment(), ForMood(persona.Mood{Name: "Unknown"}))
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, Bored, StyleFor(persona.Appointments, Sarcastic, 9))
	assert.Equal(t, PassiveAggressive, StyleFor(persona.Transferring, Sarcastic, 1))
	assert.Equal(t, Exhausted, StyleFor(persona.General, Sarcastic, 6))
	assert.Equal(t, Dramatic, StyleFor(persona.Hours, Dramatic, 5))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "amy", NormalizeName("Polly.Amy-Neural"))
	assert.Equal(t, "olivia", NormalizeName("Olivia"))
	assert.Equal(t, "... Finally!... ... Finally...", Goodbye("... Finally!"))
}
