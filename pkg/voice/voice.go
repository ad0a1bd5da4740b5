// Package voice turns persona text into something a Polly voice can read
// aloud and picks the voice and style a call keeps for its whole lifetime.
package voice

import (
	"strings"

	"github.com/LingByte/LingReception/pkg/persona"
)

// Style is how a line is delivered.
type Style string

const (
	Sarcastic         Style = "sarcastic"
	Condescending     Style = "condescending"
	Dramatic          Style = "dramatic"
	Bored             Style = "bored"
	PassiveAggressive Style = "passive_aggressive"
	OverlyCheerful    Style = "overly_cheerful"
	Exhausted         Style = "exhausted"
)

const (
	DefaultVoice = "Polly.Amy-Neural"
	DefaultRate  = "105%"
	styledRate   = "115%"
	goodbyeTail  = "... ... Finally..."
)

// Profile is a named Polly neural voice.
type Profile struct {
	Voice       string `json:"voice"`
	Accent      string `json:"accent"`
	Description string `json:"description"`
}

var Profiles = map[string]Profile{
	"amy":     {Voice: "Polly.Amy-Neural", Accent: "British", Description: "Posh British accent, perfect for condescending remarks"},
	"brian":   {Voice: "Polly.Brian-Neural", Accent: "British", Description: "British male, very proper and dismissive"},
	"joanna":  {Voice: "Polly.Joanna-Neural", Accent: "American", Description: "Natural conversational American female"},
	"matthew": {Voice: "Polly.Matthew-Neural", Accent: "American", Description: "American male, good for announcements"},
	"ruth":    {Voice: "Polly.Ruth-Neural", Accent: "American", Description: "Professional American female"},
	"kendra":  {Voice: "Polly.Kendra-Neural", Accent: "American", Description: "Neutral American female"},
	"olivia":  {Voice: "Polly.Olivia-Neural", Accent: "Australian", Description: "Australian female, naturally sarcastic"},
}

type moodVoice struct {
	profile string
	style   Style
}

var moodVoices = map[string]moodVoice{
	"Existential Sunday Dread":      {"brian", Exhausted},
	"Why-Am-I-Here Monday Blues":    {"amy", Dramatic},
	"Passive Aggressive Tuesday":    {"olivia", PassiveAggressive},
	"Overly Corporate Wednesday":    {"ruth", Condescending},
	"Dramatic Sighing Thursday":     {"amy", Exhausted},
	"Completely Checked Out Friday": {"kendra", Bored},
	"Too Cool for This Saturday":    {"amy", Condescending},
}

// Assignment is the voice and style fixed to one call.
type Assignment struct {
	Voice string `json:"voice"`
	Style Style  `json:"style"`
}

// DefaultAssignment is used for calls that never had a voice assigned.
func DefaultAssignment() Assignment {
	return Assignment{Voice: DefaultVoice, Style: Sarcastic}
}

// ForMood returns the voice a call started under mood should keep.
func ForMood(mood persona.Mood) Assignment {
	mv, ok := moodVoices[mood.Name]
	if !ok {
		mv = moodVoice{"amy", Sarcastic}
	}
	return Assignment{Voice: Profiles[mv.profile].Voice, Style: mv.style}
}

// StyleFor adjusts the call's style for a single turn.
func StyleFor(intent persona.Intent, current Style, turns int) Style {
	switch {
	case intent == persona.Appointments:
		return Bored
	case intent == persona.Transferring:
		return PassiveAggressive
	case turns > 5:
		return Exhausted
	}
	return current
}

// NormalizeName maps "Polly.Amy-Neural" to "amy".
func NormalizeName(voice string) string {
	voice = strings.Replace(voice, "Polly.", "", 1)
	voice = strings.Replace(voice, "-Neural", "", 1)
	return strings.ToLower(voice)
}

// Goodbye appends the relieved sign-off to a farewell line.
func Goodbye(text string) string {
	return text + goodbyeTail
}
