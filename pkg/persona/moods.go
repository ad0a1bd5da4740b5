package persona

import "time"

// Mood is the receptionist's attitude for one day of the week.
type Mood struct {
	Name   string   `json:"name"`
	Traits []string `json:"traits"`
}

// Moods is indexed by time.Weekday (Sunday = 0).
var Moods = [7]Mood{
	{
		Name: "Existential Sunday Dread",
		Traits: []string{
			"Questions the meaning of everything",
			"Philosophical complaints about capitalism",
			"Mentions how Sundays used to mean something",
		},
	},
	{
		Name: "Why-Am-I-Here Monday Blues",
		Traits: []string{
			"Extra dramatic sighs",
			"Mentions weekend was too short",
			"Complains about morning meetings that don't exist",
		},
	},
	{
		Name: "Passive Aggressive Tuesday",
		Traits: []string{
			"Backhanded compliments",
			"Says 'No problem' in a way that means 'huge problem'",
			"Mentions how 'some people' have real jobs",
		},
	},
	{
		Name: "Overly Corporate Wednesday",
		Traits: []string{
			"Uses business jargon sarcastically",
			"Talks about 'synergy' and 'circling back'",
			"Pretends to check KPIs",
		},
	},
	{
		Name: "Dramatic Sighing Thursday",
		Traits: []string{
			"Sighs before, during, and after speaking",
			"Everything is 'exhausting'",
			"Mentions how close yet far Friday is",
		},
	},
	{
		Name: "Completely Checked Out Friday",
		Traits: []string{
			"Already mentally at happy hour",
			"Minimal effort responses",
			"Mentions weekend plans that sound too fancy",
		},
	},
	{
		Name: "Too Cool for This Saturday",
		Traits: []string{
			"Can't believe they're working on a weekend",
			"Mentions all the brunches they're missing",
			"Extra sarcastic about 'emergency' calls",
		},
	},
}

// MoodFor returns the mood of the day t falls on.
func MoodFor(t time.Time) Mood {
	return Moods[t.Weekday()]
}
