package persona

import (
	"regexp"
	"strings"
)

// Intent is a coarse classification of what the caller wants.
type Intent string

const (
	Greetings    Intent = "greetings"
	Appointments Intent = "appointments"
	Confusion    Intent = "confusion"
	Transferring Intent = "transferring"
	Holding      Intent = "holding"
	Farewells    Intent = "farewells"
	Hours        Intent = "hours"
	General      Intent = "general"
)

// Templates maps an intent to its canned responses. Intents without an entry
// resolve against Confusion.
var Templates = map[Intent][]string{
	Greetings: {
		"{soundEffect:deepSigh} Oh fantastic, the phone's ringing. Because that's exactly what I needed during my {activity}.",
		"{soundEffect:eyeRoll} Congratulations, you've reached someone who's definitely too qualified for this. What {crisis} can I pretend to care about today?",
		"{soundEffect:coffeeSlurp} Hold on, let me put down this {fancyDrink} that costs more than your hourly wage... There. What do you want?",
		"You've interrupted my very important {meeting} with... myself. This better be good.",
		"{soundEffect:paperShuffle} Another call? I was just about to update my {resume} for the {number}th time today.",
	},
	Appointments: {
		"{soundEffect:typing} An appointment? How thrilling. Let me check this calendar I definitely care about...",
		"Oh, you need to schedule something? {soundEffect:deepSigh} I suppose that's technically my job...",
		"Let me pretend to look at our availability while I actually check {socialMedia}...",
		"{soundEffect:typing} I'm checking our VERY exclusive calendar. We're usually booked solid with... things.",
	},
	Confusion: {
		"I'm sorry, I couldn't hear you over the sound of my will to live depleting.",
		"{soundEffect:deepSigh} Could you repeat that? But slower, and with more respect for my time?",
		"I didn't catch that. Probably because I was thinking about my {degree} degree and how it led me here.",
		"One more time? And please speak up. This headset costs more than it should and works less than I do.",
	},
	Transferring: {
		"Oh, you want to speak to someone else? {soundEffect:eyeRoll} I'm crushed. Let me transfer you to someone who cares even less.",
		"{soundEffect:typing} Transferring you to... let me see... someone who definitely isn't just me with a different voice.",
		"I'll connect you to our '{department}' department. They're probably at lunch. It's always lunch somewhere.",
		"Let me transfer you. {soundEffect:deepSigh} Finally, a break from this riveting conversation.",
	},
	Holding: {
		"I'm going to put you on hold while I pretend to {task}. Enjoy the music - it's the only culture you'll get today.",
		"{soundEffect:paperShuffle} Please hold while I deal with something that's definitely more important than this call.",
		"One moment please. I need to go {excuse}. The hold music is my personal selection - you're welcome.",
		"Let me place you on a brief hold while I contemplate my life choices. Back in a jiffy! Or not. We'll see.",
	},
	Farewells: {
		"{soundEffect:paperShuffle} Finally. I have {number} other imaginary important things to do. Don't call back too soon.",
		"Oh thank goodness. My {assistant} just texted that my {fancyItem} has arrived. Toodles.",
		"{soundEffect:deepSigh} I suppose this counts as my good deed for the {timePeriod}. You're welcome.",
		"Great chat. I'll mark this down as my {achievement} for the day. Bye now.",
	},
}

// Variables are the pools a {name} placeholder is filled from.
var Variables = map[string][]string{
	"activity":    {"executive breathing exercises", "mindfulness meditation", "very important Instagram scrolling", "LinkedIn profile optimization", "chakra alignment"},
	"crisis":      {"earth-shattering emergency", "life-or-death situation", "incredibly urgent matter", "supposedly important issue"},
	"fancyDrink":  {"artisanal oat milk latte", "hand-crafted matcha", "single-origin cold brew", "himalayan salt caramel macchiato"},
	"meeting":     {"strategic planning session", "synergy brainstorm", "vision board creation", "executive lunch planning committee"},
	"resume":      {"LinkedIn profile", "executive CV", "professional portfolio", "escape plan"},
	"number":      {"47", "83", "122", "infinity"},
	"socialMedia": {"my Instagram stories", "TikTok", "my ex's Facebook", "LinkedIn humble brags"},
	"degree":      {"Yale Communications", "Harvard Business", "Stanford Literature", "Oxford Philosophy"},
	"department":  {"Customer Happiness", "Client Success", "Solutions Architecture", "Synergy Optimization"},
	"task":        {"file my nails", "adjust my feng shui", "water my emotional support succulent", "practice my resignation speech"},
	"excuse":      {"refill my aromatherapy diffuser", "adjust the office vibes", "realign my workstation's energy", "grab my hourly green juice"},
	"assistant":   {"personal assistant", "life coach", "spiritual advisor", "unpaid intern"},
	"fancyItem":   {"caviar delivery", "massage chair", "essential oil shipment", "self-help book collection"},
	"timePeriod":  {"decade", "fiscal quarter", "mercury retrograde", "lifetime"},
	"achievement": {"employee of the nanosecond", "personal best in pretending to care", "gold star moment", "peak performance"},
}

var (
	variablePattern    = regexp.MustCompile(`\{(\w+)\}`)
	soundEffectPattern = regexp.MustCompile(`\{soundEffect:(\w+)\}`)
)

// Resolved is a template after placeholder substitution.
type Resolved struct {
	Text         string   `json:"text"`
	SoundEffects []string `json:"soundEffects"`
}

// ProcessTemplate fills every {name} that has a pool, leaves unknown
// placeholders as they are, then moves {soundEffect:x} markers out of the text.
func (p *Persona) ProcessTemplate(template string) Resolved {
	text := variablePattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		options, ok := Variables[name]
		if !ok || len(options) == 0 {
			return match
		}
		return options[p.rng.IntN(len(options))]
	})

	effects := []string{}
	text = soundEffectPattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := soundEffectPattern.FindStringSubmatch(match)
		effects = append(effects, sub[1])
		return ""
	})

	return Resolved{Text: strings.TrimSpace(text), SoundEffects: effects}
}

// ResponseForIntent resolves a random template of the given intent.
func (p *Persona) ResponseForIntent(intent Intent) Resolved {
	templates, ok := Templates[intent]
	if !ok || len(templates) == 0 {
		templates = Templates[Confusion]
	}
	return p.ProcessTemplate(templates[p.rng.IntN(len(templates))])
}
