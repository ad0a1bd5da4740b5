package voice

import (
	"regexp"
	"strings"
)

type effect struct {
	pattern     *regexp.Regexp
	replacement string
}

// Order matters: *DEEP SIGH* must go before *SIGH*.
var effects = []effect{
	{regexp.MustCompile(`(?i)\*DEEP SIGH\*`), "... ... ..."},
	{regexp.MustCompile(`(?i)\*SIGH\*`), "..."},
	{regexp.MustCompile(`(?i)\*DRAMATIC SIGH\*`), "... ... ... ..."},
	{regexp.MustCompile(`(?i)\*EYE ROLL\*`), ""},
	{regexp.MustCompile(`(?i)\*PAUSE\*`), "..."},
	{regexp.MustCompile(`(?i)\*TYPING\*`), "... ..."},
	{regexp.MustCompile(`(?i)\*PAPER SHUFFLE\*`), "..."},
	{regexp.MustCompile(`(?i)\*COFFEE SLURP\*`), "..."},
	{regexp.MustCompile(`(?i)\*DRAMATIC PAUSE\*`), "... ... ..."},
}

var effectNames = []string{
	"DEEP SIGH", "SIGH", "DRAMATIC SIGH", "EYE ROLL",
	"PAUSE", "TYPING", "PAPER SHUFFLE", "COFFEE SLURP",
	"DRAMATIC PAUSE",
}

var (
	emphasisPattern   = regexp.MustCompile(`\*([^*]+)\*`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	dotsPattern       = regexp.MustCompile(`\.{4,}`)
)

// Options controls Enhance.
type Options struct {
	Style Style
	// Voice is a normalized profile name such as "amy".
	Voice     string
	Breathing bool
}

// Enhanced is a line ready for a <Say> verb.
type Enhanced struct {
	Voice  string `json:"voice"`
	Rate   string `json:"rate"`
	Volume string `json:"volume"`
	Text   string `json:"text"`
}

// Clean replaces sound-effect markers with pauses, unwraps other *emphasis*
// and tidies whitespace and runs of dots.
func Clean(text string) string {
	for _, e := range effects {
		text = e.pattern.ReplaceAllString(text, e.replacement)
	}
	text = emphasisPattern.ReplaceAllStringFunc(text, func(match string) string {
		content := strings.ToUpper(match[1 : len(match)-1])
		for _, name := range effectNames {
			if strings.Contains(content, name) {
				return match
			}
		}
		return match[1 : len(match)-1]
	})
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	return dotsPattern.ReplaceAllString(text, "...")
}

// Enhance prepares text for speech in the requested style.
func Enhance(text string, opts Options) Enhanced {
	processed := Clean(text)
	if opts.Breathing {
		processed = "... " + processed
	}

	own, ok := Profiles[opts.Voice]
	if !ok {
		own = Profiles["amy"]
	}

	out := Enhanced{Voice: own.Voice, Rate: styledRate, Volume: "medium", Text: processed}
	switch opts.Style {
	case Condescending:
		out.Voice = Profiles["amy"].Voice
		out.Volume = "soft"
	case Dramatic:
		out.Voice = Profiles["ruth"].Voice
		out.Text = "... " + processed
	case Bored:
		out.Voice = Profiles["kendra"].Voice
		out.Volume = "soft"
	case PassiveAggressive:
		out.Voice = Profiles["olivia"].Voice
		out.Text = strings.ReplaceAll(processed, ".", "...")
	case OverlyCheerful:
		out.Voice = Profiles["joanna"].Voice
		out.Volume = "loud"
	case Exhausted:
		out.Volume = "soft"
		out.Text = "... ... " + processed + " ..."
	}
	return out
}
