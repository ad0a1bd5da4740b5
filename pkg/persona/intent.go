package persona

import "strings"

// Rule matches an intent when the lower-cased utterance contains any keyword
// or starts with any prefix.
type Rule struct {
	Intent   Intent
	Keywords []string
	Prefixes []string
}

func (r Rule) matches(lower string) bool {
	for _, k := range r.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	for _, p := range r.Prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// Classifier checks rules in order; the first match wins.
type Classifier struct {
	rules []Rule
}

func NewClassifier(rules ...Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the intent of speech, or General when nothing matches.
func (c *Classifier) Classify(speech string) Intent {
	lower := strings.ToLower(speech)
	for _, r := range c.rules {
		if r.matches(lower) {
			return r.Intent
		}
	}
	return General
}

// ReplyIntents chooses which template family answers the caller.
var ReplyIntents = NewClassifier(
	Rule{Intent: Farewells, Keywords: []string{"bye", "goodbye", "thank", "that's all"}},
	Rule{Intent: Appointments, Keywords: []string{"appointment", "schedule", "book", "meeting"}},
	Rule{Intent: Transferring, Keywords: []string{"transfer", "speak to", "talk to", "connect"}},
	Rule{Intent: Holding, Keywords: []string{"hold", "wait", "moment"}},
	Rule{Intent: Greetings, Keywords: []string{"hello", "hi ", "hey"}, Prefixes: []string{"hi"}},
)

// CallFlowIntents decides hangups and the voice style of a turn.
var CallFlowIntents = NewClassifier(
	Rule{Intent: Appointments, Keywords: []string{"appointment", "schedule", "book"}},
	Rule{Intent: Transferring, Keywords: []string{"transfer", "speak to", "manager"}},
	Rule{Intent: Farewells, Keywords: []string{"bye", "thank", "goodbye"}},
	Rule{Intent: Hours, Keywords: []string{"hours", "open", "closed"}},
)
