package knowledge

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Result types
const (
	TypeFAQ      = "faq"
	TypeHours    = "hours"
	TypeLocation = "location"
	TypeServices = "services"
	TypeContact  = "contact"
	TypePolicy   = "policy"
)

type Result struct {
	Type     string   `json:"type"`
	Question string   `json:"question,omitempty"`
	Answer   string   `json:"answer"`
	Items    []string `json:"items,omitempty"`
	Score    float64  `json:"score"`
}

type Results struct {
	Exact      []Result `json:"exact"`
	Relevant   []Result `json:"relevant"`
	Confidence float64  `json:"confidence"`
}

// Best returns the top exact result, else the top relevant one.
func (r Results) Best() (Result, bool) {
	if len(r.Exact) > 0 {
		return r.Exact[0], true
	}
	if len(r.Relevant) > 0 {
		return r.Relevant[0], true
	}
	return Result{}, false
}

var (
	hoursKeywords    = []string{"hours", "open", "close", "closed", "schedule", "when are you", "business hours", "opening", "closing"}
	locationKeywords = []string{"where", "location", "address", "directions", "find you", "located", "near"}
	contactKeywords  = []string{"contact", "email", "phone", "reach", "call", "speak to", "manager", "supervisor"}
)

func containsAny(s string, words []string) bool {
	return slices.ContainsFunc(words, func(w string) bool { return strings.Contains(s, w) })
}

// Relevance scores how well text (with optional keywords) answers query:
// 1 for an exact match, 0.9 for containment, up to 0.85 from keyword hits,
// otherwise the share of query words found in text.
func Relevance(query, text string, keywords []string) float64 {
	q := strings.ToLower(query)
	t := strings.ToLower(text)

	if t == q {
		return 1.0
	}
	if q != "" && t != "" && (strings.Contains(t, q) || strings.Contains(q, t)) {
		return 0.9
	}

	if len(keywords) > 0 {
		matches := 0
		for _, k := range keywords {
			if k != "" && strings.Contains(q, strings.ToLower(k)) {
				matches++
			}
		}
		if matches > 0 {
			return min(0.85, 0.5+float64(matches)/float64(len(keywords))*0.35)
		}
	}

	queryWords := Tokenize(q)
	textWords := Tokenize(t)
	overlap := 0
	for _, w := range queryWords {
		if slices.Contains(textWords, w) {
			overlap++
		}
	}
	return float64(overlap) / float64(max(len(queryWords), 1))
}

// search runs every section matcher against d.
func search(d Data, query string, threshold float64) Results {
	res := Results{Exact: []Result{}, Relevant: []Result{}}
	q := strings.ToLower(query)

	for _, faq := range d.FAQs {
		score := Relevance(query, faq.Question, faq.Keywords)
		r := Result{Type: TypeFAQ, Question: faq.Question, Answer: faq.Answer, Score: score}
		switch {
		case score > 0.9:
			res.Exact = append(res.Exact, r)
		case score > threshold:
			res.Relevant = append(res.Relevant, r)
		}
	}

	if containsAny(q, hoursKeywords) && !d.Hours.Empty() {
		res.Exact = append(res.Exact, Result{Type: TypeHours, Answer: d.Hours.Format(), Score: 1.0})
	}

	if containsAny(q, locationKeywords) {
		if loc := formatLocations(d.Locations); loc != "" {
			res.Exact = append(res.Exact, Result{Type: TypeLocation, Answer: loc, Score: 1.0})
		}
	}

	var services []Service
	for _, s := range d.Services {
		if Relevance(query, strings.TrimSpace(s.Name+" "+s.Description), s.Keywords) > threshold {
			services = append(services, s)
		}
	}
	if len(services) > 0 {
		names := make([]string, len(services))
		for i, s := range services {
			names[i] = s.Name
		}
		res.Relevant = append(res.Relevant, Result{Type: TypeServices, Items: names, Answer: formatServices(services), Score: 0.8})
	}

	if containsAny(q, contactKeywords) {
		if contact := relevantContact(d.Contacts, q); contact != "" {
			res.Exact = append(res.Exact, Result{Type: TypeContact, Answer: contact, Score: 0.9})
		}
	}

	var policies []Policy
	for _, p := range d.Policies {
		if Relevance(query, strings.TrimSpace(p.Title+" "+p.Description), p.Keywords) > threshold {
			policies = append(policies, p)
		}
	}
	if len(policies) > 0 {
		titles := make([]string, len(policies))
		for i, p := range policies {
			titles[i] = p.Title
		}
		res.Relevant = append(res.Relevant, Result{Type: TypePolicy, Items: titles, Answer: formatPolicies(policies), Score: 0.7})
	}

	sort.SliceStable(res.Exact, func(i, j int) bool { return res.Exact[i].Score > res.Exact[j].Score })
	sort.SliceStable(res.Relevant, func(i, j int) bool { return res.Relevant[i].Score > res.Relevant[j].Score })

	if best, ok := res.Best(); ok {
		res.Confidence = best.Score
	}
	return res
}

func formatLocations(locations []Location) string {
	switch len(locations) {
	case 0:
		return ""
	case 1:
		loc := locations[0]
		s := fmt.Sprintf("%s, %s %s %s", firstNonEmpty(loc.Address, loc.Name), loc.City, loc.State, loc.Zip)
		return strings.TrimSpace(s)
	default:
		return fmt.Sprintf("We have %d locations. The main one is at %s",
			len(locations), firstNonEmpty(locations[0].Address, locations[0].Name))
	}
}

func formatServices(services []Service) string {
	if len(services) == 1 {
		return firstNonEmpty(services[0].Description, services[0].Name)
	}
	n := min(len(services), 3)
	names := make([]string, n)
	for i := range n {
		names[i] = services[i].Name
	}
	more := ""
	if len(services) > 3 {
		more = ", and more"
	}
	return "We offer " + strings.Join(names, ", ") + more
}

func formatPolicies(policies []Policy) string {
	return firstNonEmpty(policies[0].Description, policies[0].Summary, "Policy information available upon request")
}

func relevantContact(contacts []Contact, lowerQuery string) string {
	for _, c := range contacts {
		if c.Department != "" && strings.Contains(lowerQuery, strings.ToLower(c.Department)) {
			return c.Department + ": " + firstNonEmpty(c.Phone, c.Email, "Contact main desk")
		}
	}
	for _, c := range contacts {
		if c.Type == "general" || c.Department == "general" {
			return firstNonEmpty(c.Phone, c.Email, "Please hold for transfer")
		}
	}
	return ""
}

var wrappers = map[string][]string{
	TypeFAQ: {
		"Oh, this old question... ",
		"Since you asked SO nicely... ",
		"Fine, I'll tell you... ",
		"*SIGH* According to our policy... ",
	},
	TypeHours: {
		"Let me check my VERY important calendar... ",
		"As if I don't have these memorized... ",
		"Since you couldn't Google this yourself... ",
	},
	TypeLocation: {
		"GPS broken? Fine... ",
		"Let me draw you a map with my words... ",
		"If you MUST know where we are... ",
	},
	TypeServices: {
		"Oh, you want to know what we actually DO here? ",
		"Let me enlighten you about our offerings... ",
		"Prepare to be amazed by our services... ",
	},
}
