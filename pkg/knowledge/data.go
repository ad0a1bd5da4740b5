package knowledge

import (
	"regexp"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cast"
)

const unknownFAQAnswer = "I'll need to check on that for you."

// FAQ is one question the receptionist can answer.
type FAQ struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// UnmarshalJSON accepts bare question strings and the q/a shorthand.
func (f *FAQ) UnmarshalJSON(b []byte) error {
	var question string
	if err := sonic.Unmarshal(b, &question); err == nil {
		*f = FAQ{Question: question, Answer: unknownFAQAnswer, Keywords: []string{}}
		return nil
	}
	var raw struct {
		Question string   `json:"question"`
		Q        string   `json:"q"`
		Answer   string   `json:"answer"`
		A        string   `json:"a"`
		Category string   `json:"category"`
		Keywords []string `json:"keywords"`
	}
	if err := sonic.Unmarshal(b, &raw); err != nil {
		return err
	}
	f.Question = firstNonEmpty(raw.Question, raw.Q)
	f.Answer = firstNonEmpty(raw.Answer, raw.A)
	f.Category = firstNonEmpty(raw.Category, "general")
	f.Keywords = raw.Keywords
	if f.Keywords == nil {
		f.Keywords = ExtractKeywords(f.Question)
	}
	return nil
}

type Service struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

type Policy struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

type Contact struct {
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Type       string `json:"type,omitempty"`
}

type Location struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Hours is either free text or a day → opening-time map.
type Hours struct {
	Text string
	Days map[string]string
}

func (h *Hours) UnmarshalJSON(b []byte) error {
	var text string
	if err := sonic.Unmarshal(b, &text); err == nil {
		*h = Hours{Text: text}
		return nil
	}
	var raw map[string]any
	if err := sonic.Unmarshal(b, &raw); err != nil {
		return err
	}
	h.Text = ""
	h.Days = make(map[string]string, len(raw))
	for k, v := range raw {
		h.Days[strings.ToLower(k)] = cast.ToString(v)
	}
	return nil
}

func (h Hours) MarshalJSON() ([]byte, error) {
	if h.Text != "" {
		return sonic.Marshal(h.Text)
	}
	if h.Days == nil {
		return []byte("{}"), nil
	}
	return sonic.Marshal(h.Days)
}

func (h Hours) Empty() bool {
	return h.Text == "" && len(h.Days) == 0
}

// Format renders the week in Monday-first order.
func (h Hours) Format() string {
	if h.Text != "" {
		return h.Text
	}
	var parts []string
	for _, day := range weekdays {
		if v := h.Days[day]; v != "" {
			parts = append(parts, strings.ToUpper(day[:1])+day[1:]+": "+v)
		}
	}
	if len(parts) == 0 {
		return "Hours not available"
	}
	return strings.Join(parts, ", ")
}

// Data is the whole knowledge document.
type Data struct {
	Company    map[string]any `json:"company"`
	Services   []Service      `json:"services"`
	FAQs       []FAQ          `json:"faqs"`
	Policies   []Policy       `json:"policies"`
	Contacts   []Contact      `json:"contacts"`
	Hours      Hours          `json:"hours"`
	Locations  []Location     `json:"locations"`
	CustomData map[string]any `json:"customData"`
}

// document is what a knowledge URL may serve: either a wrapped Data under
// "knowledge" or loose top-level sections.
type document struct {
	Knowledge  *Data          `json:"knowledge"`
	Company    map[string]any `json:"company"`
	Services   []Service      `json:"services"`
	FAQs       []FAQ          `json:"faqs"`
	Policies   []Policy       `json:"policies"`
	Contacts   []Contact      `json:"contacts"`
	Hours      *Hours         `json:"hours"`
	Locations  []Location     `json:"locations"`
	CustomData map[string]any `json:"customData"`
	Custom     map[string]any `json:"custom"`
}

// Parse decodes a fetched payload. Sections missing from raw keep their
// value from prev.
func Parse(raw []byte, prev Data) (Data, error) {
	var doc document
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return Data{}, err
	}
	if doc.Knowledge != nil {
		return *doc.Knowledge, nil
	}

	out := prev
	if doc.Company != nil {
		out.Company = doc.Company
	}
	if doc.Services != nil {
		out.Services = doc.Services
	}
	if doc.FAQs != nil {
		out.FAQs = doc.FAQs
	}
	if doc.Policies != nil {
		out.Policies = doc.Policies
	}
	if doc.Contacts != nil {
		out.Contacts = doc.Contacts
	}
	if doc.Hours != nil {
		out.Hours = *doc.Hours
	}
	if doc.Locations != nil {
		out.Locations = doc.Locations
	}
	switch {
	case doc.CustomData != nil:
		out.CustomData = doc.CustomData
	case doc.Custom != nil:
		out.CustomData = doc.Custom
	}
	if out.CustomData == nil {
		out.CustomData = map[string]any{}
	}
	return out, nil
}

var (
	nonWordPattern = regexp.MustCompile(`[^\w\s]`)
	stopWords      = []string{"the", "is", "at", "which", "on", "a", "an", "and", "or", "but", "for", "with", "to", "from"}
)

// Tokenize lower-cases text, drops punctuation and keeps words longer than
// two characters.
func Tokenize(text string) []string {
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")
	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len([]rune(w)) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// ExtractKeywords is Tokenize minus stop words.
func ExtractKeywords(text string) []string {
	keywords := []string{}
	for _, w := range Tokenize(text) {
		if !slices.Contains(stopWords, w) {
			keywords = append(keywords, w)
		}
	}
	return keywords
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
