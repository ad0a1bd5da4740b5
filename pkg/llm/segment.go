package llm

import (
	"regexp"
	"unicode"
)

// SegmentWriter buffers text and hands complete sentences to emit, so speech
// synthesis can start before the whole reply is known.
type SegmentWriter struct {
	emit             func(segment string) error
	buffer           string
	punctuationRegex *regexp.Regexp
}

// NewSegmentWriter creates a writer that splits on sentence punctuation.
func NewSegmentWriter(emit func(segment string) error) *SegmentWriter {
	return &SegmentWriter{
		emit:             emit,
		punctuationRegex: regexp.MustCompile(`([.!?;:]+)\s+`),
	}
}

func (w *SegmentWriter) Write(delta string, endOfStream bool) error {
	w.buffer += delta

	matches := w.punctuationRegex.FindAllStringIndex(w.buffer, -1)
	lastIdx := 0
	for _, match := range matches {
		segment := w.buffer[lastIdx:match[1]]
		// pauses like "... " ride along with the next sentence
		if !hasLetter(segment) {
			continue
		}
		if err := w.emit(segment); err != nil {
			return err
		}
		lastIdx = match[1]
	}
	w.buffer = w.buffer[lastIdx:]

	if endOfStream && w.buffer != "" {
		rest := w.buffer
		w.buffer = ""
		return w.emit(rest)
	}
	return nil
}

// Segments splits a finished text the way SegmentWriter would.
func Segments(text string) []string {
	var out []string
	w := NewSegmentWriter(func(s string) error {
		out = append(out, s)
		return nil
	})
	_ = w.Write(text, true)
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
