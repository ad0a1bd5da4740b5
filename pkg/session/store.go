// Package session keeps per-call conversation state in memory.
package session

import (
	"sync"
	"time"

	"github.com/LingByte/LingReception/pkg/voice"
)

const (
	StatusUnknown   = "unknown"
	StatusInitiated = "initiated"

	DefaultCleanupDelay = time.Minute
)

var terminalStatuses = map[string]struct{}{
	"completed": {},
	"failed":    {},
	"busy":      {},
	"no-answer": {},
}

// IsTerminal reports whether a Twilio call status ends the call.
func IsTerminal(status string) bool {
	_, ok := terminalStatuses[status]
	return ok
}

// Message is one entry of the completion history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the state of a single call.
type Conversation struct {
	CallSid   string    `json:"callSid"`
	From      string    `json:"from,omitempty"`
	History   []Message `json:"history"`
	Turns     int       `json:"callCount"`
	StartedAt time.Time `json:"startTime"`
}

func (c *Conversation) clone() Conversation {
	out := *c
	out.History = append([]Message(nil), c.History...)
	return out
}

// Status is the last status Twilio reported for a call.
type Status struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Store maps call sids to conversations, voices and statuses. Reads return
// copies so callers never share slices with the store.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	voices        map[string]voice.Assignment
	statuses      map[string]Status
	timers        map[string]*time.Timer
	now           func() time.Time
	closed        bool
}

func NewStore() *Store {
	return &Store{
		conversations: make(map[string]*Conversation),
		voices:        make(map[string]voice.Assignment),
		statuses:      make(map[string]Status),
		timers:        make(map[string]*time.Timer),
		now:           time.Now,
	}
}

// Create starts a fresh conversation, replacing any previous one.
func (s *Store) Create(callSid, from string) Conversation {
	c := &Conversation{
		CallSid:   callSid,
		From:      from,
		History:   []Message{},
		StartedAt: s.now(),
	}
	s.mu.Lock()
	s.conversations[callSid] = c
	s.mu.Unlock()
	return c.clone()
}

// Get returns the conversation or an empty default for unknown calls.
func (s *Store) Get(callSid string) Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.conversations[callSid]; ok {
		return c.clone()
	}
	return Conversation{CallSid: callSid, History: []Message{}}
}

// must be called with mu held
func (s *Store) getOrCreate(callSid string) *Conversation {
	c, ok := s.conversations[callSid]
	if !ok {
		c = &Conversation{CallSid: callSid, History: []Message{}, StartedAt: s.now()}
		s.conversations[callSid] = c
	}
	return c
}

// IncrementTurns bumps the turn counter, creating the conversation if needed.
func (s *Store) IncrementTurns(callSid string) Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.getOrCreate(callSid)
	c.Turns++
	return c.clone()
}

// RecordTurn appends a user/assistant exchange and bumps the turn counter.
func (s *Store) RecordTurn(callSid, user, assistant string) Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.getOrCreate(callSid)
	c.Turns++
	c.History = append(c.History,
		Message{Role: "user", Content: user},
		Message{Role: "assistant", Content: assistant},
	)
	return c.clone()
}

func (s *Store) SetVoice(callSid string, a voice.Assignment) {
	s.mu.Lock()
	s.voices[callSid] = a
	s.mu.Unlock()
}

// Voice returns the call's voice, or Amy being sarcastic.
func (s *Store) Voice(callSid string) voice.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.voices[callSid]; ok {
		return a
	}
	return voice.DefaultAssignment()
}

func (s *Store) SetStatus(callSid, status string) {
	s.mu.Lock()
	s.statuses[callSid] = Status{Status: status, Timestamp: s.now()}
	s.mu.Unlock()
}

// Status returns the last reported status, or "unknown" stamped now.
func (s *Store) Status(callSid string) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.statuses[callSid]; ok {
		return st
	}
	return Status{Status: StatusUnknown, Timestamp: s.now()}
}

// Cleanup forgets the conversation and voice right away and the status after
// delay, so pollers can still see how the call ended.
func (s *Store) Cleanup(callSid string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, callSid)
	delete(s.voices, callSid)

	if t, ok := s.timers[callSid]; ok {
		t.Stop()
		delete(s.timers, callSid)
	}
	if delay <= 0 || s.closed {
		delete(s.statuses, callSid)
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// a newer Cleanup may have replaced this timer
		if s.timers[callSid] != timer {
			return
		}
		delete(s.timers, callSid)
		delete(s.statuses, callSid)
	})
	s.timers[callSid] = timer
}

// ActiveCount is the number of live conversations.
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// Close stops pending status cleanups and drops their statuses.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sid, t := range s.timers {
		t.Stop()
		delete(s.statuses, sid)
	}
	s.timers = make(map[string]*time.Timer)
	s.closed = true
}
