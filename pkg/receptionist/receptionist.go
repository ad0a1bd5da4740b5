// Package receptionist runs the sarcastic front desk: it greets callers,
// answers each utterance and tracks the call until it ends.
package receptionist

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LingByte/LingReception/internal/models"
	"github.com/LingByte/LingReception/pkg/config"
	"github.com/LingByte/LingReception/pkg/llm"
	"github.com/LingByte/LingReception/pkg/logger"
	"github.com/LingByte/LingReception/pkg/metrics"
	"github.com/LingByte/LingReception/pkg/persona"
	"github.com/LingByte/LingReception/pkg/session"
	"github.com/LingByte/LingReception/pkg/voice"
)

// Completer produces free-form replies.
type Completer interface {
	Available() bool
	Complete(ctx context.Context, systemPrompt string, history []llm.Message, userInput string) (string, error)
}

// KnowledgeSource answers factual questions about the company.
type KnowledgeSource interface {
	Configured() bool
	Lookup(query string) (answer string, confidence float64, ok bool)
}

// InteractionLogger records each exchange.
type InteractionLogger interface {
	Record(callSid, user, response string, metadata map[string]any)
}

// Options are the probability and timing knobs of the persona.
type Options struct {
	TemplateProbability  float64
	InterruptProbability float64
	HoldProbability      float64
	FollowUpProbability  float64
	CleanupDelay         time.Duration
}

func DefaultOptions() Options {
	return Options{
		TemplateProbability:  0.7,
		InterruptProbability: 0.15,
		HoldProbability:      0.1,
		FollowUpProbability:  0.2,
		CleanupDelay:         session.DefaultCleanupDelay,
	}
}

func OptionsFromConfig(cfg config.PersonaConfig) Options {
	return Options{
		TemplateProbability:  cfg.TemplateProbability,
		InterruptProbability: cfg.InterruptProbability,
		HoldProbability:      cfg.HoldProbability,
		FollowUpProbability:  cfg.FollowUpProbability,
		CleanupDelay:         cfg.StatusCleanupDelay,
	}
}

// Deps are the collaborators of a Receptionist. Only Persona and Store are
// required.
type Deps struct {
	Persona      *persona.Persona
	Store        *session.Store
	LLM          Completer
	Knowledge    KnowledgeSource
	Interactions InteractionLogger
	Metrics      *metrics.Metrics
	DB           *gorm.DB
}

type Receptionist struct {
	persona      *persona.Persona
	store        *session.Store
	llm          Completer
	kb           KnowledgeSource
	interactions InteractionLogger
	metrics      *metrics.Metrics
	db           *gorm.DB
	opts         Options
}

func New(deps Deps, opts Options) *Receptionist {
	if deps.Persona == nil {
		deps.Persona = persona.New()
	}
	if deps.Store == nil {
		deps.Store = session.NewStore()
	}
	return &Receptionist{
		persona:      deps.Persona,
		store:        deps.Store,
		llm:          deps.LLM,
		kb:           deps.Knowledge,
		interactions: deps.Interactions,
		metrics:      deps.Metrics,
		db:           deps.DB,
		opts:         opts,
	}
}

func (r *Receptionist) Persona() *persona.Persona { return r.persona }

func (r *Receptionist) Store() *session.Store { return r.store }

// Greeting is how a new call is answered.
type Greeting struct {
	Text     string
	Enhanced voice.Enhanced
	Voice    voice.Assignment
	Mood     persona.Mood
}

// StartCall opens the conversation, fixes the call's voice for its lifetime
// and picks the opening line.
func (r *Receptionist) StartCall(ctx context.Context, callSid, from, to string) Greeting {
	r.store.Create(callSid, from)
	mood := r.persona.CurrentMood()
	assignment := voice.ForMood(mood)
	r.store.SetVoice(callSid, assignment)

	text := r.persona.RandomGreeting()
	g := Greeting{
		Text: text,
		Enhanced: voice.Enhance(text, voice.Options{
			Style: assignment.Style,
			Voice: voice.NormalizeName(assignment.Voice),
		}),
		Voice: assignment,
		Mood:  mood,
	}

	r.record(callSid, persona.NewCallMarker, text, map[string]any{"mood": mood.Name})
	r.metrics.SetActiveCalls(r.store.ActiveCount())
	r.saveCallStart(ctx, callSid, from, to, assignment, mood)

	logger.Info("call started",
		zap.String("callSid", callSid),
		zap.String("voice", assignment.Voice),
		zap.String("style", string(assignment.Style)),
		zap.String("mood", mood.Name))
	return g
}

// Reply is one generated answer and where it came from.
type Reply struct {
	Text   string
	Intent persona.Intent
	Source string
}

// GenerateResponse answers userInput. It tries the knowledge base, then a
// canned template, then the completion model, and falls back to an apology
// when the model fails.
func (r *Receptionist) GenerateResponse(ctx context.Context, userInput string, history []session.Message, mood persona.Mood, timeModifier string) Reply {
	if r.kb != nil && r.kb.Configured() {
		if answer, _, ok := r.kb.Lookup(userInput); ok {
			return Reply{Text: answer, Intent: persona.General, Source: metrics.SourceKnowledge}
		}
	}

	intent := persona.ReplyIntents.Classify(userInput)
	if intent != persona.General && r.persona.Chance(r.opts.TemplateProbability) {
		return Reply{Text: r.persona.ResponseForIntent(intent).Text, Intent: intent, Source: metrics.SourceTemplate}
	}

	if r.llm == nil || !r.llm.Available() {
		return Reply{Text: r.persona.ResponseForIntent(intent).Text, Intent: intent, Source: metrics.SourceTemplate}
	}

	msgs := make([]llm.Message, len(history))
	for i, m := range history {
		msgs[i] = llm.Message{Role: m.Role, Content: m.Content}
	}

	started := time.Now()
	text, err := r.llm.Complete(ctx, persona.SystemPrompt(mood, timeModifier), msgs, userInput)
	r.metrics.ObserveCompletion(time.Since(started))
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty completion")
	}
	if err != nil {
		logger.Warn("completion failed", zap.Error(err))
		return Reply{Text: r.persona.ProcessTemplate(persona.AIApology).Text, Intent: intent, Source: metrics.SourceFallback}
	}
	return Reply{Text: text, Intent: intent, Source: metrics.SourceLLM}
}

// Turn is everything a transport needs to voice one reply.
type Turn struct {
	CallSid  string
	Speech   string
	Text     string
	Intent   persona.Intent
	Source   string
	Voice    voice.Assignment
	Turns    int
	Farewell bool

	// Goodbye is set for farewells: the line to say before hanging up.
	Goodbye string

	Enhanced  voice.Enhanced
	Hold      bool
	HoldMusic string
	FollowUp  bool
}

// Reply handles one caller utterance.
func (r *Receptionist) Reply(ctx context.Context, callSid, speech string) Turn {
	history := r.store.Get(callSid).History
	turns := r.store.IncrementTurns(callSid).Turns
	assignment := r.store.Voice(callSid)
	mood := r.persona.CurrentMood()

	reply := r.GenerateResponse(ctx, speech, history, mood, r.persona.CurrentTimeModifier())
	text := reply.Text
	if r.persona.ShouldInterrupt(turns, r.opts.InterruptProbability) {
		text = r.persona.RandomInterruption() + " " + text
	}

	turns = r.store.RecordTurn(callSid, speech, text).Turns
	flow := persona.CallFlowIntents.Classify(speech)

	r.record(callSid, speech, text, map[string]any{
		"mood":              mood.Name,
		"interactionNumber": turns + 1,
		"wasHilarious":      strings.Contains(text, "*") || len(text) > 100,
	})
	r.metrics.Turn(string(reply.Intent), reply.Source)

	t := Turn{
		CallSid:  callSid,
		Speech:   speech,
		Text:     text,
		Intent:   flow,
		Source:   reply.Source,
		Voice:    assignment,
		Turns:    turns,
		Farewell: flow == persona.Farewells,
	}
	if t.Farewell {
		t.Goodbye = voice.Goodbye(r.persona.ResponseForIntent(persona.Farewells).Text)
		return t
	}

	t.Hold = r.persona.Chance(r.opts.HoldProbability) && turns > 1
	if t.Hold {
		t.HoldMusic = r.persona.RandomHoldMusic()
	}
	t.Enhanced = voice.Enhance(text, voice.Options{
		Style:     voice.StyleFor(flow, assignment.Style, turns+1),
		Voice:     voice.NormalizeName(assignment.Voice),
		Breathing: turns > 3,
	})
	t.FollowUp = r.persona.Chance(r.opts.FollowUpProbability)
	return t
}

// UpdateStatus stores a provider status; terminal statuses end the call.
func (r *Receptionist) UpdateStatus(ctx context.Context, callSid, status string) {
	r.store.SetStatus(callSid, status)
	if r.db != nil {
		if err := models.UpdateCallStatus(r.db.WithContext(ctx), callSid, status); err != nil {
			logger.Warn("failed to update call status", zap.String("callSid", callSid), zap.Error(err))
		}
	}
	if session.IsTerminal(status) {
		r.EndCall(ctx, callSid, status)
	}
}

// EndCall drops the conversation now and its status after the cleanup delay.
func (r *Receptionist) EndCall(ctx context.Context, callSid, status string) {
	turns := r.store.Get(callSid).Turns
	r.store.Cleanup(callSid, r.opts.CleanupDelay)
	r.metrics.SetActiveCalls(r.store.ActiveCount())

	if r.db != nil {
		err := models.EndCallRecord(r.db.WithContext(ctx), callSid, status, turns, time.Now())
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("failed to close call record", zap.String("callSid", callSid), zap.Error(err))
		}
	}
	logger.Info("call ended", zap.String("callSid", callSid), zap.String("status", status), zap.Int("turns", turns))
}

// RecordOutbound notes a call placed through the web widget.
func (r *Receptionist) RecordOutbound(ctx context.Context, callSid, to string) {
	r.store.SetStatus(callSid, session.StatusInitiated)
	r.metrics.CallStarted(string(models.CallDirectionOutbound))
	if r.db == nil {
		return
	}
	err := models.CreateCallRecord(r.db.WithContext(ctx), &models.CallRecord{
		CallSid:   callSid,
		To:        to,
		Direction: models.CallDirectionOutbound,
		Status:    session.StatusInitiated,
	})
	if err != nil {
		logger.Warn("failed to save outbound call", zap.String("callSid", callSid), zap.Error(err))
	}
}

func (r *Receptionist) saveCallStart(ctx context.Context, callSid, from, to string, a voice.Assignment, mood persona.Mood) {
	if r.db == nil {
		r.metrics.CallStarted(string(models.CallDirectionInbound))
		return
	}
	db := r.db.WithContext(ctx)
	record, err := models.GetCallRecordBySid(db, callSid)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		r.metrics.CallStarted(string(models.CallDirectionInbound))
		err = models.CreateCallRecord(db, &models.CallRecord{
			CallSid:   callSid,
			From:      from,
			To:        to,
			Direction: models.CallDirectionInbound,
			Status:    "in-progress",
			Voice:     a.Voice,
			Style:     string(a.Style),
			Mood:      mood.Name,
		})
	case err == nil:
		record.Voice = a.Voice
		record.Style = string(a.Style)
		record.Mood = mood.Name
		record.Status = "in-progress"
		err = models.UpdateCallRecord(db, record)
	}
	if err != nil {
		logger.Warn("failed to save call record", zap.String("callSid", callSid), zap.Error(err))
	}
}

func (r *Receptionist) record(callSid, user, response string, metadata map[string]any) {
	if r.interactions == nil {
		return
	}
	r.interactions.Record(callSid, user, response, metadata)
}
