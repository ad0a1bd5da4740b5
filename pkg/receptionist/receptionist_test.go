package receptionist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/LingByte/LingReception/internal/models"
	"github.com/LingByte/LingReception/pkg/llm"
	"github.com/LingByte/LingReception/pkg/metrics"
	"github.com/LingByte/LingReception/pkg/persona"
	"github.com/LingByte/LingReception/pkg/session"
	"github.com/LingByte/LingReception/pkg/voice"
)

// constRand always draws the same float and index 0.
type constRand struct{ f float64 }

func (constRand) IntN(int) int       { return 0 }
func (c constRand) Float64() float64 { return c.f }

// Monday 09:30
var monday = time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)

func testPersona(f float64) *persona.Persona {
	return persona.New(persona.WithRand(constRand{f}), persona.WithClock(func() time.Time { return monday }))
}

type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	history [][]llm.Message
	inputs  []string
}

func (f *fakeLLM) Available() bool { return true }

func (f *fakeLLM) Complete(_ context.Context, systemPrompt string, history []llm.Message, userInput string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, systemPrompt)
	f.history = append(f.history, history)
	f.inputs = append(f.inputs, userInput)
	return f.reply, f.err
}

type fakeKB struct {
	answer string
	ok     bool
}

func (k fakeKB) Configured() bool { return true }
func (k fakeKB) Lookup(string) (string, float64, bool) {
	if !k.ok {
		return "", 0.2, false
	}
	return k.answer, 1, true
}

type recorded struct {
	callSid, user, response string
	metadata                map[string]any
}

type fakeLog struct {
	mu      sync.Mutex
	entries []recorded
}

func (l *fakeLog) Record(callSid, user, response string, metadata map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, recorded{callSid, user, response, metadata})
}

func newReceptionist(t *testing.T, f float64, deps Deps) (*Receptionist, *fakeLog) {
	t.Helper()
	log := &fakeLog{}
	deps.Persona = testPersona(f)
	if deps.Store == nil {
		deps.Store = session.NewStore()
	}
	deps.Interactions = log
	r := New(deps, DefaultOptions())
	t.Cleanup(deps.Store.Close)
	return r, log
}

func TestTemplateReplyWithoutLLM(t *testing.T) {
	r, log := newReceptionist(t, 0, Deps{})
	p := testPersona(0)

	turn := r.Reply(context.Background(), "CA1", "can you book me a meeting")

	assert.Equal(t, p.ResponseForIntent(persona.Appointments).Text, turn.Text)
	assert.Equal(t, metrics.SourceTemplate, turn.Source)
	assert.Equal(t, persona.Appointments, turn.Intent)
	assert.Equal(t, 2, turn.Turns)
	assert.False(t, turn.Farewell)
	assert.False(t, turn.Hold)
	assert.False(t, turn.FollowUp)

	// appointments switch the delivery to the bored voice
	assert.Equal(t, voice.Profiles["kendra"].Voice, turn.Enhanced.Voice)
	assert.Equal(t, "soft", turn.Enhanced.Volume)

	conv := r.Store().Get("CA1")
	assert.Equal(t, 2, conv.Turns)
	require.Len(t, conv.History, 2)
	assert.Equal(t, session.Message{Role: "user", Content: "can you book me a meeting"}, conv.History[0])

	require.Len(t, log.entries, 1)
	md := log.entries[0].metadata
	assert.Equal(t, 3, md["interactionNumber"])
	assert.Equal(t, persona.MoodFor(monday).Name, md["mood"])
}

func TestGeneralWithoutLLMUsesConfusion(t *testing.T) {
	r, _ := newReceptionist(t, 0, Deps{})
	reply := r.GenerateResponse(context.Background(), "what's the weather like", nil, persona.MoodFor(monday), "")
	assert.Equal(t, persona.General, reply.Intent)
	assert.Equal(t, testPersona(0).ResponseForIntent(persona.Confusion).Text, reply.Text)
}

func TestFarewell(t *testing.T) {
	r, _ := newReceptionist(t, 0, Deps{})
	turn := r.Reply(context.Background(), "CA2", "ok thanks, bye")

	assert.True(t, turn.Farewell)
	want := testPersona(0).ResponseForIntent(persona.Farewells).Text + "... ... Finally..."
	assert.Equal(t, want, turn.Goodbye)
	assert.Empty(t, turn.Enhanced.Text)
}

func TestCompletionWithHistory(t *testing.T) {
	fake := &fakeLLM{reply: "... Sunny. Not that I'd know, I'm stuck inside."}
	r, _ := newReceptionist(t, 0, Deps{LLM: fake})

	first := r.Reply(context.Background(), "CA3", "what's the weather")
	assert.Equal(t, metrics.SourceLLM, first.Source)
	assert.Equal(t, fake.reply, first.Text)

	r.Reply(context.Background(), "CA3", "and tomorrow?")

	require.Len(t, fake.inputs, 2)
	assert.Equal(t, "and tomorrow?", fake.inputs[1])
	assert.Empty(t, fake.history[0])
	assert.Equal(t, []llm.Message{
		{Role: "user", Content: "what's the weather"},
		{Role: "assistant", Content: fake.reply},
	}, fake.history[1])
	assert.Contains(t, fake.prompts[0], "Current mood: Why-Am-I-Here Monday Blues")
}

func TestCompletionFailureApologises(t *testing.T) {
	fake := &fakeLLM{err: errors.New("rate limited")}
	r, _ := newReceptionist(t, 0, Deps{LLM: fake})

	reply := r.GenerateResponse(context.Background(), "tell me a joke", nil, persona.MoodFor(monday), "")
	assert.Equal(t, persona.AIApology, reply.Text)
	assert.Equal(t, metrics.SourceFallback, reply.Source)

	fake.err = nil
	fake.reply = "   "
	reply = r.GenerateResponse(context.Background(), "tell me a joke", nil, persona.MoodFor(monday), "")
	assert.Equal(t, metrics.SourceFallback, reply.Source)
}

func TestKnowledgeWins(t *testing.T) {
	fake := &fakeLLM{reply: "unused"}
	r, _ := newReceptionist(t, 0.99, Deps{LLM: fake, Knowledge: fakeKB{answer: "Since you asked SO nicely... 9 to 5.", ok: true}})

	reply := r.GenerateResponse(context.Background(), "book a meeting when you're open", nil, persona.MoodFor(monday), "")
	assert.Equal(t, metrics.SourceKnowledge, reply.Source)
	assert.Equal(t, "Since you asked SO nicely... 9 to 5.", reply.Text)
	assert.Empty(t, fake.inputs)

	r2, _ := newReceptionist(t, 0, Deps{LLM: fake, Knowledge: fakeKB{}})
	reply = r2.GenerateResponse(context.Background(), "who are you", nil, persona.MoodFor(monday), "")
	assert.Equal(t, metrics.SourceLLM, reply.Source)
}

func TestInterruptionHoldAndFollowUp(t *testing.T) {
	r, _ := newReceptionist(t, 0.99, Deps{})

	first := r.Reply(context.Background(), "CA4", "I need to book something")
	assert.False(t, strings.HasPrefix(first.Text, persona.Interruptions[0]))
	assert.True(t, first.Hold, "second turn counter is past one")
	assert.Equal(t, persona.HoldMusic[0], first.HoldMusic)
	assert.True(t, first.FollowUp)

	second := r.Reply(context.Background(), "CA4", "book it for tuesday")
	assert.True(t, strings.HasPrefix(second.Text, persona.Interruptions[0]+" "))
	assert.Equal(t, 4, second.Turns)
	assert.True(t, strings.HasPrefix(second.Enhanced.Text, "... "), "breathing after the third turn")
}

func TestStartCall(t *testing.T) {
	r, log := newReceptionist(t, 0, Deps{})

	g := r.StartCall(context.Background(), "CA5", "+15550100", "+15550199")

	assert.Equal(t, persona.GreetingLines(persona.TimeGreeting(monday))[0], g.Text)
	assert.Equal(t, voice.ForMood(persona.MoodFor(monday)), g.Voice)
	assert.Equal(t, g.Voice, r.Store().Voice("CA5"))
	assert.Equal(t, "+15550100", r.Store().Get("CA5").From)
	assert.NotEmpty(t, g.Enhanced.Text)

	require.Len(t, log.entries, 1)
	assert.Equal(t, persona.NewCallMarker, log.entries[0].user)
	assert.Equal(t, g.Text, log.entries[0].response)
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func TestCallLifecyclePersisted(t *testing.T) {
	db := openDB(t)
	store := session.NewStore()
	r, _ := newReceptionist(t, 0, Deps{DB: db, Store: store, Metrics: metrics.New("t")})
	r.opts.CleanupDelay = 300 * time.Millisecond
	ctx := context.Background()

	r.StartCall(ctx, "CA6", "+1555", "+1666")
	r.Reply(ctx, "CA6", "hello there")
	assert.Equal(t, 1, store.ActiveCount())

	r.UpdateStatus(ctx, "CA6", "ringing")
	rec, err := models.GetCallRecordBySid(db, "CA6")
	require.NoError(t, err)
	assert.Equal(t, "ringing", rec.Status)
	assert.Equal(t, models.CallDirectionInbound, rec.Direction)

	r.UpdateStatus(ctx, "CA6", "completed")
	assert.Equal(t, 0, store.ActiveCount())
	assert.Equal(t, "completed", store.Status("CA6").Status)

	rec, err = models.GetCallRecordBySid(db, "CA6")
	require.NoError(t, err)
	assert.Equal(t, "completed", rec.Status)
	assert.Equal(t, 2, rec.Turns)
	assert.NotNil(t, rec.EndTime)

	assert.Eventually(t, func() bool {
		return store.Status("CA6").Status == session.StatusUnknown
	}, 3*time.Second, 10*time.Millisecond)
}

func TestOutboundCallKeepsDirection(t *testing.T) {
	db := openDB(t)
	r, _ := newReceptionist(t, 0, Deps{DB: db})
	ctx := context.Background()

	r.RecordOutbound(ctx, "CA7", "+15551234")
	assert.Equal(t, session.StatusInitiated, r.Store().Status("CA7").Status)

	r.StartCall(ctx, "CA7", "+1000", "+15551234")
	rec, err := models.GetCallRecordBySid(db, "CA7")
	require.NoError(t, err)
	assert.Equal(t, models.CallDirectionOutbound, rec.Direction)
	assert.Equal(t, "in-progress", rec.Status)
	assert.NotEmpty(t, rec.Voice)
}
