package knowledge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/carlmjohnson/requests"
	"go.uber.org/zap"

	"github.com/LingByte/LingReception/pkg/config"
	"github.com/LingByte/LingReception/pkg/logger"
)

var ErrNoSource = errors.New("knowledge: no source url configured")

const userAgent = "LingReception-KB/1.0"

// Picker chooses one of several phrasings.
type Picker interface {
	Pick(options []string) string
}

// Stats summarises what the base currently knows.
type Stats struct {
	Initialized  bool       `json:"initialized"`
	LastUpdate   *time.Time `json:"lastUpdate"`
	SourceURL    string     `json:"sourceUrl"`
	FAQCount     int        `json:"faqCount"`
	ServiceCount int        `json:"serviceCount"`
	PolicyCount  int        `json:"policyCount"`
	ContactCount int        `json:"contactCount"`
	HasHours     bool       `json:"hasHours"`
	HasLocations bool       `json:"hasLocations"`
}

// Base holds the company knowledge, keeps it fresh from a URL and answers
// caller questions from it.
type Base struct {
	mu          sync.RWMutex
	cfg         config.KnowledgeConfig
	data        Data
	lastUpdate  time.Time
	initialized bool

	cache  Cache
	picker Picker
	client *http.Client
	now    func() time.Time
}

// New builds a Base. cache may be nil.
func New(cfg config.KnowledgeConfig, cache Cache, picker Picker) *Base {
	if cfg.MatchThreshold <= 0 {
		cfg.MatchThreshold = 0.6
	}
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = time.Hour
	}
	if cfg.AnswerThreshold <= 0 {
		cfg.AnswerThreshold = 0.9
	}
	return &Base{
		cfg:    cfg,
		data:   Data{CustomData: map[string]any{}},
		cache:  cache,
		picker: picker,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

// Init loads the cache and fetches from the source when the cache is
// missing or stale. A failed fetch is tolerated while cached data exists.
func (b *Base) Init(ctx context.Context) error {
	cached := false
	if b.cache != nil {
		snap, err := b.cache.Load(ctx)
		switch {
		case err == nil:
			b.mu.Lock()
			b.data = snap.Data
			b.lastUpdate = snap.Timestamp
			b.mu.Unlock()
			cached = true
			logger.Info("knowledge base loaded from cache", zap.Time("lastUpdate", snap.Timestamp))
		case !errors.Is(err, ErrCacheMiss):
			logger.Warn("knowledge cache unreadable", zap.Error(err))
		}
	}

	if !cached || b.stale() {
		if err := b.Fetch(ctx); err != nil && !errors.Is(err, ErrNoSource) {
			if !cached {
				return err
			}
			logger.Warn("knowledge refresh failed, serving cached copy", zap.Error(err))
		}
	}

	b.mu.Lock()
	b.initialized = true
	b.mu.Unlock()
	return nil
}

func (b *Base) stale() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastUpdate.IsZero() || b.now().Sub(b.lastUpdate) > b.cfg.UpdateInterval
}

// Fetch downloads the source document, merges it and writes the cache.
func (b *Base) Fetch(ctx context.Context) error {
	if b.cfg.SourceURL == "" {
		return ErrNoSource
	}

	var buf bytes.Buffer
	err := requests.
		URL(b.cfg.SourceURL).
		Client(b.client).
		UserAgent(userAgent).
		Accept("application/json").
		ToBytesBuffer(&buf).
		Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch knowledge base: %w", err)
	}

	b.mu.RLock()
	prev := b.data
	b.mu.RUnlock()

	data, err := Parse(buf.Bytes(), prev)
	if err != nil {
		return fmt.Errorf("parse knowledge base: %w", err)
	}

	now := b.now()
	b.mu.Lock()
	b.data = data
	b.lastUpdate = now
	b.mu.Unlock()

	b.save(ctx)
	logger.Info("knowledge base updated", zap.String("source", b.cfg.SourceURL), zap.Int("faqs", len(data.FAQs)))
	return nil
}

func (b *Base) save(ctx context.Context) {
	if b.cache == nil {
		return
	}
	b.mu.RLock()
	snap := &Snapshot{Timestamp: b.lastUpdate, Data: b.data}
	b.mu.RUnlock()
	if err := b.cache.Save(ctx, snap); err != nil {
		logger.Warn("knowledge cache save failed", zap.Error(err))
	}
}

// Run refreshes the base every UpdateInterval until ctx is done.
func (b *Base) Run(ctx context.Context) {
	if b.cfg.SourceURL == "" {
		return
	}
	ticker := time.NewTicker(b.cfg.UpdateInterval)
	defer ticker.Stop()
	logger.Info("knowledge auto-update started", zap.Duration("interval", b.cfg.UpdateInterval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("knowledge auto-update stopped")
			return
		case <-ticker.C:
			if err := b.Fetch(ctx); err != nil {
				logger.Warn("knowledge auto-update failed", zap.Error(err))
			}
		}
	}
}

// Configured reports whether there is anything to search.
func (b *Base) Configured() bool {
	if b == nil {
		return false
	}
	if b.cfg.SourceURL != "" {
		return true
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	d := b.data
	return len(d.FAQs) > 0 || len(d.Services) > 0 || len(d.Policies) > 0 ||
		len(d.Contacts) > 0 || !d.Hours.Empty() || len(d.Locations) > 0
}

// Search scores every section against query.
func (b *Base) Search(query string) Results {
	b.mu.RLock()
	d := b.data
	b.mu.RUnlock()
	return search(d, query, b.cfg.MatchThreshold)
}

// Answer wraps the best result in a sarcastic preamble. Empty when nothing
// matched.
func (b *Base) Answer(res Results) string {
	if res.Confidence == 0 {
		return ""
	}
	best, ok := res.Best()
	if !ok {
		return ""
	}
	answer := best.Answer
	if w, ok := wrappers[best.Type]; ok && b.picker != nil {
		answer = b.picker.Pick(w) + answer
	}
	return answer
}

// Lookup returns a wrapped answer when the best match is confident enough.
func (b *Base) Lookup(query string) (string, float64, bool) {
	res := b.Search(query)
	if res.Confidence < b.cfg.AnswerThreshold {
		return "", res.Confidence, false
	}
	answer := b.Answer(res)
	return answer, res.Confidence, answer != ""
}

func (b *Base) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := Stats{
		Initialized:  b.initialized,
		SourceURL:    b.cfg.SourceURL,
		FAQCount:     len(b.data.FAQs),
		ServiceCount: len(b.data.Services),
		PolicyCount:  len(b.data.Policies),
		ContactCount: len(b.data.Contacts),
		HasHours:     !b.data.Hours.Empty(),
		HasLocations: len(b.data.Locations) > 0,
	}
	if !b.lastUpdate.IsZero() {
		t := b.lastUpdate
		s.LastUpdate = &t
	}
	return s
}

// Data returns a snapshot of the current document.
func (b *Base) Data() Data {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data
}
