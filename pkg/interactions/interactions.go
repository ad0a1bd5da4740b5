package interactions

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LingByte/LingReception/internal/models"
	"github.com/LingByte/LingReception/pkg/config"
	"github.com/LingByte/LingReception/pkg/logger"
)

const (
	DefaultRecentCount = 50
	timestampLayout    = "2006-01-02T15:04:05.000Z07:00"
	unknownMood        = "unknown"
)

// Entry is one decoded interactions.jsonl line.
type Entry map[string]any

// Log appends caller exchanges to a JSONL file, flags the entertaining ones
// into a plain-text file and mirrors everything to the database when one is
// attached.
type Log struct {
	mu        sync.Mutex
	path      string
	funnyPath string
	out       io.WriteCloser
	funny     io.WriteCloser
	db        *gorm.DB
	now       func() time.Time
}

// New opens the log files described by cfg. db may be nil.
func New(cfg config.InteractionsConfig, db *gorm.DB) *Log {
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = 50
	}
	for _, p := range []string{cfg.LogFile, cfg.FunnyLogFile} {
		if dir := filepath.Dir(p); dir != "" && dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
	}
	return &Log{
		path:      cfg.LogFile,
		funnyPath: cfg.FunnyLogFile,
		out:       &lumberjack.Logger{Filename: cfg.LogFile, MaxSize: maxSize, MaxBackups: 3},
		funny:     &lumberjack.Logger{Filename: cfg.FunnyLogFile, MaxSize: maxSize, MaxBackups: 3},
		db:        db,
		now:       time.Now,
	}
}

// IsFunny reports whether an exchange belongs in the funny log.
func IsFunny(response string, metadata map[string]any) bool {
	if len(response) > 100 || strings.Contains(response, "Yale") || strings.Contains(response, "latte") {
		return true
	}
	hilarious, _ := metadata["wasHilarious"].(bool)
	return hilarious
}

func moodOf(metadata map[string]any) string {
	if m, ok := metadata["mood"].(string); ok && m != "" {
		return m
	}
	return unknownMood
}

// Record writes one exchange. Failures are logged and swallowed so the call
// path never sees them.
func (l *Log) Record(callSid, user, response string, metadata map[string]any) {
	ts := l.now().UTC().Format(timestampLayout)
	mood := moodOf(metadata)

	entry := Entry{
		"timestamp":    ts,
		"callSid":      callSid,
		"mood":         mood,
		"user":         user,
		"receptionist": response,
	}
	for k, v := range metadata {
		entry[k] = v
	}

	line, err := sonic.Marshal(entry)
	if err != nil {
		logger.Error("failed to encode interaction", zap.String("callSid", callSid), zap.Error(err))
		return
	}
	funny := IsFunny(response, metadata)

	l.mu.Lock()
	if _, err := l.out.Write(append(line, '\n')); err != nil {
		logger.Error("failed to log interaction", zap.String("callSid", callSid), zap.Error(err))
	}
	if funny {
		note, _ := metadata["note"].(string)
		if _, err := io.WriteString(l.funny, funnyBlock(ts, mood, user, response, note)); err != nil {
			logger.Error("failed to log funny interaction", zap.String("callSid", callSid), zap.Error(err))
		}
	}
	l.mu.Unlock()

	if l.db != nil {
		row := &models.Interaction{
			CallSid:      callSid,
			Mood:         mood,
			User:         user,
			Receptionist: response,
			Funny:        funny,
			Metadata:     models.InteractionMetadata(metadata),
		}
		if err := models.CreateInteraction(l.db, row); err != nil {
			logger.Warn("failed to mirror interaction", zap.String("callSid", callSid), zap.Error(err))
		}
	}
}

func funnyBlock(ts, mood, user, response, note string) string {
	noteLine := ""
	if note != "" {
		noteLine = "Note: " + note
	}
	return fmt.Sprintf("\n=== %s | %s ===\nUser: %s\nReceptionist: %s\n%s\n==================\n",
		ts, mood, user, response, noteLine)
}

// Recent returns the last count entries of the current log file, oldest
// first. A missing file yields no entries.
func (l *Log) Recent(count int) ([]Entry, error) {
	if count <= 0 {
		count = DefaultRecentCount
	}

	l.mu.Lock()
	data, err := os.ReadFile(l.path)
	l.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read interactions: %w", err)
	}

	var lines [][]byte
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if line := bytes.TrimSpace(sc.Bytes()); len(line) > 0 {
			lines = append(lines, append([]byte(nil), line...))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan interactions: %w", err)
	}
	if len(lines) > count {
		lines = lines[len(lines)-count:]
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		var e Entry
		if err := sonic.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("decode interaction: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Close flushes and closes both files.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return errors.Join(l.out.Close(), l.funny.Close())
}
