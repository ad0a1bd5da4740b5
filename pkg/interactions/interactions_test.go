package interactions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/LingByte/LingReception/internal/models"
	"github.com/LingByte/LingReception/pkg/config"
)

func newTestLog(t *testing.T, db *gorm.DB) (*Log, config.InteractionsConfig) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.InteractionsConfig{
		LogFile:      filepath.Join(dir, "interactions.jsonl"),
		FunnyLogFile: filepath.Join(dir, "funny-interactions.log"),
	}
	l := New(cfg, db)
	l.now = func() time.Time { return time.Date(2024, 6, 4, 10, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { _ = l.Close() })
	return l, cfg
}

func TestRecentWithoutFile(t *testing.T) {
	l, _ := newTestLog(t, nil)
	entries, err := l.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecordAndRecent(t *testing.T) {
	l, cfg := newTestLog(t, nil)

	l.Record("CA1", "[New Call]", "What.", map[string]any{"mood": "Passive Aggressive Tuesday"})
	l.Record("CA1", "hello", "Oh. It's you.", nil)
	l.Record("CA1", "bye", "Finally.", map[string]any{"interactionNumber": 3})

	entries, err := l.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "hello", entries[0]["user"])
	assert.Equal(t, "unknown", entries[0]["mood"])
	assert.Equal(t, "Finally.", entries[1]["receptionist"])
	assert.Equal(t, float64(3), entries[1]["interactionNumber"])
	assert.Equal(t, "2024-06-04T10:30:00.000Z", entries[1]["timestamp"])

	all, err := l.Recent(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Passive Aggressive Tuesday", all[0]["mood"])

	_, err = os.Stat(cfg.FunnyLogFile)
	assert.True(t, os.IsNotExist(err), "nothing funny was said")
}

func TestFunnyLog(t *testing.T) {
	l, cfg := newTestLog(t, nil)

	l.Record("CA2", "is this Yale?", "No, this is not Yale.", map[string]any{"mood": "Dramatic Sighing Thursday", "note": "classic"})
	l.Record("CA2", "hm", "ok", map[string]any{"wasHilarious": true})

	data, err := os.ReadFile(cfg.FunnyLogFile)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "\n=== 2024-06-04T10:30:00.000Z | Dramatic Sighing Thursday ===\nUser: is this Yale?\nReceptionist: No, this is not Yale.\nNote: classic\n==================\n")
	assert.Contains(t, text, "| unknown ===\nUser: hm\nReceptionist: ok\n\n==================\n")
	assert.Equal(t, 2, strings.Count(text, "=================="+"\n"))
}

func TestIsFunny(t *testing.T) {
	assert.True(t, IsFunny(strings.Repeat("a", 101), nil))
	assert.False(t, IsFunny(strings.Repeat("a", 100), nil))
	assert.True(t, IsFunny("one oat latte please", nil))
	assert.True(t, IsFunny("x", map[string]any{"wasHilarious": true}))
	assert.False(t, IsFunny("x", map[string]any{"wasHilarious": "yes"}))
}

func TestRecordMirrorsToDatabase(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	l, _ := newTestLog(t, db)
	l.Record("CA3", "book a meeting", "*SIGH* Fine. Tuesday.", map[string]any{"mood": "Overly Corporate Wednesday", "wasHilarious": true})

	rows, err := models.GetInteractionsByCallSid(db, "CA3")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Overly Corporate Wednesday", rows[0].Mood)
	assert.True(t, rows[0].Funny)
	assert.Equal(t, "book a meeting", rows[0].User)
}
