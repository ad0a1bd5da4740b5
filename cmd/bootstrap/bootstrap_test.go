package bootstrap

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/LingByte/LingReception/internal/models"
	"github.com/LingByte/LingReception/pkg/constants"
	"github.com/LingByte/LingReception/pkg/knowledge"
)

func TestSeedKnowledgeOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	s := &SeedService{db: db}
	require.NoError(t, s.SeedAll())
	require.NoError(t, s.SeedAll())

	n, err := models.CountKnowledgeSnapshots(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	row, err := models.GetLatestKnowledgeSnapshot(db)
	require.NoError(t, err)
	assert.Equal(t, constants.DEMO_KNOWLEDGE_SOURCE, row.Source)

	var data knowledge.Data
	require.NoError(t, sonic.Unmarshal([]byte(row.Payload), &data))
	assert.Len(t, data.FAQs, 2)
	assert.Equal(t, "9am - 3pm", data.Hours.Days["friday"])
}

func TestPrintBannerFromExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banner.txt")
	require.NoError(t, os.WriteFile(path, []byte("LING\n\nRECEPTION\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, PrintBannerFromFile(&out, path, "ignored", "Passive Aggressive Tuesday", []string{"Backhanded compliments"}))

	s := out.String()
	assert.Contains(t, s, "LING")
	assert.Contains(t, s, "RECEPTION")
	assert.Contains(t, s, "Mood: Passive Aggressive Tuesday")
	assert.Contains(t, s, "   - Backhanded compliments")
	assert.Equal(t, 2, strings.Count(s, "\x1b[0m"))
}

func TestPlainBanner(t *testing.T) {
	assert.Equal(t, "==========\n=== AB ===\n==========", plainBanner("ab"))
}
