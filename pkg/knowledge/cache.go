package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"github.com/LingByte/LingReception/internal/models"
	"github.com/LingByte/LingReception/pkg/config"
	"github.com/LingByte/LingReception/pkg/constants"
)

var ErrCacheMiss = errors.New("knowledge: cache empty")

// Snapshot is the cached form of a Base.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Data      Data      `json:"data"`
}

type Cache interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s *Snapshot) error
}

// FileCache keeps the snapshot in one JSON file.
type FileCache struct {
	Path string
}

func (c *FileCache) Load(_ context.Context) (*Snapshot, error) {
	raw, err := os.ReadFile(c.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode knowledge cache: %w", err)
	}
	return &s, nil
}

func (c *FileCache) Save(_ context.Context, s *Snapshot) error {
	raw, err := sonic.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.Path, raw, 0o644)
}

// DBCache stores every refresh as a knowledge_snapshots row and loads the
// newest one.
type DBCache struct {
	DB     *gorm.DB
	Source string
}

func (c *DBCache) Load(ctx context.Context) (*Snapshot, error) {
	row, err := models.GetLatestKnowledgeSnapshot(c.DB.WithContext(ctx))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var data Data
	if err := sonic.Unmarshal([]byte(row.Payload), &data); err != nil {
		return nil, fmt.Errorf("decode knowledge snapshot %d: %w", row.ID, err)
	}
	return &Snapshot{Timestamp: row.FetchedAt, Data: data}, nil
}

func (c *DBCache) Save(ctx context.Context, s *Snapshot) error {
	raw, err := sonic.Marshal(s.Data)
	if err != nil {
		return err
	}
	return models.SaveKnowledgeSnapshot(c.DB.WithContext(ctx), c.Source, raw, s.Timestamp)
}

// NewCache picks the backend named in cfg. A database backend without a
// database falls back to the file cache.
func NewCache(cfg config.KnowledgeConfig, db *gorm.DB) Cache {
	if cfg.CacheBackend == constants.KNOWLEDGE_CACHE_DATABASE && db != nil {
		return &DBCache{DB: db, Source: cfg.SourceURL}
	}
	if cfg.CacheFile == "" {
		return nil
	}
	return &FileCache{Path: cfg.CacheFile}
}
