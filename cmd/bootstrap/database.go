package bootstrap

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/LingByte/LingReception/internal/models"
	"github.com/LingByte/LingReception/pkg/config"
	"github.com/LingByte/LingReception/pkg/constants"
	"github.com/LingByte/LingReception/pkg/logger"
)

// Options controls what SetupDatabase does beyond opening the connection.
type Options struct {
	InitSQLPath string
	AutoMigrate bool
	SeedNonProd bool
}

// OpenDatabase connects with the named driver. Unknown drivers use sqlite.
func OpenDatabase(driver, dsn string, logWriter io.Writer) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case constants.DB_DRIVER_MYSQL:
		dialector = mysql.Open(dsn)
	case constants.DB_DRIVER_POSTGRES:
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}

	gormLog := gormlogger.New(log.New(logWriter, "\r\n", log.LstdFlags), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
	return gorm.Open(dialector, &gorm.Config{Logger: gormLog})
}

// SetupDatabase opens the configured database and optionally runs an init
// script, migrates the tables and seeds demo data outside production.
func SetupDatabase(logWriter io.Writer, opts *Options) (*gorm.DB, error) {
	if opts == nil {
		opts = &Options{}
	}
	cfg := config.GlobalConfig.Database
	db, err := OpenDatabase(cfg.Driver, cfg.DSN, logWriter)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	if opts.InitSQLPath != "" {
		if err := runSQLFile(db, opts.InitSQLPath); err != nil {
			return nil, err
		}
	}

	// the call tables are always needed, so migrate on first run as well
	if opts.AutoMigrate || !db.Migrator().HasTable(&models.CallRecord{}) {
		if err := db.AutoMigrate(models.AllModels()...); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("database migrated", zap.String("driver", cfg.Driver))
	}

	if opts.SeedNonProd && config.GlobalConfig.Server.Mode != constants.ENV_PRODUCTION {
		if err := (&SeedService{db: db}).SeedAll(); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return db, nil
}

func runSQLFile(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read init sql: %w", err)
	}
	for _, stmt := range strings.Split(string(raw), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || strings.HasPrefix(stmt, "--") {
			continue
		}
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("init sql %q: %w", stmt, err)
		}
	}
	logger.Info("init sql applied", zap.String("path", path))
	return nil
}
