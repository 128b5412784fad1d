package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/onegreenvn/student-campaigns-backend/internal/config"
	"github.com/onegreenvn/student-campaigns-backend/internal/models"
)

// DB is the global database instance
var DB *gorm.DB

// uniqueIndexes are created after AutoMigrate because gorm tags cannot express
// partial indexes.
var uniqueIndexes = []struct {
	name  string
	table string
	ddl   string
}{
	{
		name:  "idx_submissions_campaign_position",
		table: "submissions",
		ddl:   "CREATE UNIQUE INDEX IF NOT EXISTS idx_submissions_campaign_position ON submissions(campaign_id, position) WHERE position IS NOT NULL",
	},
}

// InitDB opens the database connection and performs migrations
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	// Configure GORM logger
	gormLogger := logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger,
		// Unique violations surface as gorm.ErrDuplicatedKey
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto").Error; err != nil {
		return nil, fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	// Set global DB instance
	DB = db

	logrus.Info("Database connection established and migrations completed")
	return db, nil
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Campaign{},
		&models.Participation{},
		&models.Submission{},
		&models.StatusHistory{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	for _, idx := range uniqueIndexes {
		var exists bool
		err := db.Raw(`
			SELECT EXISTS (
				SELECT 1
				FROM pg_indexes
				WHERE schemaname = current_schema()
				AND tablename = ?
				AND indexname = ?
			)
		`, idx.table, idx.name).Scan(&exists).Error
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}
		if exists {
			continue
		}
		logrus.Infof("Creating unique index %s...", idx.name)
		if err := db.Exec(idx.ddl).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// GetDB returns the global database instance
func GetDB() *gorm.DB {
	return DB
}
