package database

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/loomchat/loomchat-be/internal/core/jobs"
	"github.com/loomchat/loomchat-be/internal/models"
)

// NewDB opens the Postgres connection and migrates the conversation schema.
func NewDB(connStr string) *gorm.DB {
	if connStr == "" {
		log.Fatal("❌ DATABASE_URL is empty")
	}

	gormDB, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("❌ Failed to open database: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("❌ Failed to get sql.DB: %v", err)
	}

	// Connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("❌ Failed to ping database: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&models.User{},
		&models.Chat{},
		&models.Message{},
		&models.Vote{},
		&models.Document{},
		&jobs.Job{},
	); err != nil {
		log.Fatalf("❌ Failed to migrate schema: %v", err)
	}

	log.Println("✅ Database connected")
	return gormDB
}

// Close shuts down the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	log.Println("🔌 Closing database connection...")
	return sqlDB.Close()
}
