package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"navtools/internal/config"
	"navtools/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database and runs migrations.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormLogger := logger.Default
	if !cfg.LogMode {
		gormLogger = gormLogger.LogMode(logger.Silent)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		if dir := filepath.Dir(cfg.DSN); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate applies the schema for all tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.AdminUser{},
		&models.Category{},
		&models.Tool{},
		&models.SiteConfig{},
		&models.IconResource{},
		&models.AuditLog{},
	)
}

// Seed creates the default superuser, site configuration and builtin icons
// on first start. All inserts are idempotent.
func Seed(db *gorm.DB, admin config.AdminConfig) error {
	var count int64
	db.Model(&models.AdminUser{}).Count(&count)
	if count == 0 {
		if admin.Password == "" {
			return fmt.Errorf("no admin users exist and admin.password is not configured")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash default admin password: %w", err)
		}
		root := models.AdminUser{
			Username:       admin.Username,
			Email:          admin.Email,
			HashedPassword: hashed,
			IsSuperuser:    true,
			IsActive:       true,
		}
		if err := db.Create(&root).Error; err != nil {
			return fmt.Errorf("seed default admin: %w", err)
		}
	}

	db.Model(&models.SiteConfig{}).Count(&count)
	if count == 0 {
		cfg := models.SiteConfig{
			SiteName:        "NavTools",
			SiteDescription: "A curated collection of useful tools",
			SiteKeywords:    "tools,utilities,developer tools",
			ThemeEnabled:    true,
		}
		if err := db.Create(&cfg).Error; err != nil {
			return fmt.Errorf("seed site config: %w", err)
		}
	}

	return seedBuiltinIcons(db)
}

var builtinIcons = []models.IconResource{
	{Name: "Home", Slug: "home", Content: "Home", Category: "basic"},
	{Name: "Settings", Slug: "settings", Content: "Settings", Category: "basic"},
	{Name: "User", Slug: "user", Content: "User", Category: "basic"},
	{Name: "Wrench", Slug: "wrench", Content: "Wrench", Category: "basic"},
	{Name: "Folder", Slug: "folder", Content: "Folder", Category: "basic"},
	{Name: "Link", Slug: "link", Content: "Link", Category: "basic"},
	{Name: "Search", Slug: "search", Content: "Search", Category: "basic"},
	{Name: "Code", Slug: "code", Content: "Code", Category: "dev"},
	{Name: "Terminal", Slug: "terminal", Content: "Terminal", Category: "dev"},
	{Name: "Database", Slug: "database", Content: "Database", Category: "dev"},
	{Name: "Hash", Slug: "hash", Content: "Hash", Category: "dev"},
	{Name: "File", Slug: "file", Content: "File", Category: "file"},
	{Name: "Archive", Slug: "archive", Content: "Archive", Category: "file"},
	{Name: "Image", Slug: "image", Content: "Image", Category: "media"},
	{Name: "Video", Slug: "video", Content: "Video", Category: "media"},
	{Name: "Music", Slug: "music", Content: "Music", Category: "media"},
	{Name: "Lock", Slug: "lock", Content: "Lock", Category: "security"},
	{Name: "Shield", Slug: "shield", Content: "Shield", Category: "security"},
	{Name: "Calendar", Slug: "calendar", Content: "Calendar", Category: "time"},
	{Name: "Clock", Slug: "clock", Content: "Clock", Category: "time"},
	{Name: "Mail", Slug: "mail", Content: "Mail", Category: "contact"},
	{Name: "Calculator", Slug: "calculator", Content: "Calculator", Category: "math"},
	{Name: "Palette", Slug: "palette", Content: "Palette", Category: "design"},
	{Name: "QrCode", Slug: "qr-code", Content: "QrCode", Category: "tools"},
}

func seedBuiltinIcons(db *gorm.DB) error {
	for _, icon := range builtinIcons {
		var cnt int64
		db.Model(&models.IconResource{}).Where("slug = ?", icon.Slug).Count(&cnt)
		if cnt == 0 {
			icon.IconType = "lucide"
			icon.Source = "builtin"
			icon.IsActive = true
			if err := db.Create(&icon).Error; err != nil {
				return fmt.Errorf("seed icon %s: %w", icon.Slug, err)
			}
		}
	}
	return nil
}
