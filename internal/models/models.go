package models

import (
	"time"

	"gorm.io/datatypes"
)

// AdminUser is an administrative account. Username and email carry unique
// indexes as a backstop for the optimistic pre-checks done at write time.
type AdminUser struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Username       string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email          string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	HashedPassword []byte     `gorm:"not null" json:"-"`
	IsSuperuser    bool       `gorm:"default:false" json:"is_superuser"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	LastLogin      *time.Time `json:"last_login"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Category groups tools for the public directory.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;not null" json:"name"`
	Slug        string    `gorm:"size:50;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:100" json:"icon"`
	Color       string    `gorm:"size:20;default:#FFD700" json:"color"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Tool is a directory entry. Tags is stored as a JSON array of strings and
// must round-trip exactly as submitted.
type Tool struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"size:100;not null" json:"name"`
	Slug             string         `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	ShortDescription string         `gorm:"size:255" json:"short_description"`
	Description      string         `gorm:"type:text" json:"description"`
	URL              string         `gorm:"size:500;not null" json:"url"`
	CategoryID       uint           `gorm:"index;not null" json:"category_id"`
	Category         Category       `gorm:"foreignKey:CategoryID" json:"-"`
	Icon             string         `gorm:"size:100" json:"icon"`
	Tags             datatypes.JSON `json:"tags"`
	ViewCount        int            `gorm:"default:0" json:"view_count"`
	IsActive         bool           `gorm:"default:true;index" json:"is_active"`
	IsFeatured       bool           `gorm:"default:false;index" json:"is_featured"`
	IsSelfDeveloped  bool           `gorm:"default:false" json:"is_self_developed"`
	APIEndpoint      string         `gorm:"size:255" json:"api_endpoint"`
	SortOrder        int            `gorm:"default:0" json:"sort_order"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// SiteConfig is a single-row table holding the public site settings.
type SiteConfig struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SiteName        string    `gorm:"size:100;default:NavTools" json:"site_name"`
	SiteDescription string    `gorm:"type:text" json:"site_description"`
	SiteKeywords    string    `gorm:"size:500" json:"site_keywords"`
	ICPBeian        string    `gorm:"size:100" json:"icp_beian"`
	GonganBeian     string    `gorm:"size:100" json:"gongan_beian"`
	ContactEmail    string    `gorm:"size:100" json:"contact_email"`
	ThemeEnabled    bool      `gorm:"default:true" json:"theme_enabled"`
	LogoURL         string    `gorm:"size:500" json:"logo_url"`
	FaviconURL      string    `gorm:"size:500" json:"favicon_url"`
	FooterText      string    `gorm:"type:text" json:"footer_text"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IconResource is a named icon usable by tools and categories.
// IconType is one of lucide, svg, url; Source is builtin or custom.
type IconResource struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Slug      string    `gorm:"size:50;not null;uniqueIndex" json:"slug"`
	IconType  string    `gorm:"size:20;default:lucide" json:"icon_type"`
	Content   string    `gorm:"type:text" json:"content"`
	Source    string    `gorm:"size:50;default:builtin" json:"source"`
	Category  string    `gorm:"size:50" json:"category"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditLog is an append-only record of an administrative mutation.
// AdminID is a weak reference: deleting an admin never touches the trail,
// the id simply stops resolving. No update or delete path exists anywhere
// in the codebase.
type AuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	AdminID    *uint          `gorm:"index" json:"admin_id"`
	Action     string         `gorm:"size:50;not null;index" json:"action"`
	TargetType string         `gorm:"size:50;not null" json:"target_type"`
	TargetID   *uint          `json:"target_id"`
	Details    datatypes.JSON `json:"details"`
	IPAddress  string         `gorm:"size:50" json:"ip_address"`
	UserAgent  string         `gorm:"size:500" json:"user_agent"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}
