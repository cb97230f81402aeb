// Package audit appends and queries the administrative audit trail.
// Records are append-only: this package exposes no update or delete.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"navtools/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Entry describes one administrative action to record.
type Entry struct {
	AdminID    *uint
	Action     string // create, update, delete, login, logout, reset-password, toggle, reorder, batch-*
	TargetType string // tool, category, admin, config, icon
	TargetID   *uint
	Details    any // marshaled to JSON; may be nil
	IPAddress  string
	UserAgent  string
}

// Recorder writes audit records. The zero value is unusable; construct
// with NewRecorder.
type Recorder struct {
	log *zap.Logger
}

func NewRecorder(log *zap.Logger) *Recorder {
	return &Recorder{log: log}
}

// Record appends one audit record using tx, which is expected to be the
// same transaction carrying the business mutation. A failure here must
// abort that transaction: the trail and the state it describes commit
// together or not at all.
func (r *Recorder) Record(tx *gorm.DB, e Entry) error {
	var details []byte
	if e.Details != nil {
		var err error
		details, err = json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
	}
	rec := models.AuditLog{
		AdminID:    e.AdminID,
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Details:    details,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
	}
	if err := tx.Create(&rec).Error; err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	r.log.Debug("audit record appended",
		zap.String("action", e.Action),
		zap.String("target_type", e.TargetType))
	return nil
}

// Filter narrows an audit log listing. Zero values mean "no constraint".
type Filter struct {
	AdminID    uint
	Action     string
	TargetType string
	Start      time.Time
	End        time.Time
}

// Row is one listing entry with the actor's username resolved where the
// admin still exists.
type Row struct {
	models.AuditLog
	AdminUsername *string `json:"admin_username"`
}

// List returns records newest first. The admin join is an outer join so
// records of deleted admins still appear, with a null username.
func List(db *gorm.DB, f Filter, page, pageSize int) ([]Row, int64, error) {
	q := db.Model(&models.AuditLog{})
	if f.AdminID != 0 {
		q = q.Where("audit_logs.admin_id = ?", f.AdminID)
	}
	if f.Action != "" {
		q = q.Where("audit_logs.action = ?", f.Action)
	}
	if f.TargetType != "" {
		q = q.Where("audit_logs.target_type = ?", f.TargetType)
	}
	if !f.Start.IsZero() {
		q = q.Where("audit_logs.created_at >= ?", f.Start)
	}
	if !f.End.IsZero() {
		q = q.Where("audit_logs.created_at <= ?", f.End)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []Row
	err := q.
		Select("audit_logs.*, admin_users.username AS admin_username").
		Joins("LEFT JOIN admin_users ON admin_users.id = audit_logs.admin_id").
		Order("audit_logs.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Actions returns the distinct action values present in the trail, to
// drive filter dropdowns.
func Actions(db *gorm.DB) ([]string, error) {
	var actions []string
	err := db.Model(&models.AuditLog{}).Distinct("action").Order("action").Pluck("action", &actions).Error
	return actions, err
}

// TargetTypes returns the distinct target types present in the trail.
func TargetTypes(db *gorm.DB) ([]string, error) {
	var types []string
	err := db.Model(&models.AuditLog{}).Distinct("target_type").Order("target_type").Pluck("target_type", &types).Error
	return types, err
}
