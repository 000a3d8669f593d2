package repository

import (
	"context"
	"time"

	"telecare/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

type AuditEventModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	BookingID  string    `gorm:"column:booking_id;index"`
	Kind       string    `gorm:"column:kind;index"`
	FromStatus string    `gorm:"column:from_status"`
	ToStatus   string    `gorm:"column:to_status"`
	Event      string    `gorm:"column:event"`
	OperatorID *string   `gorm:"column:operator_id"`
	Note       *string   `gorm:"column:note"`
	CreatedAt  time.Time `gorm:"column:created_at;index"`
}

func (AuditEventModel) TableName() string { return "audit_events" }

func toDomainAudit(m AuditEventModel) domain.AuditEvent {
	e := domain.AuditEvent{
		ID:         m.ID,
		BookingID:  m.BookingID,
		Kind:       domain.AuditEventKind(m.Kind),
		FromStatus: domain.BookingStatus(m.FromStatus),
		ToStatus:   domain.BookingStatus(m.ToStatus),
		Event:      domain.BookingEvent(m.Event),
		CreatedAt:  m.CreatedAt,
	}
	if m.OperatorID != nil {
		e.OperatorID = *m.OperatorID
	}
	if m.Note != nil {
		e.Note = *m.Note
	}
	return e
}

func (r *AuditRepository) Append(ctx context.Context, e *domain.AuditEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	m := AuditEventModel{
		ID:         e.ID,
		BookingID:  e.BookingID,
		Kind:       string(e.Kind),
		FromStatus: string(e.FromStatus),
		ToStatus:   string(e.ToStatus),
		Event:      string(e.Event),
		CreatedAt:  e.CreatedAt,
	}
	if e.OperatorID != "" {
		v := e.OperatorID
		m.OperatorID = &v
	}
	if e.Note != "" {
		v := e.Note
		m.Note = &v
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *AuditRepository) ListByBooking(ctx context.Context, bookingID string) ([]domain.AuditEvent, error) {
	var models []AuditEventModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.AuditEvent, 0, len(models))
	for _, m := range models {
		out = append(out, toDomainAudit(m))
	}
	return out, nil
}

// CountOverridesInWindow reports operator-forced transitions for analytics.
func (r *AuditRepository) CountOverridesInWindow(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&AuditEventModel{}).
		Where("kind = ? AND created_at >= ? AND created_at < ?", string(domain.AuditAdminOverride), from, to).
		Count(&count).Error
	return count, err
}
