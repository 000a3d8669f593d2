package repository

import (
	"context"
	"errors"
	"time"

	"telecare/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type BookingModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	PatientID      string    `gorm:"column:patient_id;index"`
	ProviderID     string    `gorm:"column:provider_id;index"`
	ScheduledAt    time.Time `gorm:"column:scheduled_at"`
	Mode           string    `gorm:"column:mode"`
	Reason         *string   `gorm:"column:reason"`
	ConsentGranted bool      `gorm:"column:consent_granted"`

	ConsultationFee int64  `gorm:"column:consultation_fee"`
	PriceSnapshot   *int64 `gorm:"column:price_snapshot"`

	Status             string     `gorm:"column:status;index"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`

	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (BookingModel) TableName() string { return "bookings" }

func toDomainBooking(m BookingModel) *domain.Booking {
	b := &domain.Booking{
		ID:              m.ID,
		PatientID:       m.PatientID,
		ProviderID:      m.ProviderID,
		ScheduledAt:     m.ScheduledAt,
		Mode:            domain.ConsultationMode(m.Mode),
		ConsentGranted:  m.ConsentGranted,
		ConsultationFee: domain.Money(m.ConsultationFee),
		Status:          domain.BookingStatus(m.Status),
		CancelledAt:     m.CancelledAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Reason != nil {
		b.Reason = *m.Reason
	}
	if m.CancellationReason != nil {
		b.CancellationReason = *m.CancellationReason
	}
	if m.PriceSnapshot != nil {
		snap := domain.Money(*m.PriceSnapshot)
		b.PriceSnapshot = &snap
	}
	return b
}

func toBookingModel(b *domain.Booking) BookingModel {
	m := BookingModel{
		ID:              b.ID,
		PatientID:       b.PatientID,
		ProviderID:      b.ProviderID,
		ScheduledAt:     b.ScheduledAt,
		Mode:            string(b.Mode),
		ConsentGranted:  b.ConsentGranted,
		ConsultationFee: int64(b.ConsultationFee),
		Status:          string(b.Status),
		CancelledAt:     b.CancelledAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.Reason != "" {
		v := b.Reason
		m.Reason = &v
	}
	if b.CancellationReason != "" {
		v := b.CancellationReason
		m.CancellationReason = &v
	}
	if b.PriceSnapshot != nil {
		v := int64(*b.PriceSnapshot)
		m.PriceSnapshot = &v
	}
	return m
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = b.CreatedAt

	m := toBookingModel(b)
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var m BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toDomainBooking(m), nil
}

// Update persists the mutable lifecycle fields. The guard on the previous
// updated_at turns a lost update into ErrStaleBooking instead of silently
// overwriting a concurrent transition.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking, prevUpdatedAt time.Time) error {
	b.UpdatedAt = time.Now().UTC()
	if !b.UpdatedAt.After(prevUpdatedAt) {
		b.UpdatedAt = prevUpdatedAt.Add(time.Microsecond)
	}

	m := toBookingModel(b)
	res := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND updated_at = ?", b.ID, prevUpdatedAt).
		Updates(map[string]interface{}{
			"status":              m.Status,
			"price_snapshot":      m.PriceSnapshot,
			"cancellation_reason": m.CancellationReason,
			"cancelled_at":        m.CancelledAt,
			"updated_at":          m.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleBooking
	}
	return nil
}

var ErrStaleBooking = errors.New("booking was modified concurrently")

// ListInWindow returns bookings created in [from, to), ordered by creation
// time. Used by analytics as a one-shot consistent snapshot.
func (r *BookingRepository) ListInWindow(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	var models []BookingModel
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}
