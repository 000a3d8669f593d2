package repository

import (
	"context"
	"errors"
	"time"

	"telecare/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type PaymentModel struct {
	ID        string `gorm:"column:id;primaryKey"`
	BookingID string `gorm:"column:booking_id;index"`
	Amount    int64  `gorm:"column:amount"`
	Status    string `gorm:"column:status;index"`

	// LiveKey equals booking_id while the payment is pending or paid and is
	// NULL otherwise. The unique index makes "at most one live payment per
	// booking" a database invariant, not just a service check.
	LiveKey *string `gorm:"column:live_key;uniqueIndex"`

	PaidAt        *time.Time `gorm:"column:paid_at"`
	FailureReason *string    `gorm:"column:failure_reason"`
	RefundAmount  *int64     `gorm:"column:refund_amount"`
	RefundedAt    *time.Time `gorm:"column:refunded_at"`

	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (PaymentModel) TableName() string { return "payments" }

func toDomainPayment(m PaymentModel) *domain.Payment {
	p := &domain.Payment{
		ID:         m.ID,
		BookingID:  m.BookingID,
		Amount:     domain.Money(m.Amount),
		Status:     domain.PaymentStatus(m.Status),
		PaidAt:     m.PaidAt,
		RefundedAt: m.RefundedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.FailureReason != nil {
		p.FailureReason = *m.FailureReason
	}
	if m.RefundAmount != nil {
		v := domain.Money(*m.RefundAmount)
		p.RefundAmount = &v
	}
	return p
}

func toPaymentModel(p *domain.Payment) PaymentModel {
	m := PaymentModel{
		ID:         p.ID,
		BookingID:  p.BookingID,
		Amount:     int64(p.Amount),
		Status:     string(p.Status),
		PaidAt:     p.PaidAt,
		RefundedAt: p.RefundedAt,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.Status.IsLive() {
		key := p.BookingID
		m.LiveKey = &key
	}
	if p.FailureReason != "" {
		v := p.FailureReason
		m.FailureReason = &v
	}
	if p.RefundAmount != nil {
		v := int64(*p.RefundAmount)
		m.RefundAmount = &v
	}
	return m
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt

	m := toPaymentModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrLivePaymentExists
		}
		return err
	}
	return nil
}

var ErrLivePaymentExists = errors.New("booking already has a live payment")

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	var m PaymentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toDomainPayment(m), nil
}

// GetLiveByBooking returns the booking's payment in pending or paid status,
// or ErrNotFound when there is none.
func (r *PaymentRepository) GetLiveByBooking(ctx context.Context, bookingID string) (*domain.Payment, error) {
	var m PaymentModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status IN ?", bookingID, []string{string(domain.PaymentPending), string(domain.PaymentPaid)}).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toDomainPayment(m), nil
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID string) ([]domain.Payment, error) {
	var models []PaymentModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Payment, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainPayment(m))
	}
	return out, nil
}

// Update rewrites the payment's amount and status fields, clearing the live
// key when the payment leaves the live set.
func (r *PaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	p.UpdatedAt = time.Now().UTC()
	m := toPaymentModel(p)

	return r.db.WithContext(ctx).
		Model(&PaymentModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"amount":         m.Amount,
			"status":         m.Status,
			"live_key":       m.LiveKey,
			"paid_at":        m.PaidAt,
			"failure_reason": m.FailureReason,
			"refund_amount":  m.RefundAmount,
			"refunded_at":    m.RefundedAt,
			"updated_at":     m.UpdatedAt,
		}).Error
}

// ListInWindow returns payments created in [from, to) for analytics.
func (r *PaymentRepository) ListInWindow(ctx context.Context, from, to time.Time) ([]domain.Payment, error) {
	var models []PaymentModel
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Payment, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainPayment(m))
	}
	return out, nil
}
