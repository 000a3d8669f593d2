package repository

import (
	"context"
	"errors"
	"time"

	"telecare/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EscrowRepository struct {
	db *gorm.DB
}

func NewEscrowRepository(db *gorm.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

type EscrowReleaseModel struct {
	ID        string `gorm:"column:id;primaryKey"`
	PaymentID string `gorm:"column:payment_id;uniqueIndex"`
	BookingID string `gorm:"column:booking_id;index"`
	Amount    int64  `gorm:"column:amount"`

	ReleaseDue time.Time  `gorm:"column:release_due;index"`
	Released   bool       `gorm:"column:released"`
	ReleasedAt *time.Time `gorm:"column:released_at"`
	Cancelled  bool       `gorm:"column:cancelled"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (EscrowReleaseModel) TableName() string { return "escrow_releases" }

func toDomainEscrow(m EscrowReleaseModel) *domain.EscrowRelease {
	return &domain.EscrowRelease{
		ID:         m.ID,
		PaymentID:  m.PaymentID,
		BookingID:  m.BookingID,
		Amount:     domain.Money(m.Amount),
		ReleaseDue: m.ReleaseDue,
		Released:   m.Released,
		ReleasedAt: m.ReleasedAt,
		Cancelled:  m.Cancelled,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// Create persists a hold. Scheduling twice for the same payment hits the
// unique index; the caller treats that as "already scheduled" and re-reads.
func (r *EscrowRepository) Create(ctx context.Context, e *domain.EscrowRelease) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = e.CreatedAt

	m := EscrowReleaseModel{
		ID:         e.ID,
		PaymentID:  e.PaymentID,
		BookingID:  e.BookingID,
		Amount:     int64(e.Amount),
		ReleaseDue: e.ReleaseDue,
		Released:   e.Released,
		ReleasedAt: e.ReleasedAt,
		Cancelled:  e.Cancelled,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrEscrowExists
		}
		return err
	}
	return nil
}

var ErrEscrowExists = errors.New("escrow release already scheduled for payment")

func (r *EscrowRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.EscrowRelease, error) {
	var m EscrowReleaseModel
	if err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toDomainEscrow(m), nil
}

// MarkReleased flips the released flag at most once. The conditional update
// is the idempotence guard: a second invocation (or a concurrent sweep tick)
// matches zero rows and reports changed=false.
func (r *EscrowRepository) MarkReleased(ctx context.Context, paymentID string, releasedAt time.Time) (changed bool, err error) {
	res := r.db.WithContext(ctx).
		Model(&EscrowReleaseModel{}).
		Where("payment_id = ? AND released = ? AND cancelled = ?", paymentID, false, false).
		Updates(map[string]interface{}{
			"released":    true,
			"released_at": releasedAt,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkCancelled voids an unreleased hold after a refund. Already-released
// holds are left untouched.
func (r *EscrowRepository) MarkCancelled(ctx context.Context, paymentID string) (changed bool, err error) {
	res := r.db.WithContext(ctx).
		Model(&EscrowReleaseModel{}).
		Where("payment_id = ? AND released = ? AND cancelled = ?", paymentID, false, false).
		Updates(map[string]interface{}{
			"cancelled":  true,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListDue returns unreleased, uncancelled holds whose release time has
// passed as of asOf.
func (r *EscrowRepository) ListDue(ctx context.Context, asOf time.Time) ([]domain.EscrowRelease, error) {
	var models []EscrowReleaseModel
	err := r.db.WithContext(ctx).
		Where("released = ? AND cancelled = ? AND release_due <= ?", false, false, asOf).
		Order("release_due asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.EscrowRelease, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainEscrow(m))
	}
	return out, nil
}
