package payment

import "errors"

var (
	ErrValidation      = errors.New("invalid payment request")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrDuplicateLivePayment means the booking already carries a payment in
	// pending or paid status. Retries after a failure create a new row; a
	// second live payment is always rejected.
	ErrDuplicateLivePayment = errors.New("booking already has a live payment")

	// ErrAmountMismatch means the paid amount differs from the booking's
	// frozen price. The gateway charged the wrong figure; an operator has to
	// look at it before anything settles.
	ErrAmountMismatch = errors.New("paid amount does not match price snapshot")

	// ErrNoPriceSnapshot means a payment report arrived before the provider
	// accepted the booking. No payment may exist until the price is frozen;
	// the gateway should never be able to charge an unconfirmed price.
	ErrNoPriceSnapshot = errors.New("booking price is not frozen yet")
)
