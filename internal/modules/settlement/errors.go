package settlement

import "errors"

var (
	// ErrMissingPriceSnapshot means settlement was attempted before the
	// booking was confirmed. Upstream programming error; surfaced, not retried.
	ErrMissingPriceSnapshot = errors.New("booking has no price snapshot")

	// ErrNegativeSettlement means commission plus booking fee exceed the
	// gross amount. The engine fails closed instead of under-paying the
	// provider; this is a fee schedule misconfiguration an operator must fix.
	ErrNegativeSettlement = errors.New("commission and fees exceed gross amount")

	// ErrPaymentNotPaid means escrow scheduling or release was requested for
	// a payment that never reached paid status.
	ErrPaymentNotPaid = errors.New("payment is not in paid status")

	ErrBookingNotFound = errors.New("booking not found")
	ErrEscrowNotFound  = errors.New("no escrow release scheduled for payment")
)
