package subscription

import "errors"

// Typed errors for the subscription lifecycle. Handlers map these to
// HTTP statuses with errors.Is instead of matching on SQL errors.
var (
	// ErrDuplicatePending means the employer already has a payment
	// awaiting review; a second submission is rejected until the first
	// is approved or declined.
	ErrDuplicatePending = errors.New("a payment is already pending review")

	// ErrPaymentNotFound means no payment exists with the given id.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrAlreadyReviewed means the payment was already approved or
	// declined. Reviews are terminal and are never reopened.
	ErrAlreadyReviewed = errors.New("payment has already been reviewed")

	// ErrUnknownPlan means the submitted plan identifier names no tier.
	ErrUnknownPlan = errors.New("unknown plan type")
)
