package service

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes; anything else surfaces as a generic server error.
var (
	// ErrNotFound means the referenced order, draft or expense does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrActiveOrderExists rejects a placement whose phone number already has
	// a non-terminal order in the ledger.
	ErrActiveOrderExists = errors.New("an active order already exists for this phone number")

	// ErrBlocked rejects a placement from a blocklisted identifier. No
	// further detail is leaked to the caller.
	ErrBlocked = errors.New("order declined by policy")

	// ErrAlreadyBlocked rejects adding an identifier twice.
	ErrAlreadyBlocked = errors.New("identifier is already blocked")

	// ErrInvalidInput flags a missing or malformed required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIllegalTransition rejects a status change the lifecycle table does
	// not allow.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrAlreadyConsigned rejects sending an order to the courier twice.
	ErrAlreadyConsigned = errors.New("order already sent to courier")

	// ErrCourier wraps failures talking to the courier gateway.
	ErrCourier = errors.New("courier gateway error")

	// ErrRestockNotAllowed rejects a manual restock with no prior deduction
	// or one that already happened.
	ErrRestockNotAllowed = errors.New("restock not allowed for this order")
)
