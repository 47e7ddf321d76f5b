package chain

import "fmt"

// VerificationError means the claimed USDT payment does not check out against
// live chain data. Terminal for the order; no funds move.
type VerificationError struct {
	Reason string
}

func (e *VerificationError) Error() string {
	return e.Reason
}

func verificationErrorf(format string, args ...interface{}) error {
	return &VerificationError{Reason: fmt.Sprintf(format, args...)}
}

// DisbursementError means the PIO payout could not be sent. When it follows a
// confirmed payment the order lands in pio_transfer_failed, which needs
// manual follow-up.
type DisbursementError struct {
	Reason string
}

func (e *DisbursementError) Error() string {
	return e.Reason
}

func disbursementErrorf(format string, args ...interface{}) error {
	return &DisbursementError{Reason: fmt.Sprintf(format, args...)}
}
