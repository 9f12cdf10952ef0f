package significance

import "errors"

var (
	ErrInvalidArguments = errors.New("significance: invalid arguments")
	// ErrUnderflow means the tail sum vanished at working precision. The last
	// term of the sum is always positive, so this points at a defect.
	ErrUnderflow = errors.New("significance: p-value underflow")
)
