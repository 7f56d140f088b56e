package contract

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMissingArgument = errors.New("missing argument")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfGas        = errors.New("out of gas")
	// ErrForgedReference a handle not granted to this execution, or with escalated rights
	ErrForgedReference = errors.New("forged reference")
	ErrUnknownModule   = errors.New("unknown module")
	ErrAccountNotFound = errors.New("account not found")
	ErrTrap            = errors.New("contract trapped")
)

// RevertError contract stopped itself with a user code
type RevertError struct {
	Code uint32
}

func (e *RevertError) Error() string {
	return fmt.Sprintf("contract reverted with code %d", e.Code)
}

// RevertCode extract the revert code from err
func RevertCode(err error) (uint32, bool) {
	var re *RevertError
	if errors.As(err, &re) {
		return re.Code, true
	}
	return 0, false
}
