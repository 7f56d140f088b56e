package ledger

import (
	"github.com/pkg/errors"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrRightsEscalation = errors.New("derived rights exceed parent rights")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrOverflow         = errors.New("arithmetic overflow")
	ErrInvalidKey       = errors.New("invalid key")
	ErrInvalidValue     = errors.New("invalid value encoding")
)
