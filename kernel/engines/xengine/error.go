package xengine

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/xuperchain/xengine/bcs/state/xmodel"
	"github.com/xuperchain/xengine/kernel/contract"
	"github.com/xuperchain/xengine/kernel/ledger"
)

const (
	// 处理成功类
	ErrStatusSucc = 200
	// 拒绝处理类错误状态, 只影响单个deploy
	ErrStatusRefused = 400
	// 内部错误类错误状态
	ErrStatusInternalErr = 500
)

type Error struct {
	// 用于统计和监控的错误分类（类似http的2xx、4xx、5xx）
	Status int
	// 用于标识具体错误的详细错误码
	Code int
	// 用于说明具体错误的说明信息
	Msg string

	cause error
}

func CastError(err error) *Error {
	return CastErrorDefault(err, ErrUnknown)
}

func CastErrorDefault(err error, defaultErr *Error) *Error {
	if err == nil {
		return nil
	}
	var defErr *Error
	if errors.As(err, &defErr) {
		return defErr
	}

	return defaultErr.Wrap(err)
}

func (t *Error) Error() string {
	return fmt.Sprintf("Err:%d-%d-%s", t.Status, t.Code, t.Msg)
}

func (t *Error) More(format string, args ...interface{}) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	return &Error{t.Status, t.Code, t.Msg + "+" + msg, t.cause}
}

// Wrap attach err as the cause, its message is kept verbatim
func (t *Error) Wrap(err error) *Error {
	if err == nil {
		return t
	}
	return &Error{t.Status, t.Code, t.Msg + "+" + err.Error(), err}
}

func (t *Error) Equal(rhs *Error) bool {
	if rhs == nil {
		return false
	}

	return t.Code == rhs.Code
}

// Is match errors of the same code
func (t *Error) Is(target error) bool {
	rhs, ok := target.(*Error)
	return ok && t.Equal(rhs)
}

func (t *Error) Unwrap() error {
	return t.cause
}

// IsRefused the failure is local to one deploy
func (t *Error) IsRefused() bool {
	return t.Status == ErrStatusRefused
}

// define std error
// 预留xxx9xx的错误码给上层业务扩展用，这里不要使用xxx9xx的错误码
var (
	ErrSuccess   = &Error{Status: ErrStatusSucc, Code: 0, Msg: "success"}
	ErrInternal  = &Error{Status: ErrStatusInternalErr, Code: 50000, Msg: "internal error"}
	ErrUnknown   = &Error{Status: ErrStatusInternalErr, Code: 50001, Msg: "unknown error"}
	ErrParameter = &Error{Status: ErrStatusRefused, Code: 40001, Msg: "param error"}

	// deploy
	ErrPreprocessing    = &Error{Status: ErrStatusRefused, Code: 40020, Msg: "preprocessing error"}
	ErrSignature        = &Error{Status: ErrStatusRefused, Code: 40021, Msg: "signature error"}
	ErrPermissionDenied = &Error{Status: ErrStatusRefused, Code: 40022, Msg: "permission denied"}
	ErrTypeMismatch     = &Error{Status: ErrStatusRefused, Code: 40023, Msg: "type mismatch"}
	ErrExecution        = &Error{Status: ErrStatusRefused, Code: 40024, Msg: "execution error"}
	ErrCommitQueueFull  = &Error{Status: ErrStatusRefused, Code: 40025, Msg: "commit queue full"}
	ErrGenesis          = &Error{Status: ErrStatusRefused, Code: 40026, Msg: "genesis error"}
	ErrQuery            = &Error{Status: ErrStatusRefused, Code: 40027, Msg: "query error"}

	// state
	ErrStorage      = &Error{Status: ErrStatusInternalErr, Code: 50020, Msg: "storage error"}
	ErrEngineClosed = &Error{Status: ErrStatusInternalErr, Code: 50021, Msg: "engine closed"}
)

// castExecError translate an execution or commit failure into the engine taxonomy
func castExecError(err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, xmodel.ErrStorage):
		return ErrStorage.Wrap(err)
	case errors.Is(err, ledger.ErrPermissionDenied), errors.Is(err, contract.ErrForgedReference):
		return ErrPermissionDenied.Wrap(err)
	case errors.Is(err, ledger.ErrTypeMismatch):
		return ErrTypeMismatch.Wrap(err)
	}
	return ErrExecution.Wrap(err)
}
