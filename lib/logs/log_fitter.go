package logs

import (
	"fmt"
	"os"

	"github.com/xuperchain/xengine/lib/utils"
)

// Reserve common key
const (
	CommFieldLogId  = "log_id"
	CommFieldSubMod = "s_mod"
	CommFieldPid    = "pid"
	CommFieldCall   = "call"
)

const (
	DefaultCallDepth = 3
)

// 底层日志库约束接口
type LogDriver interface {
	Error(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
}

// 在日志库之上做一层轻量级封装，方便日志字段组装和日志库替换
type Logger interface {
	GetLogId() string
	// With returns a child logger, ctx is attached to every record of the child
	With(ctx ...interface{}) Logger
	Error(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
}

// LogFitter attaches log id, caller and bound fields to every record.
// A LogFitter never changes after creation, children copy the fields.
type LogFitter struct {
	driver    LogDriver
	logId     string
	pid       int
	fields    []interface{}
	callDepth int
}

func NewLogFitter(driver LogDriver, logId string, ctx ...interface{}) (*LogFitter, error) {
	if driver == nil {
		return nil, fmt.Errorf("new logger param error")
	}
	if logId == "" {
		logId = utils.GenLogId()
	}

	return &LogFitter{
		driver:    driver,
		logId:     logId,
		pid:       os.Getpid(),
		fields:    normalizeCtx(ctx),
		callDepth: DefaultCallDepth,
	}, nil
}

func (t *LogFitter) GetLogId() string {
	return t.logId
}

func (t *LogFitter) With(ctx ...interface{}) Logger {
	if len(ctx) == 0 {
		return t
	}
	child := *t
	child.fields = make([]interface{}, 0, len(t.fields)+len(ctx)+1)
	child.fields = append(child.fields, t.fields...)
	child.fields = append(child.fields, normalizeCtx(ctx)...)
	return &child
}

func (t *LogFitter) Error(msg string, ctx ...interface{}) {
	t.driver.Error(msg, t.fmtCtx(ctx)...)
}

func (t *LogFitter) Warn(msg string, ctx ...interface{}) {
	t.driver.Warn(msg, t.fmtCtx(ctx)...)
}

func (t *LogFitter) Info(msg string, ctx ...interface{}) {
	t.driver.Info(msg, t.fmtCtx(ctx)...)
}

func (t *LogFitter) Trace(msg string, ctx ...interface{}) {
	t.driver.Trace(msg, t.fmtCtx(ctx)...)
}

func (t *LogFitter) Debug(msg string, ctx ...interface{}) {
	t.driver.Debug(msg, t.fmtCtx(ctx)...)
}

func normalizeCtx(ctx []interface{}) []interface{} {
	if len(ctx)%2 != 0 {
		last := ctx[len(ctx)-1]
		ctx = append(ctx[:len(ctx)-1:len(ctx)-1], "unknow", last)
	}
	return ctx
}

// fmtCtx log_id, call, pid, bound fields, then ctx.
// A leading log_id pair in ctx replaces the logger's id for one record.
func (t *LogFitter) fmtCtx(ctx []interface{}) []interface{} {
	ctx = normalizeCtx(ctx)
	logId := interface{}(t.logId)
	if len(ctx) > 1 && fmt.Sprintf("%v", ctx[0]) == CommFieldLogId {
		logId = ctx[1]
		ctx = ctx[2:]
	}

	fileLine, _ := utils.GetFuncCall(t.callDepth)
	out := make([]interface{}, 0, 6+len(t.fields)+len(ctx))
	out = append(out, CommFieldLogId, logId, CommFieldCall, fileLine, CommFieldPid, t.pid)
	out = append(out, t.fields...)
	return append(out, ctx...)
}
