package logs

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

type record struct {
	lvl string
	msg string
	ctx []interface{}
}

type memDriver struct {
	mu      sync.Mutex
	records []record
}

func (m *memDriver) add(lvl, msg string, ctx []interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record{lvl, msg, ctx})
}

func (m *memDriver) Error(msg string, ctx ...interface{}) { m.add("error", msg, ctx) }
func (m *memDriver) Warn(msg string, ctx ...interface{})  { m.add("warn", msg, ctx) }
func (m *memDriver) Info(msg string, ctx ...interface{})  { m.add("info", msg, ctx) }
func (m *memDriver) Trace(msg string, ctx ...interface{}) { m.add("trace", msg, ctx) }
func (m *memDriver) Debug(msg string, ctx ...interface{}) { m.add("debug", msg, ctx) }

func fieldOf(ctx []interface{}, key string) (interface{}, bool) {
	for i := 0; i+1 < len(ctx); i += 2 {
		if fmt.Sprintf("%v", ctx[i]) == key {
			return ctx[i+1], true
		}
	}
	return nil, false
}

func TestLogFitterFields(t *testing.T) {
	drv := &memDriver{}
	log, err := NewLogFitter(drv, "", "chain", "xuper")
	if err != nil {
		t.Fatalf("new logger fail.err:%v", err)
	}

	wg := &sync.WaitGroup{}
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(num int) {
			defer wg.Done()
			child := log.With("deploy", num)
			child.Info("executed", "a", 1, "num", num)
			child.Debug("test", "a", 1)
		}(i)
	}
	wg.Wait()

	log.Info("parent")
	log.Warn("odd ctx", 1)
	log.Debug("msg", "log_id", "123456---111111")

	n := len(drv.records)
	if n != 3*2+3 {
		t.Fatalf("unexpected records count %d", n)
	}
	for _, r := range drv.records[:6] {
		if _, ok := fieldOf(r.ctx, "deploy"); !ok {
			t.Errorf("child field missing in %s", r.msg)
		}
		if v, _ := fieldOf(r.ctx, "chain"); v != "xuper" {
			t.Errorf("parent field missing, got %v", v)
		}
	}

	parent := drv.records[n-3]
	if _, ok := fieldOf(parent.ctx, "deploy"); ok {
		t.Errorf("child fields should not leak into parent")
	}
	if v, _ := fieldOf(parent.ctx, CommFieldCall); v == nil || !strings.HasPrefix(v.(string), "log_fitter_test.go:") {
		t.Errorf("call should point at the caller, got %v", v)
	}
	warn := drv.records[n-2]
	if v, _ := fieldOf(warn.ctx, "unknow"); v != 1 {
		t.Errorf("odd ctx should be padded, got %v", v)
	}
	debug := drv.records[n-1]
	if v, _ := fieldOf(debug.ctx, CommFieldLogId); v != "123456---111111" {
		t.Errorf("log id should be replaced, got %v", v)
	}
}

func TestNewLoggerWithoutInit(t *testing.T) {
	lg, err := NewLogger("", "sandbox")
	if err != nil {
		t.Fatal(err)
	}
	lg.Info("discarded", "k", "v")
	if lg.GetLogId() == "" {
		t.Errorf("log id should be generated")
	}
}
