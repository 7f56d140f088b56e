package utils

import (
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	logIdSeq  uint64
	logIdBase = strconv.FormatInt(time.Now().UnixNano()%1e9, 36)
)

// FileIsExist reports whether the named file or directory exists.
func FileIsExist(name string) bool {
	_, err := os.Stat(name)
	return err == nil || !os.IsNotExist(err)
}

// GenLogId unique within the process: start time, pid and a sequence number
func GenLogId() string {
	seq := atomic.AddUint64(&logIdSeq, 1)
	return logIdBase + "_" + strconv.Itoa(os.Getpid()) + "_" + strconv.FormatUint(seq, 10)
}

// GetFuncCall file:line and function name of the caller callDepth frames up
func GetFuncCall(callDepth int) (string, string) {
	pc, file, line, ok := runtime.Caller(callDepth)
	if !ok {
		return "???:0", "???"
	}

	_, function := path.Split(runtime.FuncForPC(pc).Name())
	return path.Base(file) + ":" + strconv.Itoa(line), function
}

// GetCurExecDir return the directory of the running binary
func GetCurExecDir() string {
	curDir, _ := filepath.Abs(filepath.Dir(os.Args[0]))
	return curDir
}
