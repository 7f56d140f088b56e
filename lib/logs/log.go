package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/xuperchain/log15"
)

var (
	logHandle LogDriver
	logMu     sync.RWMutex
)

// OpenLog create and open log stream using LogConf
func OpenLog(lc *LogConf, logDir string) (LogDriver, error) {
	if lc == nil {
		return nil, fmt.Errorf("log config is nil")
	}

	lfmt := log.LogfmtFormat()
	switch lc.Fmt {
	case "json":
		lfmt = log.JsonFormat()
	}

	xlog := log.New("module", lc.Module)
	lvLevel, err := log.LvlFromString(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log level error.err:%v", err)
	}
	// set lowest level as level limit, this may improve performance
	xlog.SetLevelLimit(lvLevel)

	handlers := make([]log.Handler, 0, 3)
	if lc.Console {
		handlers = append(handlers, log.StreamHandler(os.Stderr, lfmt))
	}
	if lc.File {
		if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("create log dir failed.dir:%s,err:%v", logDir, err)
		}
		infoFile := filepath.Join(logDir, lc.Filename+".log")
		wfFile := filepath.Join(logDir, lc.Filename+".log.wf")

		// RotateFileHandler only valid if `RotateInterval` and `RotateBackups` greater than 0
		var nmHandler, wfHandler log.Handler
		if lc.RotateInterval > 0 && lc.RotateBackups > 0 {
			nmHandler = log.Must.RotateFileHandler(infoFile, lfmt, lc.RotateInterval, lc.RotateBackups)
			wfHandler = log.Must.RotateFileHandler(wfFile, lfmt, lc.RotateInterval, lc.RotateBackups)
		} else {
			nmHandler = log.Must.FileHandler(infoFile, lfmt)
			wfHandler = log.Must.FileHandler(wfFile, lfmt)
		}
		if lc.Async {
			nmHandler = log.BufferedHandler(lc.BufSize, nmHandler)
			wfHandler = log.BufferedHandler(lc.BufSize, wfHandler)
		}

		// prints log level between `lvLevel` to Info to common log
		handlers = append(handlers, log.BoundLvlFilterHandler(lvLevel, log.LvlError, nmHandler))
		// prints log level greater or equal to Warn to wf log
		handlers = append(handlers, log.LvlFilterHandler(log.LvlWarn, wfHandler))
	}

	if len(handlers) == 0 {
		xlog.SetHandler(log.DiscardHandler())
		return xlog, nil
	}
	xlog.SetHandler(log.SyncHandler(log.MultiHandler(handlers...)))
	return xlog, nil
}

// InitLog 初始化进程级日志句柄，配置文件不存在时使用默认配置
func InitLog(cfgFile, logDir string) error {
	lc, err := LoadLogConf(cfgFile)
	if err != nil {
		lc = GetDefLogConf()
	}

	lg, err := OpenLog(lc, logDir)
	if err != nil {
		return err
	}

	logMu.Lock()
	logHandle = lg
	logMu.Unlock()
	return nil
}

// SetLogDriver replace the process log driver, mainly for unit test.
func SetLogDriver(driver LogDriver) {
	logMu.Lock()
	logHandle = driver
	logMu.Unlock()
}

func getLogDriver() LogDriver {
	logMu.RLock()
	defer logMu.RUnlock()

	if logHandle != nil {
		return logHandle
	}
	return discardDriver
}

var discardDriver = newDiscardDriver()

func newDiscardDriver() LogDriver {
	xlog := log.New()
	xlog.SetHandler(log.DiscardHandler())
	return xlog
}

// NewLogger create a log fitter bound to the process log driver.
// Before InitLog is called all output is discarded.
func NewLogger(logId, subMod string) (Logger, error) {
	var ctx []interface{}
	if subMod != "" {
		ctx = append(ctx, CommFieldSubMod, subMod)
	}
	return NewLogFitter(getLogDriver(), logId, ctx...)
}

// NewDiscardLogger return a logger that drops every record
func NewDiscardLogger() Logger {
	lf, _ := NewLogFitter(discardDriver, "")
	return lf
}
