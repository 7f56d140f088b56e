package logs

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLogConf(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "xengine-log")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	cfgFile := filepath.Join(tmpdir, "log.yaml")
	content := []byte("module: engine\nlevel: info\nfmt: json\nconsole: false\n")
	if err := ioutil.WriteFile(cfgFile, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLogConf(cfgFile)
	if err != nil {
		t.Fatalf("load log config failed.err:%v", err)
	}
	if cfg.Module != "engine" || cfg.Level != "info" || cfg.Fmt != "json" || cfg.Console {
		t.Errorf("unexpected config %+v", cfg)
	}
	// 未配置的字段保持默认值
	if cfg.Filename != "xengine" {
		t.Errorf("default filename lost, got %s", cfg.Filename)
	}

	if _, err := LoadLogConf(filepath.Join(tmpdir, "missing.yaml")); err == nil {
		t.Errorf("missing file should fail")
	}

	badFile := filepath.Join(tmpdir, "bad.yaml")
	if err := ioutil.WriteFile(badFile, []byte("fmt: xml\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLogConf(badFile); err == nil {
		t.Errorf("unsupported fmt should fail")
	}
}

func TestOpenLog(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "xengine-log")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	conf := GetDefLogConf()
	conf.Console = false
	conf.RotateInterval = 0
	drv, err := OpenLog(conf, tmpdir)
	if err != nil {
		t.Fatal(err)
	}
	lg, err := NewLogFitter(drv, "test")
	if err != nil {
		t.Fatal(err)
	}
	lg.Info("test logging", "key1", "k1")
	lg.Warn("test warn", "key2", "k2")

	if !fileExist(filepath.Join(tmpdir, "xengine.log")) {
		t.Errorf("log file not created")
	}
	if !fileExist(filepath.Join(tmpdir, "xengine.log.wf")) {
		t.Errorf("wf log file not created")
	}

	conf.Level = "nolevel"
	if _, err := OpenLog(conf, tmpdir); err == nil {
		t.Errorf("bad level should fail")
	}
}

func fileExist(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func BenchmarkLogging(b *testing.B) {
	tmpdir, err := ioutil.TempDir("", "xengine-log")
	if err != nil {
		b.Fatal(err)
	}
	defer os.RemoveAll(tmpdir)

	conf := GetDefLogConf()
	conf.Console = false
	drv, err := OpenLog(conf, tmpdir)
	if err != nil {
		b.Fatal(err)
	}
	SetLogDriver(drv)
	defer SetLogDriver(nil)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l, _ := NewLogger("", "test")
			l.Info("test logging benchmark", "key1", "k1", "key2", "k2")
		}
	})
}
