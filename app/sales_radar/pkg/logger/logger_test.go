package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestCustomFormatter_Format(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "OData 返回非 200",
		Data:    logrus.Fields{"status": 503, "entity": "SalesOrderLines"},
	}

	out, err := (&CustomFormatter{}).Format(entry)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "[2024-03-01 08:30:00] [WARN] [] OData 返回非 200 entity=SalesOrderLines status=503\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}
}

func TestInitLogger_FallsBackToInfo(t *testing.T) {
	if err := InitLogger("not-a-level", ""); err != nil {
		t.Fatalf("InitLogger() error = %v", err)
	}
	if Log.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %v, want info", Log.GetLevel())
	}
	if _, ok := Log.Formatter.(*CustomFormatter); !ok {
		t.Errorf("formatter = %T, want *CustomFormatter", Log.Formatter)
	}
}

func TestInitLogger_CreatesDirectoryAndWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "revenue.log")
	if err := InitLogger("debug", path); err != nil {
		t.Fatalf("InitLogger() error = %v", err)
	}
	t.Cleanup(func() { Log = newDefault() })

	Log.Debug("写入日志文件")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "[DEBU] [logger_test.go:") || !strings.Contains(string(data), "写入日志文件") {
		t.Errorf("log file = %q", data)
	}
}
