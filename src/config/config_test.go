package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestDefaultConfig(t *testing.T) {
	conf := NewDefaultConfig()

	if conf.LogLevel != DefaultLogLevel {
		t.Fatalf("LogLevel should be %s, not %s", DefaultLogLevel, conf.LogLevel)
	}
	if conf.IDStrategy != DefaultIDStrategy {
		t.Fatalf("IDStrategy should be %s, not %s", DefaultIDStrategy, conf.IDStrategy)
	}
	if conf.DataDir != DefaultDataDir() {
		t.Fatalf("DataDir should be %s, not %s", DefaultDataDir(), conf.DataDir)
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"bogus": logrus.InfoLevel,
		"":      logrus.InfoLevel,
	}

	for s, l := range cases {
		if LogLevel(s) != l {
			t.Fatalf("LogLevel(%q) should be %v, not %v", s, l, LogLevel(s))
		}
	}
}

func TestLoggerPrefix(t *testing.T) {
	conf := NewTestConfig(t, logrus.DebugLevel)

	entry := conf.Logger()
	if entry.Data["prefix"] != "node" {
		t.Fatalf("prefix should be node, not %v", entry.Data["prefix"])
	}
	if entry.Logger != conf.Logger().Logger {
		t.Fatal("Logger should always return entries of the same logger")
	}
}

func TestLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")

	conf := NewDefaultConfig()
	conf.LogLevel = "debug"
	conf.LogFile = path

	conf.Logger().WithField("node_id", "n1").Debug("Init")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"node_id":"n1"`) {
		t.Fatalf("log file should contain the entry, not %q", data)
	}
}
