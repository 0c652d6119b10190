package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInit_JSONFormat(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	old := Log
	defer func() { Log = old }()

	var buf bytes.Buffer
	Init("warn", "text", &buf)
	if Log.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected env level debug, got %v", Log.GetLevel())
	}
	Log.WithFields(logrus.Fields{"board": "b1"}).Debug("entered")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if entry["board"] != "b1" || entry["msg"] != "entered" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("LOG_FORMAT", "text")
	old := Log
	defer func() { Log = old }()

	var buf bytes.Buffer
	Init("", "", &buf)
	if Log.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected info, got %v", Log.GetLevel())
	}
	Log.Debug("hidden")
	Log.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
