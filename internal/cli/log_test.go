package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/engine"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level   log.Level
		debug   bool
		wantLog bool
	}{
		{log.InfoLevel, false, true},
		{log.InfoLevel, true, false},
		{log.DebugLevel, true, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		l := newLogger(&buf, tt.level)
		if tt.debug {
			l.Debug("message")
		} else {
			l.Info("message")
		}
		if got := buf.Len() > 0; got != tt.wantLog {
			t.Errorf("level %s, debug %v: logged = %v, want %v", tt.level, tt.debug, got, tt.wantLog)
		}
	}
}

func TestSetLogFormat(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, log.InfoLevel)
	if err := c.setLogFormat("JSON"); err != nil {
		t.Fatalf("setLogFormat(JSON) error = %v", err)
	}
	c.Logger.Info("prepared", "nodes", 3)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line %q is not JSON: %v", buf.String(), err)
	}
	if line["msg"] != "prepared" || line["nodes"] != float64(3) {
		t.Errorf("log line = %v", line)
	}
	if err := c.setLogFormat("xml"); err == nil {
		t.Error("setLogFormat(xml) error = nil")
	}
}

func TestLogPrepared(t *testing.T) {
	e, err := engine.Load(context.Background(), writeDoc(t), engine.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	logPrepared(newLogger(&buf, log.InfoLevel), e, 12*time.Millisecond)

	out := buf.String()
	for _, want := range []string{"prepared", "nodes=3", "edges=2", "dropped=1", "elapsed=12ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary %q missing %s", out, want)
		}
	}
}

func TestLogIssues(t *testing.T) {
	var buf bytes.Buffer
	report := &graph.BuildReport{Issues: []graph.Issue{
		{Record: "link", Index: 3, ID: "l3", Err: errors.New(errors.ErrCodeDanglingEdge, "unknown target ghost")},
		{Record: "link", Index: 4, Err: errors.New(errors.ErrCodeUnknownAttribute, "unknown attribute x")},
	}}

	logIssues(newLogger(&buf, log.InfoLevel), report)
	out := buf.String()
	if !strings.Contains(out, "dropped: unknown target ghost") || !strings.Contains(out, "l3") {
		t.Errorf("dropped issue not logged: %q", out)
	}
	if strings.Contains(out, "unknown attribute") {
		t.Errorf("degraded issue logged above debug level: %q", out)
	}
}
