package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/engine"
	"github.com/matzehuels/lineage/pkg/graph"
)

// logFormats are the values accepted by --log-format.
var logFormats = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func (c *CLI) setLogFormat(name string) error {
	f, ok := logFormats[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown log format %q (want text, json or logfmt)", name)
	}
	c.Logger.SetFormatter(f)
	return nil
}

// logPrepared writes one summary line for a freshly prepared engine. The
// layout fields are only added when they say something unusual.
func logPrepared(l *log.Logger, e *engine.Engine, elapsed time.Duration) {
	kv := []any{
		"nodes", e.Graph().NodeCount(),
		"edges", e.Graph().EdgeCount(),
		"elapsed", elapsed.Round(time.Millisecond),
	}
	if d := e.Report().Dropped(); d > 0 {
		kv = append(kv, "dropped", d)
	}
	if res := e.LayoutResult(); res != nil && !res.Converged {
		kv = append(kv, "converged", false, "rounds", res.Rounds)
	}
	l.Info("prepared", kv...)
}

// logIssues reports every record the builder dropped (warn) or degraded
// (debug).
func logIssues(l *log.Logger, report *graph.BuildReport) {
	for _, is := range report.Issues {
		kv := []any{"record", is.Record, "index", is.Index, "code", is.Err.Code}
		if is.ID != "" {
			kv = append(kv, "id", is.ID)
		}
		if is.Dropped() {
			l.Warn("dropped: "+is.Err.Message, kv...)
		} else {
			l.Debug(is.Err.Message, kv...)
		}
	}
}
