package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/barrace/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Rendered 3 frames")

	out := buf.String()
	if !strings.Contains(out, "Rendered 3 frames (") || !strings.Contains(out, "s)") {
		t.Errorf("progress.done() output = %q, want message with elapsed time", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext without logger should return log.Default()")
	}

	custom := newLogger(io.Discard, log.InfoLevel)
	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestPreRun(t *testing.T) {
	t.Cleanup(observability.Reset)

	tests := []struct {
		name      string
		verbose   bool
		wantLevel log.Level
	}{
		{"default", false, log.InfoLevel},
		{"verbose", true, log.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observability.Reset()
			c := New(io.Discard, LogInfo)
			c.verbose = tt.verbose

			cmd := &cobra.Command{}
			cmd.SetContext(context.Background())
			if err := c.preRun(cmd, nil); err != nil {
				t.Fatal(err)
			}
			if got := c.Logger.GetLevel(); got != tt.wantLevel {
				t.Errorf("level = %v, want %v", got, tt.wantLevel)
			}
			if loggerFromContext(cmd.Context()) != c.Logger {
				t.Error("preRun did not attach the CLI logger to the context")
			}
			_, hooked := observability.Cache().(*observability.LogHooks)
			if hooked != tt.verbose {
				t.Errorf("log hooks registered = %v, want %v", hooked, tt.verbose)
			}
		})
	}
}
