// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_WritesThroughZerolog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slogger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	slogger.Info("service started", "service", "http", "attempt", 2, "backoff", time.Second)

	output := buf.String()
	for _, want := range []string{"service started", `"service":"http"`, `"attempt":2`, `"level":"info"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		zlLevel   zerolog.Level
		slogLevel slog.Level
		want      bool
	}{
		{"debug logger enables debug", zerolog.DebugLevel, slog.LevelDebug, true},
		{"info logger disables debug", zerolog.InfoLevel, slog.LevelDebug, false},
		{"warn logger enables error", zerolog.WarnLevel, slog.LevelError, true},
		{"error logger disables warn", zerolog.ErrorLevel, slog.LevelWarn, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewSlogHandlerWithLogger(zerolog.New(nil).Level(tt.zlLevel))
			if got := h.Enabled(t.Context(), tt.slogLevel); got != tt.want {
				t.Errorf("Enabled(%v) = %v, want %v", tt.slogLevel, got, tt.want)
			}
		})
	}
}

func TestSlogHandler_GroupsAndAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slogger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf))).
		With("component", "events").
		WithGroup("msg")

	slogger.Warn("publish failed", "topic", "dataset.replaced")

	output := buf.String()
	if !strings.Contains(output, `"component":"events"`) {
		t.Errorf("expected pre-configured attr in output: %s", output)
	}
	if !strings.Contains(output, `"msg.topic":"dataset.replaced"`) {
		t.Errorf("expected grouped key in output: %s", output)
	}
	if !strings.Contains(output, `"level":"warn"`) {
		t.Errorf("expected warn level in output: %s", output)
	}
}

func TestSlogHandler_AttrsKeepGroupDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(*slog.Logger) *slog.Logger
		want  []string
		avoid []string
	}{
		{
			name: "attrs before group stay top level",
			build: func(l *slog.Logger) *slog.Logger {
				return l.With("component", "supervisor").WithGroup("event")
			},
			want:  []string{`"component":"supervisor"`, `"event.key":"v"`},
			avoid: []string{`"event.component"`},
		},
		{
			name: "attrs after group are qualified",
			build: func(l *slog.Logger) *slog.Logger {
				return l.WithGroup("event").With("service", "hub")
			},
			want: []string{`"event.service":"hub"`, `"event.key":"v"`},
		},
		{
			name: "attrs between nested groups",
			build: func(l *slog.Logger) *slog.Logger {
				return l.WithGroup("a").With("x", 1).WithGroup("b")
			},
			want:  []string{`"a.x":1`, `"a.b.key":"v"`},
			avoid: []string{`"a.b.x"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			logger := tt.build(slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf))))
			logger.Info("event", "key", "v")

			output := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(output, w) {
					t.Errorf("expected %s in output: %s", w, output)
				}
			}
			for _, a := range tt.avoid {
				if strings.Contains(output, a) {
					t.Errorf("unexpected %s in output: %s", a, output)
				}
			}
		})
	}
}

func TestSlogHandler_InlineGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf))).
		Info("inline", slog.Group("", slog.String("flat", "yes")))

	if output := buf.String(); !strings.Contains(output, `"flat":"yes"`) {
		t.Errorf("expected inline group attr at top level: %s", output)
	}
}
