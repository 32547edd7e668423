package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/glaze/internal/adapters/logger"
)

func TestPrettyHandler_Levels(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		goldenName string
	}{
		{name: "info", level: slog.LevelInfo, goldenName: "handler_info"},
		{name: "warn", level: slog.LevelWarn, goldenName: "handler_warn"},
		{name: "error", level: slog.LevelError, goldenName: "handler_error"},
		{name: "debug filtered", level: slog.LevelDebug, goldenName: "handler_debug_filtered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
			lg.Log(t.Context(), tt.level, "stylesheet compiled")

			g := goldie.New(t)
			g.Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_Attrs(t *testing.T) {
	tests := []struct {
		name  string
		build func(h slog.Handler) *slog.Logger
		log   func(lg *slog.Logger)
		want  string
	}{
		{
			name:  "record attrs",
			build: slog.New,
			log:   func(lg *slog.Logger) { lg.Info("wrote", "path", "static/css/app.min.css", "bytes", 42) },
			want:  "wrote path=static/css/app.min.css bytes=42\n",
		},
		{
			name: "handler attrs",
			build: func(h slog.Handler) *slog.Logger {
				return slog.New(h.WithAttrs([]slog.Attr{slog.String("task", "css")}))
			},
			log:  func(lg *slog.Logger) { lg.Info("done") },
			want: "done task=css\n",
		},
		{
			name: "nested groups",
			build: func(h slog.Handler) *slog.Logger {
				return slog.New(h.WithGroup("watch").WithGroup("event"))
			},
			log:  func(lg *slog.Logger) { lg.Info("changed", "op", "write") },
			want: "changed watch.event.op=write\n",
		},
		{
			name: "group attr",
			build: slog.New,
			log: func(lg *slog.Logger) {
				lg.Info("reload", slog.Group("client", slog.Int("count", 2)))
			},
			want: "reload client.count=2\n",
		},
		{
			name: "empty group name",
			build: func(h slog.Handler) *slog.Logger {
				return slog.New(h.WithGroup(""))
			},
			log:  func(lg *slog.Logger) { lg.Info("plain", "k", "v") },
			want: "plain k=v\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "1")

			buf := &bytes.Buffer{}
			tt.log(tt.build(logger.NewPrettyHandler(buf, nil)))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := logger.NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, h.Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError))
}
