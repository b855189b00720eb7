package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"duck-sheets/internal/config"
)

func TestCurlHostForListenAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		listenAddr string
		want       string
	}{
		{name: "default port only", listenAddr: ":8080", want: "localhost:8080"},
		{name: "loopback", listenAddr: "127.0.0.1:9000", want: "127.0.0.1:9000"},
		{name: "wildcard ipv4", listenAddr: "0.0.0.0:8080", want: "localhost:8080"},
		{name: "wildcard ipv6", listenAddr: "[::]:8080", want: "localhost:8080"},
		{name: "ipv6 loopback keeps brackets", listenAddr: "[::1]:8080", want: "[::1]:8080"},
		{name: "surrounding whitespace", listenAddr: "  :7070 ", want: "localhost:7070"},
		{name: "empty uses default", listenAddr: "", want: "localhost:8080"},
		{name: "no port passes through", listenAddr: "sheets.internal", want: "sheets.internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, curlHostForListenAddr(tt.listenAddr))
		})
	}
}

func TestNewLogger_HonorsLevelAndFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      config.Config
		wantText bool
		enabled  slog.Level
		disabled slog.Level
	}{
		{name: "json info", cfg: config.Config{LogLevel: "info", LogFormat: "json"}, enabled: slog.LevelInfo, disabled: slog.LevelDebug},
		{name: "text debug", cfg: config.Config{LogLevel: "debug", LogFormat: "text"}, wantText: true, enabled: slog.LevelDebug, disabled: slog.LevelDebug - 4},
		{name: "json error", cfg: config.Config{LogLevel: "error", LogFormat: "json"}, enabled: slog.LevelError, disabled: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger := newLogger(&tt.cfg)

			_, isText := logger.Handler().(*slog.TextHandler)
			assert.Equal(t, tt.wantText, isText)
			assert.True(t, logger.Enabled(context.Background(), tt.enabled))
			assert.False(t, logger.Enabled(context.Background(), tt.disabled))
		})
	}
}
