package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestGetPgxTraceLogLevel(t *testing.T) {
	t.Parallel()

	if got := GetPgxTraceLogLevel(zerolog.DebugLevel); got != tracelog.LogLevelDebug {
		t.Fatalf("expected debug, got %v", got)
	}
	if got := GetPgxTraceLogLevel(zerolog.Disabled); got != tracelog.LogLevelNone {
		t.Fatalf("expected none, got %v", got)
	}
}

func TestWithTraceContextWithoutTransaction(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := zerolog.New(&buf)

	traced := WithTraceContext(base, nil)
	traced.Info().Msg("hello")
	if strings.Contains(buf.String(), "trace.id") {
		t.Fatalf("expected no trace fields without a transaction, got %s", buf.String())
	}
}

func TestGormLoggerReportsSlowQueries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewGormLogger(zerolog.New(&buf).Level(zerolog.InfoLevel), 10*time.Millisecond)

	l.Trace(context.Background(), time.Now().Add(-50*time.Millisecond), func() (string, int64) {
		return "SELECT * FROM pages", 1
	}, nil)

	out := buf.String()
	if !strings.Contains(out, "slow query") || !strings.Contains(out, "SELECT * FROM pages") {
		t.Fatalf("expected slow query warning, got %s", out)
	}
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewGormLogger(zerolog.New(&buf).Level(zerolog.InfoLevel), 0)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM pages WHERE id = 1", 0
	}, gorm.ErrRecordNotFound)

	if buf.Len() != 0 {
		t.Fatalf("expected record-not-found to stay quiet at info level, got %s", buf.String())
	}

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "INSERT INTO pages", 0
	}, errors.New("boom"))

	if !strings.Contains(buf.String(), "query failed") {
		t.Fatalf("expected failure to be logged, got %s", buf.String())
	}
}

func TestGormLoggerUsesRequestLogger(t *testing.T) {
	t.Parallel()

	var base, scoped bytes.Buffer
	l := NewGormLogger(zerolog.New(&base).Level(zerolog.InfoLevel), time.Millisecond)

	reqLogger := zerolog.New(&scoped).With().Str("request_id", "req-1").Logger()
	ctx := reqLogger.WithContext(context.Background())

	l.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	if base.Len() != 0 {
		t.Fatalf("expected base logger to stay unused, got %s", base.String())
	}
	if !strings.Contains(scoped.String(), "req-1") {
		t.Fatalf("expected request logger fields, got %s", scoped.String())
	}
}
