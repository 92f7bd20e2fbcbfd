package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func requestID(ctx context.Context) (slog.Attr, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	if !ok {
		return slog.Attr{}, false
	}
	return slog.String("request_id", id), true
}

func TestNewAddsContextAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, flush := newLogger(&buf, Config{Level: "info", Format: "json"}, requestID, nil)
	defer flush()

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.With(slog.String("component", "test")).InfoContext(ctx, "hello", slog.Int("n", 1))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "test", rec["component"])
	assert.EqualValues(t, 1, rec["n"])
}

func TestNewRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, _ := newLogger(&buf, Config{Level: "warn"})

	log.Info("dropped")
	assert.Zero(t, buf.Len())
	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewTextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, _ := newLogger(&buf, Config{Format: "text"})
	log.Info("plain", slog.String("k", "v"))
	assert.Contains(t, buf.String(), "msg=plain k=v")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestFanoutHonoursEachLevel(t *testing.T) {
	t.Parallel()

	var all, errs bytes.Buffer
	h := fanout{
		slog.NewJSONHandler(&all, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	log := slog.New(h)

	log.Info("info")
	log.Error("error")

	assert.Equal(t, 2, bytes.Count(all.Bytes(), []byte("\n")))
	assert.Equal(t, 1, bytes.Count(errs.Bytes(), []byte("\n")))
}
