package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureProduction(t *testing.T) *bytes.Buffer {
	t.Helper()

	Configure("production", "debug")
	buf := &bytes.Buffer{}
	SetOutput(buf)

	t.Cleanup(func() { Configure("", "") })
	return buf
}

func TestInfo_WritesKeyValueFields(t *testing.T) {
	buf := captureProduction(t)

	Info("usage loaded", "account_id", "acct-1", "count", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "usage loaded", line["message"])
	assert.Equal(t, "acct-1", line["account_id"])
	assert.EqualValues(t, 3, line["count"])
}

func TestErrorErr_AttachesError(t *testing.T) {
	buf := captureProduction(t)

	ErrorErr(errors.New("connection refused"), "store unavailable", "store", "redis")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "connection refused", line["error"])
	assert.Equal(t, "redis", line["store"])
}

func TestConfigure_ProductionDefaultsToInfo(t *testing.T) {
	Configure("production", "")
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(func() { Configure("", "") })

	Debug("hidden")
	assert.Empty(t, buf.String())

	Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))

	scoped := With("request_id", "req-1")
	ctx := WithContext(context.Background(), scoped)

	assert.Same(t, scoped, FromContext(ctx))
}
