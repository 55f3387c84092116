package logx

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithComponentTagsRecords(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	logger := WithComponent(base, "cache")
	logger.Info("hello")

	out := buf.String()
	assert.Contains(t, out, "component=cache")
	assert.Contains(t, out, "msg=hello")
}

func TestWithComponentNilLoggerFallsBack(t *testing.T) {
	logger := WithComponent(nil, "openml")
	require.NotNil(t, logger)
}
