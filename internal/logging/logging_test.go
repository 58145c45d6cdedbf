package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(Options{Writer: &buf})

	log.Info("domain started", "domain", "web")
	log.V(1).Info("running command", "command", "virsh start web")

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record))
	assert.Equal(t, "domain started", record["msg"])
	assert.Equal(t, "web", record["domain"])
	assert.NotContains(t, buf.String(), "running command")
}

func TestSetup_VerboseText(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(Options{Development: true, Level: LevelVerbose, Writer: &buf})

	log.V(1).Info("running command", "command", "virsh list --all")

	assert.Contains(t, buf.String(), `msg="running command"`)
	assert.Contains(t, buf.String(), `command="virsh list --all"`)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.False(t, opts.Development)
	assert.Equal(t, slog.LevelInfo, opts.Level)
}
