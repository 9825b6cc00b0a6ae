package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_Valid(t *testing.T) {
	require.NoError(t, Default().Validate())
	assert.Equal(t, 16600*time.Microsecond, Default().Loop.FrameInterval)
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv(`UILOOP_DIAG_ADDR`, `127.0.0.1:9090`)
	path := writeFile(t, `uiloop.yaml`, `
log:
  level: debug
  backend: slog
  format: text
loop:
  join_timeout: 250ms
  work_concurrency: 2
input:
  click_threshold: 4.5
  key_table: android
diag:
  addr: ${UILOOP_DIAG_ADDR}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Log.Level = `debug`
	want.Log.Backend = `slog`
	want.Log.Format = `text`
	want.Loop.JoinTimeout = 250 * time.Millisecond
	want.Loop.WorkConcurrency = 2
	want.Input.ClickThreshold = 4.5
	want.Input.KeyTable = `android`
	want.Diag.Addr = `127.0.0.1:9090`
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, `uiloop.toml`, `
[loop]
idle_timeout = "2s"
frame_interval = "8ms"

[input]
device_scale = 2.0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Loop.IdleTimeout)
	assert.Equal(t, 8*time.Millisecond, cfg.Loop.FrameInterval)
	assert.Equal(t, 2.0, cfg.Input.DeviceScale)
	assert.Equal(t, `info`, cfg.Log.Level, "defaults are kept")
}

func TestLoad_Empty(t *testing.T) {
	cfg, err := Load(writeFile(t, `empty.yaml`, ``))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	for _, tc := range []struct {
		name, file, content, msg string
	}{
		{`unknown yaml key`, `a.yaml`, "loop:\n  speed: 3\n", `speed`},
		{`unknown toml key`, `a.toml`, "[loop]\nspeed = 3\n", `speed`},
		{`bad duration`, `a.yaml`, "loop:\n  join_timeout: soon\n", `soon`},
		{`extension`, `a.json`, `{}`, `unsupported`},
		{`invalid`, `a.yaml`, "log:\n  level: loud\ninput:\n  device_scale: -1\n", `device_scale`},
		{`undefined env`, `a.yaml`, "diag:\n  addr: ${UILOOP_UNSET_FOR_TEST}\n", `diag.addr`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.file, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), `missing.yaml`))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_All(t *testing.T) {
	cfg := Default()
	cfg.Log.Backend = `stumpy`
	cfg.Log.Format = `text`
	cfg.Loop.JoinTimeout = 0
	cfg.Loop.FrameInterval = -1
	cfg.Loop.WorkConcurrency = 0
	cfg.Input.ClickThreshold = -1
	cfg.Input.KeyTable = `amiga`
	cfg.Diag.Addr = `nope`

	err := cfg.Validate()
	require.Error(t, err)
	for _, s := range []string{
		`log.backend`, `loop.join_timeout`, `loop.frame_interval`, `loop.work_concurrency`,
		`input.click_threshold`, `input.key_table`, `diag.addr`,
	} {
		assert.Contains(t, err.Error(), s)
	}
}
