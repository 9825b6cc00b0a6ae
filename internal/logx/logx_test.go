package logx

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]logiface.Level{
		`debug`:    logiface.LevelDebug,
		`WARN`:     logiface.LevelWarning,
		`warning`:  logiface.LevelWarning,
		`err`:      logiface.LevelError,
		` error `:  logiface.LevelError,
		``:         logiface.LevelInformational,
		`off`:      logiface.LevelDisabled,
		`trace`:    logiface.LevelTrace,
		`critical`: logiface.LevelCritical,
	} {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("%q: %v", in, err)
		} else if got != want {
			t.Errorf("%q: expected %s, got %s", in, want, got)
		}
	}
	if _, err := ParseLevel(`loud`); err == nil {
		t.Error("expected error")
	}
}

func TestCheckBackend(t *testing.T) {
	assert.NoError(t, CheckBackend(``, ``))
	assert.NoError(t, CheckBackend(BackendStumpy, FormatJSON))
	assert.Error(t, CheckBackend(BackendStumpy, FormatText))
	assert.NoError(t, CheckBackend(BackendSlog, FormatText))
	assert.NoError(t, CheckBackend(BackendLogrus, ``))
	assert.Error(t, CheckBackend(BackendLogrus, `xml`))
	assert.Error(t, CheckBackend(`zap`, ``))
}

func TestNew_Backends(t *testing.T) {
	for _, tc := range []struct {
		backend, format string
		json            bool
	}{
		{BackendStumpy, ``, true},
		{BackendSlog, FormatJSON, true},
		{BackendSlog, FormatText, false},
		{BackendLogrus, FormatJSON, true},
		{BackendLogrus, FormatText, false},
	} {
		t.Run(tc.backend+"/"+tc.format, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(Options{Writer: &buf, Level: `info`, Backend: tc.backend, Format: tc.format})
			require.NoError(t, err)

			logger.Debug().Log(`hidden`)
			logger.Info().Str(`loop`, `main`).Log(`visible`)

			out := buf.String()
			assert.NotContains(t, out, `hidden`)
			assert.Contains(t, out, `visible`)
			assert.Contains(t, out, `main`)
			if tc.json {
				var m map[string]any
				require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &m), out)
				assert.Equal(t, `main`, m[`loop`])
			}
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Options{Level: `nope`})
	assert.Error(t, err)
	_, err = New(Options{Backend: `nope`})
	assert.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	w, closer, err := OpenFile(``)
	require.NoError(t, err)
	assert.Same(t, os.Stderr, w)
	assert.NoError(t, closer())

	path := filepath.Join(t.TempDir(), `uiloop.log`)
	w, closer, err = OpenFile(path)
	require.NoError(t, err)
	logger, err := New(Options{Writer: w})
	require.NoError(t, err)
	logger.Info().Log(`to file`)
	require.NoError(t, closer())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `to file`)

	_, _, err = OpenFile(filepath.Join(t.TempDir(), `missing`, `x.log`))
	assert.Error(t, err)
}
