package heuristic

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadJSON(t *testing.T) {
	p := writeConfig(t, "monotonic.json", `{"pattern": "monotonic", "params": {"direction": 1, "reward": 2}}`)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "monotonic", cfg.Pattern)
	assert.Equal(t, 2.0, cfg.Params["reward"])
}

func TestLoadYAML(t *testing.T) {
	p := writeConfig(t, "arp.yaml", "pattern: arpeggio\nparams:\n  reward: 1.5\nintervals: [3, 4, 5]\n")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "arpeggio", cfg.Pattern)
	assert.Equal(t, []int{3, 4, 5}, cfg.Intervals)
}

func TestLoadUnknownExtensionFallsBack(t *testing.T) {
	p := writeConfig(t, "pattern.conf", `{"pattern": "zigzag", "params": {}}`)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "zigzag", cfg.Pattern)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"missing pattern", "a.json", `{"params": {"reward": 1}}`},
		{"missing params", "b.json", `{"pattern": "monotonic"}`},
		{"unknown pattern", "c.json", `{"pattern": "bebop", "params": {}}`},
		{"unknown param", "d.json", `{"pattern": "monotonic", "params": {"swing": 1}}`},
		{"bad direction", "e.json", `{"pattern": "monotonic", "params": {"direction": 0}}`},
		{"unknown field", "f.json", `{"pattern": "monotonic", "params": {}, "tempo": 120}`},
		{"interval out of range", "g.yaml", "pattern: arpeggio\nparams: {}\nintervals: [13]\n"},
		{"scale degree out of range", "h.yaml", "pattern: scale\nparams: {}\nscale: [0, 12]\n"},
		{"not a document", "i.json", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.body))
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.NotEmpty(t, cfgErr.Path)
		})
	}
}

func TestBuiltinsResolve(t *testing.T) {
	names := Builtins()
	require.Contains(t, names, "monotonic")
	require.Contains(t, names, "descending")

	for _, name := range names {
		h, err := FromRef(BuiltinPrefix + name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, h.Pattern())
	}
}

func TestResolveUnknownBuiltin(t *testing.T) {
	_, err := Resolve(BuiltinPrefix + "nope")

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestResolvePath(t *testing.T) {
	p := writeConfig(t, "s.json", `{"pattern": "scale", "params": {"root": 62}}`)

	cfg, err := Resolve(p)
	require.NoError(t, err)
	assert.Equal(t, 62.0, cfg.merged()["root"])
	assert.Equal(t, 1.0, cfg.merged()["in_key"])
}
