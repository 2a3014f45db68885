package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"atakama.com/sdk/packager"
	"atakama.com/sdk/plugin"
)

func TestScaffold_CreatesManifestAndStub(t *testing.T) {
	tests := []struct {
		name string
		kind detectorKind
		want string
	}{
		{"NameMatch", kindNameMatch, "regexp.Compile"},
		{"Subprocess", kindSubproc, "ns.Exec()"},
		{"HTTP", kindHTTP, "ns.HTTP()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, scaffold(dir, "my-detector", tt.kind))

			data, err := os.ReadFile(filepath.Join(dir, "my-detector", packager.ManifestName))
			require.NoError(t, err)
			var m packager.Manifest
			require.NoError(t, yaml.Unmarshal(data, &m))
			assert.Equal(t, "my-detector", m.Name)
			assert.Equal(t, plugin.CurrentSDKVersion, m.SDKVersion)
			assert.NotEmpty(t, m.ID)

			stub, err := os.ReadFile(filepath.Join(dir, "my-detector", "detector.go"))
			require.NoError(t, err)
			text := string(stub)
			assert.True(t, strings.HasPrefix(text, "package mydetector\n"))
			assert.Contains(t, text, tt.want)
			assert.Contains(t, text, `"my-detector"`)
			assert.Contains(t, text, "NeedsEncryption")
		})
	}
}

func TestScaffold_RefusesExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "taken"), 0o755))

	err := scaffold(dir, "taken", kindNameMatch)
	assert.Error(t, err)
}

func TestParseKind_Validates(t *testing.T) {
	for _, k := range allKinds {
		got, err := parseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := parseKind("telepathy")
	assert.Error(t, err)
}

func TestValidName_Policy(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"pdf-detector", true},
		{"a", true},
		{"det3ctor", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{"CamelCase", false},
		{"has space", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, validName(tt.name), "name %q", tt.name)
	}
}
