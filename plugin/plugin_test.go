package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// auditPlugin records file-change notifications.
type auditPlugin struct {
	changed []string
}

func (p *auditPlugin) Name() string    { return "audit" }
func (p *auditPlugin) SDKVersion() int { return CurrentSDKVersion }

func (p *auditPlugin) FileChanged(fullPath string) error {
	p.changed = append(p.changed, fullPath)
	return nil
}

// warmupPlugin runs once at host boot.
type warmupPlugin struct {
	started bool
}

func (p *warmupPlugin) Name() string    { return "warmup" }
func (p *warmupPlugin) SDKVersion() int { return CurrentSDKVersion }

func (p *warmupPlugin) Startup() error {
	p.started = true
	return nil
}

func TestFileChangedPlugin_Conformance(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("audit", func(args Args) (Plugin, error) {
		return &auditPlugin{}, nil
	}))

	p, err := r.Build("audit", nil)
	require.NoError(t, err)

	fc, ok := p.(FileChangedPlugin)
	require.True(t, ok)
	require.NoError(t, fc.FileChanged("/vault/report.pdf"))
	assert.Equal(t, []string{"/vault/report.pdf"}, p.(*auditPlugin).changed)
}

func TestStartupPlugin_Conformance(t *testing.T) {
	p := &warmupPlugin{}

	var asPlugin Plugin = p
	sp, ok := asPlugin.(StartupPlugin)
	require.True(t, ok)
	require.NoError(t, sp.Startup())
	assert.True(t, p.started)
}

func TestDefaultRegistry_RoundTrip(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	require.NoError(t, Register("audit", func(args Args) (Plugin, error) {
		return &auditPlugin{}, nil
	}))

	assert.Contains(t, Names(), "audit")

	_, err := Get("audit")
	require.NoError(t, err)

	p, err := Build("audit", nil)
	require.NoError(t, err)
	assert.Equal(t, "audit", p.Name())

	err = Register("audit", func(args Args) (Plugin, error) { return &auditPlugin{}, nil })
	assert.ErrorIs(t, err, ErrDuplicateName)
}
