package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.LowerQ = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidQuantile)

	cfg = DefaultConfig()
	cfg.UpperQ = 100
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidQuantile)

	cfg = DefaultConfig()
	cfg.LowerQ, cfg.UpperQ = 60, 40
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidQuantile)

	cfg = DefaultConfig()
	cfg.Horizon = -1
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidHorizon)

	cfg = DefaultConfig()
	cfg.TrainSplit = 1.2
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.BootstrapSamples = 0
	assert.Error(t, cfg.Validate())
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LowerQ, cfg.UpperQ = 90, 10
	_, err := New(constReg{}, cfg)
	assert.ErrorIs(t, err, ErrInvalidQuantile)
}
