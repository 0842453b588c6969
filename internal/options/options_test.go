package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// tableConfig mimics the construction configs that consume this package.
type tableConfig struct {
	InitialSlots int
	Closed       bool
}

func withInitialSlots(n int) Option[*tableConfig] {
	return New(func(c *tableConfig) error {
		if n <= 0 {
			return errors.New("initial slots must be positive")
		}
		c.InitialSlots = n

		return nil
	})
}

func withClosed() Option[*tableConfig] {
	return NoError(func(c *tableConfig) {
		c.Closed = true
	})
}

func TestApply_InOrder(t *testing.T) {
	cfg := &tableConfig{InitialSlots: 1024}

	err := Apply(cfg, withInitialSlots(64), withClosed())
	require.NoError(t, err)
	require.Equal(t, 64, cfg.InitialSlots)
	require.True(t, cfg.Closed)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &tableConfig{}

	err := Apply(cfg, withInitialSlots(-1), withClosed())
	require.Error(t, err)
	require.Contains(t, err.Error(), "initial slots must be positive")
	require.False(t, cfg.Closed)
}

func TestApply_Empty(t *testing.T) {
	cfg := &tableConfig{InitialSlots: 1024}

	require.NoError(t, Apply(cfg))
	require.Equal(t, 1024, cfg.InitialSlots)
}

func TestNoError_CannotFail(t *testing.T) {
	cfg := &tableConfig{}

	opt := NoError(func(c *tableConfig) { c.InitialSlots = 8 })
	require.NoError(t, opt.apply(cfg))
	require.Equal(t, 8, cfg.InitialSlots)
}
