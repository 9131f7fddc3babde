package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigValid(t *testing.T) {
	cfg, err := ParseConfig("48000:FL,FR")
	require.NoError(t, err)
	assert.Equal(t, 48000, cfg.Rate)
	assert.Equal(t, []Position{FL, FR}, cfg.Channels)
	assert.Equal(t, "48000:FL,FR", cfg.String())
	assert.Equal(t, uint32(2*48000*2), cfg.OneSecondSize())
}

func TestParseConfigUnsupportedRate(t *testing.T) {
	_, err := ParseConfig("96000:FL,FR")
	require.Error(t, err)
}

func TestParseConfigUnknownChannel(t *testing.T) {
	_, err := ParseConfig("44100:XX")
	require.Error(t, err)
}

func TestParseConfigMalformed(t *testing.T) {
	_, err := ParseConfig("not-a-config")
	require.Error(t, err)
}
