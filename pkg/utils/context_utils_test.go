package utils_test

import (
	"strings"
	"testing"

	"github.com/NeuralTrust/LearnGate/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserAgent(t *testing.T) {
	ua := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	info := utils.ParseUserAgent(ua, "es-ES,es;q=0.9,en;q=0.8")
	require.NotNil(t, info)
	assert.Equal(t, "Computer", info.Device)
	assert.True(t, strings.HasPrefix(info.Browser, "BrowserChrome"))
	assert.Equal(t, "es-ES", info.Locale)
}

func TestParseUserAgent_Unknown(t *testing.T) {
	assert.Nil(t, utils.ParseUserAgent("curl/8.4.0", ""))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", utils.TruncateRunes("short", 10))
	assert.Equal(t, "abcdefg...", utils.TruncateRunes("abcdefghijklmnop", 10))
	assert.Equal(t, "ñññ...", utils.TruncateRunes(strings.Repeat("ñ", 20), 6))
}
