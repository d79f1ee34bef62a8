package language

import (
	"testing"

	"qa-paper-be/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	cfg, err := Lookup("ja")
	require.NoError(t, err)
	assert.Equal(t, "Japanese", cfg.Name)
	assert.Equal(t, "日本語", cfg.NativeName)
	assert.False(t, cfg.RTL)

	ar, err := Lookup("ar")
	require.NoError(t, err)
	assert.True(t, ar.RTL)
}

func TestLookupUnknown(t *testing.T) {
	for _, code := range []string{"xx", "EN", "", "eng"} {
		_, err := Lookup(code)
		assert.ErrorIs(t, err, apperr.ErrLanguageNotSupported, code)
	}
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("en"))
	assert.True(t, IsSupported("hi"))
	assert.False(t, IsSupported("xx"))
}

func TestSupportedSortedByCode(t *testing.T) {
	configs := Supported()
	require.Len(t, configs, 10)
	for i := 1; i < len(configs); i++ {
		assert.Less(t, configs[i-1].Code, configs[i].Code)
	}
	assert.Equal(t, "ar", configs[0].Code)

	for _, cfg := range configs {
		assert.NotEmpty(t, cfg.Name, cfg.Code)
		assert.NotEmpty(t, cfg.NativeName, cfg.Code)
		assert.NotEmpty(t, cfg.FontFamily, cfg.Code)
	}
}
