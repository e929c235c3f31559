package card

import (
	"testing"

	"postcard-sync/feature/card/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinker_Resolve(t *testing.T) {
	linker, err := NewLinker("https://postcards.example.org/api/")
	require.NoError(t, err)

	tests := []struct {
		webURL string
		want   string
	}{
		{"/card/9/", "https://postcards.example.org/card/9/"},
		{"card/9/", "https://postcards.example.org/api/card/9/"},
		{"https://cdn.example.net/card/9/", "https://cdn.example.net/card/9/"},
	}
	for _, tt := range tests {
		got, err := linker.Resolve(tt.webURL)
		require.NoError(t, err, tt.webURL)
		assert.Equal(t, tt.want, got)
	}

	_, err = linker.Resolve("%zz")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNewLinker_RejectsRelativeBase(t *testing.T) {
	for _, base := range []string{"", "/api", "postcards.example.org"} {
		_, err := NewLinker(base)
		assert.Error(t, err, base)
	}
}

func TestLinker_Link(t *testing.T) {
	linker, err := NewLinker("http://localhost:8000/api")
	require.NoError(t, err)

	_, err = linker.Link(&models.Card{UUID: "u1"}, "Trip")
	assert.ErrorIs(t, err, ErrNotPublished)
	_, err = linker.Link(&models.Card{UUID: "u1", WebURL: strPtr("")}, "Trip")
	assert.ErrorIs(t, err, ErrNotPublished)

	link, err := linker.Link(&models.Card{UUID: "u1", WebURL: strPtr("/card/1/")}, "Trip")
	require.NoError(t, err)
	assert.Equal(t, &ShareLink{URL: "http://localhost:8000/card/1/", Title: "Trip"}, link)
}
