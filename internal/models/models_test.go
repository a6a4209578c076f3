package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveAlias(t *testing.T) {
	t.Parallel()

	c := NewCatalog("gemini-2.0-flash")
	entry, err := c.Resolve("flash")
	require.NoError(t, err)
	require.Equal(t, "gemini-2.0-flash", entry.ID)

	entry, err = c.Resolve(" PRO ")
	require.NoError(t, err)
	require.Equal(t, "gemini-2.5-pro", entry.ID)
}

func TestResolveUnknown(t *testing.T) {
	t.Parallel()

	c := NewCatalog("gemini-2.0-flash")
	_, err := c.Resolve("gpt-4")
	require.True(t, errors.Is(err, ErrUnknownModel))
	_, err = c.Resolve("")
	require.True(t, errors.Is(err, ErrUnknownModel))
}

func TestDefaultFallsBackWhenUnknown(t *testing.T) {
	t.Parallel()

	c := NewCatalog("not-a-model")
	require.Equal(t, "gemini-2.0-flash", c.Default())
}

func TestCapabilitiesUnknownModelAreZero(t *testing.T) {
	t.Parallel()

	c := NewCatalog("gemini-2.0-flash")
	caps := c.Capabilities("mystery")
	require.False(t, caps.SupportsInline)
	require.False(t, caps.SupportsStagedUpload)
}

func TestListSorted(t *testing.T) {
	t.Parallel()

	c := NewCatalog("gemini-2.0-flash")
	entries := c.List()
	require.NotEmpty(t, entries)
	for i := 1; i < len(entries); i++ {
		require.Less(t, entries[i-1].ID, entries[i].ID)
	}
}
