package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Sunset Over The Bay":    "sunset-over-the-bay",
		"  Hello,  World!  ":     "hello-world",
		"Già 2024 -- remix":      "gi-2024-remix",
		"!!!":                    "",
		"MixedCASE 42":           "mixedcase-42",
		"tabs\tand\nnewlines ok": "tabs-and-newlines-ok",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}

func TestUniqueSlugNoCollision(t *testing.T) {
	slug, err := uniqueSlug(context.Background(), "Ocean Waves", func(ctx context.Context, s string) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ocean-waves", slug)
}

func TestUniqueSlugCollision(t *testing.T) {
	calls := 0
	slug, err := uniqueSlug(context.Background(), "Ocean Waves", func(ctx context.Context, s string) (bool, error) {
		calls++
		return s == "ocean-waves", nil
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(slug, "ocean-waves-"))
	assert.Equal(t, 2, calls)
}

func TestUniqueSlugEmptyTitle(t *testing.T) {
	slug, err := uniqueSlug(context.Background(), "%%%", func(ctx context.Context, s string) (bool, error) {
		t.Fatal("checker should not run for empty slug")
		return false, nil
	})
	require.NoError(t, err)
	assert.Empty(t, slug)
}
