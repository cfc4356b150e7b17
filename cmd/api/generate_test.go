package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-cocktails/backend/internal/types"
)

func TestRequestFromFlags(t *testing.T) {
	t.Run("ingredients", func(t *testing.T) {
		req, err := requestFromFlags([]string{"gin", "lemon"}, "", "citrusy", "")
		require.NoError(t, err)
		ing, ok := req.(*types.IngredientRequest)
		require.True(t, ok)
		assert.Equal(t, []string{"gin", "lemon"}, ing.Ingredients)
		assert.Equal(t, "citrusy", ing.FlavorPreference)
	})

	t.Run("mood", func(t *testing.T) {
		req, err := requestFromFlags(nil, "", "", "nostalgic")
		require.NoError(t, err)
		assert.Equal(t, types.KindMood, req.Kind())
	})

	t.Run("mood with preferences", func(t *testing.T) {
		_, err := requestFromFlags(nil, "sour", "", "happy")
		assert.Error(t, err)
	})

	t.Run("no ingredients is left to the pipeline", func(t *testing.T) {
		req, err := requestFromFlags(nil, "", "", "")
		require.NoError(t, err)
		assert.ErrorIs(t, req.Normalize(), types.ErrNoIngredients)
	})
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["generate"])
}
