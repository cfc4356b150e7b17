package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientRequestNormalize(t *testing.T) {
	t.Run("applies defaults and keeps entries verbatim", func(t *testing.T) {
		req := &IngredientRequest{Ingredients: []string{" Gin ", "", "  ", "Campari"}}
		require.NoError(t, req.Normalize())

		assert.Equal(t, []string{" Gin ", "Campari"}, req.Ingredients)
		assert.Equal(t, DefaultDrinkPreference, req.DrinkPreference)
		assert.Equal(t, DefaultFlavorPreference, req.FlavorPreference)
	})

	t.Run("rejects empty list", func(t *testing.T) {
		req := &IngredientRequest{}
		assert.ErrorIs(t, req.Normalize(), ErrNoIngredients)
	})

	t.Run("rejects blank-only list", func(t *testing.T) {
		req := &IngredientRequest{Ingredients: []string{"", " "}}
		assert.ErrorIs(t, req.Normalize(), ErrNoIngredients)
	})

	t.Run("keeps explicit preferences", func(t *testing.T) {
		req := &IngredientRequest{Ingredients: []string{"rum"}, DrinkPreference: "tiki", FlavorPreference: "sweet"}
		require.NoError(t, req.Normalize())
		assert.Equal(t, "tiki", req.DrinkPreference)
		assert.Equal(t, "sweet", req.FlavorPreference)
	})
}

func TestMoodRequestNormalize(t *testing.T) {
	req := &MoodRequest{}
	require.NoError(t, req.Normalize())
	assert.Equal(t, DefaultMood, req.Mood)

	req = &MoodRequest{Mood: "melancholy"}
	require.NoError(t, req.Normalize())
	assert.Equal(t, "melancholy", req.Mood)
}

func TestImagePattern(t *testing.T) {
	for _, color := range ImageColors {
		assert.True(t, ImagePattern.MatchString("images/"+color+".png"), color)
	}
	assert.False(t, ImagePattern.MatchString("images/green.png"))
	assert.False(t, ImagePattern.MatchString("/images/red.png"))
}
