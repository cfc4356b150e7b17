package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-cocktails/backend/internal/logging"
	"github.com/pageza/alchemorsel-cocktails/backend/internal/types"
)

type fakeGenerator struct {
	reply   string
	err     error
	calls   int
	prompts []Prompt
}

func (f *fakeGenerator) Generate(_ context.Context, prompt Prompt) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

const sunsetFizzReply = `Here you go!
{
  "name": "Sunset Fizz",
  "ingredients": ["2 oz gin", "a squeeze of lemon juice", "top with soda water"],
  "preparation": "Shake gin and lemon with ice, strain, top with soda.",
  "glassware": "Collins glass",
  "garnish": "Orange wheel",
  "backstory": "Invented on a rooftop at dusk.",
  "image": "images/orange.png"
}
Cheers.`

func newTestCocktailService(t *testing.T, gen Generator, dir string) *CocktailService {
	t.Helper()
	store := NewFileStore(dir, logging.Nop(), WithClock(fixedClock))
	return NewCocktailService(gen, newTestValidator(t), store, nil, logging.Nop())
}

func ingredientRequest(ingredients ...string) *types.IngredientRequest {
	return &types.IngredientRequest{Ingredients: ingredients}
}

func TestCocktailServiceGenerate(t *testing.T) {
	dir := t.TempDir()
	gen := &fakeGenerator{reply: sunsetFizzReply}
	svc := newTestCocktailService(t, gen, dir)

	stored, err := svc.Generate(context.Background(), ingredientRequest("gin", "lemon", "soda water"))
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.prompts[0].User, "gin, lemon, soda water")
	assert.Contains(t, gen.prompts[0].User, "Preferred drink style: any")
	assert.Equal(t, "sunset_fizz_20240102_030405.json", stored.Filename)
	assert.Equal(t, "Sunset Fizz", stored.Recipe.Name)
	assert.FileExists(t, stored.FilePath)
}

func TestCocktailServiceMood(t *testing.T) {
	gen := &fakeGenerator{reply: `{"name":"Blue Monday","ingredients":["1 oz gin"],"preparation":"Stir.","glassware":"Coupe","garnish":"None","backstory":"Mondays."}`}
	svc := newTestCocktailService(t, gen, t.TempDir())

	stored, err := svc.Generate(context.Background(), &types.MoodRequest{})
	require.NoError(t, err)

	assert.Contains(t, gen.prompts[0].User, "matches the mood: happy.")
	assert.Equal(t, "Blue Monday", stored.Recipe.Name)
	assert.Empty(t, stored.Recipe.Image)
}

func TestCocktailServiceEmptyIngredientsShortCircuits(t *testing.T) {
	for _, req := range []*types.IngredientRequest{ingredientRequest(), ingredientRequest("", "  ")} {
		gen := &fakeGenerator{reply: sunsetFizzReply}
		svc := newTestCocktailService(t, gen, t.TempDir())

		stored, err := svc.Generate(context.Background(), req)
		assert.Nil(t, stored)

		perr, ok := AsPipelineError(err)
		require.True(t, ok)
		assert.Equal(t, KindInvalidInput, perr.Kind)
		assert.True(t, perr.IsClientError())
		assert.Equal(t, 0, gen.calls)
	}
}

func TestCocktailServiceFailures(t *testing.T) {
	tests := []struct {
		name    string
		gen     *fakeGenerator
		kind    ErrorKind
		message string
	}{
		{
			name:    "rate limited",
			gen:     &fakeGenerator{err: &GenerationError{Failure: FailureRateLimited, Message: "slow down"}},
			kind:    KindGenerationRateLimited,
			message: "Rate limit exceeded. Please wait and try again.",
		},
		{
			name:    "service error",
			gen:     &fakeGenerator{err: &GenerationError{Failure: FailureServiceError, Message: "quota exceeded"}},
			kind:    KindGenerationService,
			message: "Generation service error: quota exceeded",
		},
		{
			name:    "unreachable",
			gen:     &fakeGenerator{err: &GenerationError{Failure: FailureUnreachable, Err: errors.New("dial tcp: refused")}},
			kind:    KindGenerationUnreachable,
			message: "Generation service is unreachable. Please try again later.",
		},
		{
			name:    "unclassified generator error",
			gen:     &fakeGenerator{err: errors.New("boom")},
			kind:    KindGenerationUnreachable,
			message: "Generation service is unreachable. Please try again later.",
		},
		{
			name:    "no JSON",
			gen:     &fakeGenerator{reply: "I'd suggest a Negroni."},
			kind:    KindExtractionNotFound,
			message: "AI did not return a valid JSON response.",
		},
		{
			name:    "invalid JSON",
			gen:     &fakeGenerator{reply: `{"name": "Broken",}`},
			kind:    KindParseInvalidJSON,
			message: "Failed to parse JSON. The AI might have returned an invalid response.",
		},
		{
			name:    "missing field",
			gen:     &fakeGenerator{reply: `{"name":"Half","ingredients":["gin"],"preparation":"Stir."}`},
			kind:    KindMissingField,
			message: "Missing field in AI response: glassware",
		},
		{
			name:    "invalid field",
			gen:     &fakeGenerator{reply: `{"name":"Odd","ingredients":"gin","preparation":"Stir.","glassware":"Coupe","garnish":"None","backstory":"x","image":"images/red.png"}`},
			kind:    KindInvalidField,
			message: "Invalid field in AI response: ingredients",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			svc := newTestCocktailService(t, tt.gen, dir)

			stored, err := svc.Generate(context.Background(), ingredientRequest("gin"))
			assert.Nil(t, stored)

			perr, ok := AsPipelineError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, perr.Kind)
			assert.Equal(t, tt.message, perr.UserMessage())
			assert.False(t, perr.IsClientError())
			assert.Equal(t, 1, tt.gen.calls)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "no file may be written on failure")
		})
	}
}

type failingStore struct{}

func (failingStore) Save(context.Context, *types.Recipe) (*types.StoredRecipe, error) {
	return nil, errors.New("disk full")
}

func TestCocktailServiceStoreFailure(t *testing.T) {
	svc := NewCocktailService(&fakeGenerator{reply: sunsetFizzReply}, newTestValidator(t), failingStore{}, nil, logging.Nop())

	_, err := svc.Generate(context.Background(), ingredientRequest("gin"))
	perr, ok := AsPipelineError(err)
	require.True(t, ok)
	assert.Equal(t, KindStoreWriteFailed, perr.Kind)
	assert.Equal(t, "Failed to save cocktail recipe.", perr.UserMessage())
	assert.ErrorContains(t, err, "disk full")
}

func TestCocktailServicePromptsForConfiguredFoodPairing(t *testing.T) {
	gen := &fakeGenerator{reply: `{"name":"Supper Club","ingredients":["2 oz bourbon"],"preparation":"Stir.","glassware":"Rocks glass","garnish":"Cherry","backstory":"Late table.","food_pairing":"Steak frites"}`}
	store := NewFileStore(t.TempDir(), logging.Nop(), WithClock(fixedClock))
	required := RequiredFields{
		types.KindMood: {types.FieldName, types.FieldIngredients, types.FieldFoodPairing},
	}
	svc := NewCocktailService(gen, newTestValidator(t), store, required, logging.Nop())

	stored, err := svc.Generate(context.Background(), &types.MoodRequest{Mood: "hungry"})
	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0].User, `"food_pairing":`)
	assert.Equal(t, "Steak frites", stored.Recipe.FoodPairing)
}
