package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pageza/alchemorsel-cocktails/backend/internal/types"
)

// Prompt is a system/user message pair sent to the generation service
type Prompt struct {
	System string
	User   string
}

const systemPrompt = "You are an expert mixologist responding with structured JSON."

const recipeSchemaExample = `{
  "name": "Cocktail Name",
  "ingredients": [
    "Quantity + Ingredient (e.g., '2 oz Vodka')",
    "Quantity + Ingredient (or substitution, if needed)"
  ],
  "preparation": "Step-by-step preparation instructions.",
  "glassware": "Recommended glass type.",
  "garnish": "Suggested garnish.",
  "backstory": "A fun and creative story about the cocktail."%s
}`

const foodPairingSchemaLine = `,
  "food_pairing": "A dish that goes well with the cocktail."`

const imageSchemaLine = `,
  "image": "images/<color>.png"`

const formattingRules = `- Use imperial units (oz, tsp, cups) instead of milliliters.
- If you are using grenadine, don't use specific volumes, say only "a lining of".
- If you are using bitters, don't use specific volumes, say only "a dash of".
- If you are using simple syrup, don't use specific volumes, say only "a splash of".
- If you are using lemon/lime juice, don't use specific volumes, say only "a squeeze of".
- If you are using soda water, tonic or cola, don't use specific volumes, say only "top with".
- Return only valid JSON. Do not include any additional text or commentary.`

// schemaExtras renders the optional keys of the example reply. Ingredient
// prompts always ask for an image.
func schemaExtras(required []string, withImage bool) string {
	var extras string
	if slices.Contains(required, types.FieldFoodPairing) {
		extras += foodPairingSchemaLine
	}
	if withImage {
		extras += imageSchemaLine
	}
	return extras
}

func imageInstruction() string {
	return fmt.Sprintf("- Set \"image\" to images/<color>.png where <color> is the one of %s closest to the drink's color.\n",
		strings.Join(types.ImageColors, ", "))
}

// BuildIngredientPrompt renders an ingredient request. Ingredients and
// preferences are restated exactly as supplied.
func BuildIngredientPrompt(req *types.IngredientRequest, required []string) Prompt {
	var sb strings.Builder
	sb.WriteString("You are a professional mixologist. Based on the provided inputs, create a unique cocktail recipe.\n\n")
	sb.WriteString("Inputs:\n")
	sb.WriteString(fmt.Sprintf("- Ingredients available: %s\n", strings.Join(req.Ingredients, ", ")))
	sb.WriteString(fmt.Sprintf("- Preferred drink style: %s\n", req.DrinkPreference))
	sb.WriteString(fmt.Sprintf("- Desired flavor profile: %s\n\n", req.FlavorPreference))
	sb.WriteString("Response format (valid JSON only, no extra text):\n\n")
	sb.WriteString(fmt.Sprintf(recipeSchemaExample, schemaExtras(required, true)))
	sb.WriteString("\n\nImportant:\n")
	sb.WriteString("- Use only the ingredients listed above. Do not add any other ingredient except water or ice.\n")
	sb.WriteString(imageInstruction())
	sb.WriteString(formattingRules)
	sb.WriteString("\n")

	return Prompt{System: systemPrompt, User: sb.String()}
}

// BuildMoodPrompt renders a mood request. The mood is restated exactly as supplied.
func BuildMoodPrompt(req *types.MoodRequest, required []string) Prompt {
	withImage := slices.Contains(required, types.FieldImage)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a professional mixologist. Recommend a cocktail that matches the mood: %s.\n\n", req.Mood))
	sb.WriteString("Respond only with valid JSON in the following format:\n\n")
	sb.WriteString(fmt.Sprintf(recipeSchemaExample, schemaExtras(required, withImage)))
	sb.WriteString("\n\nImportant:\n")
	if withImage {
		sb.WriteString(imageInstruction())
	}
	sb.WriteString(formattingRules)
	sb.WriteString("\n")

	return Prompt{System: systemPrompt, User: sb.String()}
}

// BuildPrompt dispatches on the request variant. required lists the fields
// the reply must carry, so optional keys are asked for when configured.
func BuildPrompt(req types.GenerationRequest, required []string) (Prompt, error) {
	switch r := req.(type) {
	case *types.IngredientRequest:
		return BuildIngredientPrompt(r, required), nil
	case *types.MoodRequest:
		return BuildMoodPrompt(r, required), nil
	default:
		return Prompt{}, fmt.Errorf("unsupported request type %T", req)
	}
}
