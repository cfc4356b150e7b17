package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pageza/alchemorsel-cocktails/backend/internal/server"
	"github.com/pageza/alchemorsel-cocktails/backend/internal/service"
	"github.com/pageza/alchemorsel-cocktails/backend/internal/types"
)

var (
	generateIngredients []string
	generateDrink       string
	generateFlavor      string
	generateMood        string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and save one recipe without starting the server",
	Example: `  cocktails generate --ingredients gin,lemon,"soda water" --flavor citrusy
  cocktails generate --mood nostalgic`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(generateIngredients, generateDrink, generateFlavor, generateMood)
		if err != nil {
			return err
		}

		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		cocktails, err := server.NewCocktailService(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		stored, err := cocktails.Generate(cmd.Context(), req)
		if err != nil {
			if perr, ok := service.AsPipelineError(err); ok {
				return errors.New(perr.UserMessage())
			}
			return err
		}

		out, err := json.MarshalIndent(types.GenerateResponse{
			Message: "Cocktail saved successfully!",
			File:    stored.Filename,
			Recipe:  stored.Recipe,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	generateCmd.Flags().StringSliceVar(&generateIngredients, "ingredients", nil, "Comma-separated ingredients on hand")
	generateCmd.Flags().StringVar(&generateDrink, "drink", "", "Preferred drink style (default \"any\")")
	generateCmd.Flags().StringVar(&generateFlavor, "flavor", "", "Desired flavor profile (default \"balanced\")")
	generateCmd.Flags().StringVar(&generateMood, "mood", "", "Recommend by mood instead of ingredients")
	generateCmd.MarkFlagsMutuallyExclusive("ingredients", "mood")
}

// requestFromFlags picks the request variant. Ingredient validation is left
// to the pipeline so the CLI reports the same message as the API.
func requestFromFlags(ingredients []string, drink, flavor, mood string) (types.GenerationRequest, error) {
	if mood != "" {
		if drink != "" || flavor != "" {
			return nil, errors.New("--drink and --flavor apply only to --ingredients")
		}
		return &types.MoodRequest{Mood: mood}, nil
	}
	return &types.IngredientRequest{
		Ingredients:      ingredients,
		DrinkPreference:  drink,
		FlavorPreference: flavor,
	}, nil
}
