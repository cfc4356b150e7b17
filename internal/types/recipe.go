package types

import "regexp"

// Recipe is the validated cocktail returned by the generation service.
// Field order here is the key order of the persisted JSON file.
type Recipe struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
	Preparation string   `json:"preparation"`
	Glassware   string   `json:"glassware"`
	Garnish     string   `json:"garnish"`
	Backstory   string   `json:"backstory"`
	FoodPairing string   `json:"food_pairing,omitempty"`
	Image       string   `json:"image,omitempty"`
}

// StoredRecipe is a Recipe that has been written to the output directory
type StoredRecipe struct {
	Recipe   Recipe `json:"recipe"`
	Filename string `json:"filename"`
	FilePath string `json:"file_path"`
}

// Recipe field names, in the order the validator checks them
const (
	FieldName        = "name"
	FieldIngredients = "ingredients"
	FieldPreparation = "preparation"
	FieldGlassware   = "glassware"
	FieldGarnish     = "garnish"
	FieldBackstory   = "backstory"
	FieldFoodPairing = "food_pairing"
	FieldImage       = "image"
)

// RecipeFieldOrder is the documented check order for required fields
var RecipeFieldOrder = []string{
	FieldName,
	FieldIngredients,
	FieldPreparation,
	FieldGlassware,
	FieldGarnish,
	FieldBackstory,
	FieldFoodPairing,
	FieldImage,
}

// ImageColors are the colors a recipe image path may reference
var ImageColors = []string{"blue", "brown", "pink", "red", "clear", "orange"}

// ImagePattern matches a valid recipe image path such as images/red.png
var ImagePattern = regexp.MustCompile(`^images/(blue|brown|pink|red|clear|orange)\.png$`)
