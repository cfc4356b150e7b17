package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pageza/alchemorsel-cocktails/backend/internal/types"
)

// recipeSchema type-checks fields that are present. Presence is handled
// separately so the missing-field report follows RecipeFieldOrder.
const recipeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "name":         {"type": "string", "minLength": 1},
    "ingredients":  {"type": "array", "items": {"type": "string"}},
    "preparation":  {"type": "string"},
    "glassware":    {"type": "string"},
    "garnish":      {"type": "string"},
    "backstory":    {"type": "string"},
    "food_pairing": {"type": "string"},
    "image":        {"type": "string", "pattern": "^images/(blue|brown|pink|red|clear|orange)\\.png$"}
  }
}`

// RequiredFields maps each request kind to the fields its replies must carry
type RequiredFields map[types.RequestKind][]string

// DefaultRequiredFields mirrors the defaults in config.Default
func DefaultRequiredFields() RequiredFields {
	base := []string{
		types.FieldName, types.FieldIngredients, types.FieldPreparation,
		types.FieldGlassware, types.FieldGarnish, types.FieldBackstory,
	}
	return RequiredFields{
		types.KindIngredients: append(append([]string{}, base...), types.FieldImage),
		types.KindMood:        base,
	}
}

// FieldError reports a required field that is absent or has the wrong shape
type FieldError struct {
	Field   string
	Missing bool
	Reason  string
}

func (e *FieldError) Error() string {
	if e.Missing {
		return "missing field: " + e.Field
	}
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

// Validator checks parsed replies against the required-field contract
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the recipe schema
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("recipe.json", strings.NewReader(recipeSchema)); err != nil {
		return nil, fmt.Errorf("failed to add recipe schema: %w", err)
	}
	schema, err := compiler.Compile("recipe.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile recipe schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate returns a Recipe only when every required field is present and
// every present field is well typed.
func (v *Validator) Validate(data map[string]any, required []string) (*types.Recipe, error) {
	for _, field := range checkOrder(required) {
		if _, ok := data[field]; !ok {
			return nil, &FieldError{Field: field, Missing: true}
		}
	}

	if err := v.schema.Validate(data); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			field, reason := firstInvalidField(verr)
			return nil, &FieldError{Field: field, Reason: reason}
		}
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode recipe: %w", err)
	}
	var recipe types.Recipe
	if err := json.Unmarshal(raw, &recipe); err != nil {
		return nil, fmt.Errorf("failed to decode recipe: %w", err)
	}
	return &recipe, nil
}

// checkOrder sorts required by RecipeFieldOrder; names outside it follow
// in their configured order. The name is always required because the
// stored filename is derived from it.
func checkOrder(required []string) []string {
	want := map[string]bool{types.FieldName: true}
	for _, f := range required {
		want[f] = true
	}

	ordered := make([]string, 0, len(required)+1)
	known := make(map[string]bool, len(types.RecipeFieldOrder))
	for _, f := range types.RecipeFieldOrder {
		known[f] = true
		if want[f] {
			ordered = append(ordered, f)
		}
	}
	for _, f := range required {
		if !known[f] {
			ordered = append(ordered, f)
			known[f] = true
		}
	}
	return ordered
}

// firstInvalidField picks the failing field that comes first in
// RecipeFieldOrder. Property checks run in map order, so the cause tree
// itself is not stable between runs.
func firstInvalidField(err *jsonschema.ValidationError) (string, string) {
	rank := make(map[string]int, len(types.RecipeFieldOrder))
	for i, f := range types.RecipeFieldOrder {
		rank[f] = i
	}
	rankOf := func(field string) int {
		if r, ok := rank[field]; ok {
			return r
		}
		return len(rank)
	}

	var best *jsonschema.ValidationError
	var bestField string
	for _, leaf := range leafCauses(err) {
		field := fieldFromLocation(leaf.InstanceLocation)
		if best == nil {
			best, bestField = leaf, field
			continue
		}
		r, br := rankOf(field), rankOf(bestField)
		if r < br || (r == br && (leaf.InstanceLocation < best.InstanceLocation ||
			(leaf.InstanceLocation == best.InstanceLocation && leaf.Message < best.Message))) {
			best, bestField = leaf, field
		}
	}
	return bestField, best.Message
}

func leafCauses(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var leaves []*jsonschema.ValidationError
	for _, c := range err.Causes {
		leaves = append(leaves, leafCauses(c)...)
	}
	return leaves
}

// fieldFromLocation turns "/ingredients/2" into "ingredients"
func fieldFromLocation(loc string) string {
	loc = strings.TrimPrefix(loc, "/")
	if i := strings.IndexByte(loc, '/'); i >= 0 {
		loc = loc[:i]
	}
	if loc == "" {
		return "(root)"
	}
	return loc
}
