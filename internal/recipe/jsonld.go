package recipe

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ldKind tags the shape of a decoded JSON-LD value.
type ldKind int

const (
	ldScalar ldKind = iota
	ldObject
	ldArray
)

// ldNode is a JSON-LD value decoded just far enough to search it for a
// Recipe: objects keep the recipe-relevant fields, arrays keep their items,
// everything else is a scalar.
type ldNode struct {
	kind   ldKind
	object ldFields
	items  []ldNode
}

type ldFields struct {
	Type         ldStrings       `json:"@type"`
	Graph        *ldNode         `json:"@graph"`
	Name         ldStrings       `json:"name"`
	Ingredients  ldStrings       `json:"recipeIngredient"`
	Instructions json.RawMessage `json:"recipeInstructions"`
}

func (n *ldNode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		n.kind = ldScalar
		return nil
	}
	switch data[0] {
	case '{':
		n.kind = ldObject
		return json.Unmarshal(data, &n.object)
	case '[':
		n.kind = ldArray
		return json.Unmarshal(data, &n.items)
	default:
		n.kind = ldScalar
		return nil
	}
}

// ldStrings accepts a string or an array of strings and ignores other shapes.
type ldStrings []string

func (s *ldStrings) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = ldStrings{one}
		return nil
	}
	var many []json.RawMessage
	if err := json.Unmarshal(data, &many); err != nil {
		return nil
	}
	out := make(ldStrings, 0, len(many))
	for _, raw := range many {
		var v string
		if err := json.Unmarshal(raw, &v); err == nil {
			out = append(out, v)
		}
	}
	*s = out
	return nil
}

// parseStructuredData decodes one ld+json block and returns the first recipe
// with content found in it. Malformed blocks yield false.
func parseStructuredData(block string) (Recipe, bool) {
	var root ldNode
	if err := json.Unmarshal([]byte(block), &root); err != nil {
		return Recipe{}, false
	}
	return root.findRecipe()
}

func (n ldNode) findRecipe() (Recipe, bool) {
	switch n.kind {
	case ldObject:
		if n.object.isRecipe() {
			if r := n.object.recipe(); r.HasContent() {
				return r, true
			}
		}
		if n.object.Graph != nil {
			return n.object.Graph.findRecipe()
		}
	case ldArray:
		for _, item := range n.items {
			if r, ok := item.findRecipe(); ok {
				return r, true
			}
		}
	}
	return Recipe{}, false
}

func (f ldFields) isRecipe() bool {
	for _, t := range f.Type {
		if strings.Contains(strings.ToLower(t), "recipe") {
			return true
		}
	}
	return false
}

func (f ldFields) recipe() Recipe {
	var title string
	if len(f.Name) > 0 {
		title = plainText(f.Name[0])
	}

	var ingredients []string
	for _, ing := range f.Ingredients {
		for _, line := range strings.Split(ing, "\n") {
			if line = plainText(line); line != "" {
				ingredients = append(ingredients, line)
			}
		}
	}

	return Recipe{
		Title:       title,
		Ingredients: ingredients,
		Steps:       parseInstructions(f.Instructions),
	}
}

type ldStep struct {
	Type  ldStrings         `json:"@type"`
	Text  string            `json:"text"`
	Name  string            `json:"name"`
	Items []json.RawMessage `json:"itemListElement"`
}

// parseInstructions handles a newline-delimited string, an array of strings,
// an array of HowToStep objects and HowToSection objects nesting steps.
func parseInstructions(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return splitLines(text)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		var steps []string
		for _, item := range items {
			steps = append(steps, parseInstructions(item)...)
		}
		return steps
	}

	var step ldStep
	if err := json.Unmarshal(raw, &step); err != nil {
		return nil
	}
	if len(step.Items) > 0 {
		var steps []string
		for _, item := range step.Items {
			steps = append(steps, parseInstructions(item)...)
		}
		return steps
	}
	body := step.Text
	if body == "" {
		body = step.Name
	}
	if body = plainText(body); body != "" {
		return []string{body}
	}
	return nil
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = plainText(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
