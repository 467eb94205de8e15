package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Violation is a problem with one submitted field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Values holds trimmed form values keyed by field name.
type Values map[string]string

// Get returns the value of a field, or "".
func (v Values) Get(name string) string {
	return v[name]
}

// Field declares the constraints on one form field. Lengths count runes.
type Field struct {
	Name     string
	Label    string
	Required bool
	Min, Max int
	Text     bool // contains at least one letter or digit
	Whole    bool // a whole number of zero or more
	Ref      bool // an identifier selected from a list
}

// Rules is the set of constraints for one form.
type Rules []Field

// Check trims every declared field and reports all violations at once.
func (rs Rules) Check(form url.Values) (Values, []Violation) {
	values := make(Values, len(rs))
	var violations []Violation

	for _, f := range rs {
		v := strings.TrimSpace(form.Get(f.Name))
		values[f.Name] = v
		if msg := f.check(v); msg != "" {
			violations = append(violations, Violation{Field: f.Name, Message: msg})
		}
	}

	return values, violations
}

func (f Field) check(v string) string {
	if v == "" {
		if f.Required {
			if f.Ref {
				return fmt.Sprintf("Select a %s.", strings.ToLower(f.Label))
			}
			return fmt.Sprintf("%s must not be empty.", f.Label)
		}
		return ""
	}

	n := utf8.RuneCountInString(v)
	switch {
	case f.Min > 0 && n < f.Min:
		return fmt.Sprintf("%s must be at least %d characters.", f.Label, f.Min)
	case f.Max > 0 && n > f.Max:
		return fmt.Sprintf("%s must be at most %d characters.", f.Label, f.Max)
	}

	if f.Text && !strings.ContainsFunc(v, isLetterOrNumber) {
		return fmt.Sprintf("%s must contain a letter or number.", f.Label)
	}
	if f.Whole {
		if i, err := strconv.Atoi(v); err != nil || i < 0 {
			return fmt.Sprintf("%s must be a whole number of 0 or more.", f.Label)
		}
	}
	if f.Ref {
		if _, err := uuid.Parse(v); err != nil {
			return fmt.Sprintf("Select a %s.", strings.ToLower(f.Label))
		}
	}
	return ""
}

func isLetterOrNumber(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Rule sets shared by the create and update forms.
var (
	BrandRules = Rules{
		{Name: "name", Label: "Brand name", Required: true, Text: true, Min: 2, Max: 50},
	}

	CategoryRules = Rules{
		{Name: "name", Label: "Category name", Required: true, Text: true, Min: 3, Max: 50},
		{Name: "description", Label: "Description", Required: true},
	}

	ItemRules = Rules{
		{Name: "name", Label: "Item name", Required: true, Text: true, Min: 3, Max: 50},
		{Name: "brand", Label: "Brand", Required: true, Ref: true},
		{Name: "category", Label: "Category", Required: true, Ref: true},
		{Name: "description", Label: "Description", Required: true},
		{Name: "price", Label: "Price", Required: true},
		{Name: "numInStock", Label: "Number in stock", Required: true, Whole: true},
	}
)
