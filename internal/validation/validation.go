// Package validation checks building payloads, ids and city names at the
// HTTP and CLI boundary before they reach the energy analyzer.
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/facade-energy/internal/model"
)

const (
	minDimension = 1.0
	maxDimension = 1e4
	maxNameLen   = 200
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field string `json:"param,omitempty"`
	Msg   string `json:"msg"`
}

// Errors collects every field that failed validation.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Msg
	}
	return "validation: " + strings.Join(msgs, "; ")
}

func (e *Errors) add(field, format string, args ...any) {
	*e = append(*e, FieldError{Field: field, Msg: fmt.Sprintf(format, args...)})
}

func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Building checks a create or update payload. The name is trimmed in place.
func Building(b *model.Building) error {
	var errs Errors

	b.Name = strings.TrimSpace(b.Name)
	switch {
	case b.Name == "":
		errs.add("name", "Building name is required")
	case len(b.Name) > maxNameLen:
		errs.add("name", "Building name must be at most %d characters", maxNameLen)
	}

	if !dimension(b.Height) {
		errs.add("height", "Height must be a number between %g and %g", minDimension, maxDimension)
	}

	for _, dir := range model.CardinalDirections {
		if !dimension(b.Dimensions.Width(dir)) {
			errs.add("dimensions."+string(dir)+".width", "%s facade width must be a number between %g and %g", titleCase(string(dir)), minDimension, maxDimension)
		}
	}

	if !fraction(b.WWR) {
		errs.add("wwr", "WWR must be between 0 and 1")
	}
	if !fraction(b.SHGC) {
		errs.add("shgc", "SHGC must be between 0 and 1")
	}

	if s := b.Skylight; s != nil {
		if !dimension(s.Height) {
			errs.add("skylight.height", "Skylight height must be a number between %g and %g", minDimension, maxDimension)
		}
		if !dimension(s.Width) {
			errs.add("skylight.width", "Skylight width must be a number between %g and %g", minDimension, maxDimension)
		}
	}

	return errs.orNil()
}

// BuildingID checks that id is a well-formed building id.
func BuildingID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return Errors{{Field: "id", Msg: "Invalid building ID"}}
	}
	return nil
}

// City resolves raw to one of the supported cities, ignoring case and
// surrounding whitespace, and returns the supported spelling.
func City(supported []string, raw string) (string, error) {
	name := strings.Join(strings.Fields(raw), " ")
	if name == "" {
		return "", Errors{{Field: "city", Msg: "City is required"}}
	}

	fold := cases.Fold()
	want := fold.String(name)
	for _, c := range supported {
		if fold.String(c) == want {
			return c, nil
		}
	}
	return "", Errors{{Field: "city", Msg: fmt.Sprintf("Invalid city %q: must be one of %s", titleCase(name), strings.Join(supported, ", "))}}
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func atLeast(v, min float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= min
}

// dimension bounds a length in metres so analysis totals stay finite.
func dimension(v float64) bool {
	return atLeast(v, minDimension) && v <= maxDimension
}

func fraction(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
