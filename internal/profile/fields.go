// Package profile describes the developer profile collected by the salary
// form: the seven recognized fields and the closed option sets offered for
// the enumerated ones.
package profile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownField is returned when a field name is not one of the seven
	// recognized profile fields.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownOption is returned when a value is not a member of the
	// field's option set.
	ErrUnknownOption = errors.New("unknown option")
)

// Field names double as the JSON keys of the prediction request.
type Field string

const (
	FieldCountry      Field = "Country"
	FieldEdLevel      Field = "EdLevel"
	FieldAgeGroup     Field = "Age_group"
	FieldDevType      Field = "DevType"
	FieldRemoteWork   Field = "RemoteWork"
	FieldMainBranch   Field = "MainBranch"
	FieldYearsCodePro Field = "YearsCodePro"
)

// fieldOrder is the order fields are presented in.
var fieldOrder = []Field{
	FieldCountry,
	FieldEdLevel,
	FieldYearsCodePro,
	FieldDevType,
	FieldRemoteWork,
	FieldAgeGroup,
	FieldMainBranch,
}

var fieldLabels = map[Field]string{
	FieldCountry:      "Country",
	FieldEdLevel:      "Education Level",
	FieldYearsCodePro: "Years of Experience",
	FieldDevType:      "Developer Type",
	FieldRemoteWork:   "Remote Work",
	FieldAgeGroup:     "Age Group",
	FieldMainBranch:   "Primary Role",
}

// Fields returns every recognized field in presentation order.
func Fields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// ParseField resolves a field name. Matching is exact after trimming
// surrounding whitespace.
func ParseField(name string) (Field, error) {
	f := Field(strings.TrimSpace(name))
	if _, ok := fieldLabels[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

func (f Field) String() string { return string(f) }

// Label is the human readable caption shown next to the input.
func (f Field) Label() string {
	if label, ok := fieldLabels[f]; ok {
		return label
	}
	return string(f)
}

// Enumerated reports whether the field only accepts members of an option set.
func (f Field) Enumerated() bool {
	return f != FieldYearsCodePro && f.Valid()
}

// Valid reports whether f is a recognized field.
func (f Field) Valid() bool {
	_, ok := fieldLabels[f]
	return ok
}

// Placeholder is the hint shown for free text fields.
func (f Field) Placeholder() string {
	if f == FieldYearsCodePro {
		return "e.g., 5 or Less than 1 year"
	}
	return ""
}

// Options returns the choices for an enumerated field, or nil for free text
// and unknown fields.
func (f Field) Options() []Option {
	switch f {
	case FieldCountry:
		return countries.options()
	case FieldEdLevel:
		return edLevels.options()
	case FieldAgeGroup:
		return ageGroups.options()
	case FieldDevType:
		return devTypes.options()
	case FieldRemoteWork:
		return remoteWorkModes.options()
	case FieldMainBranch:
		return mainBranches.options()
	default:
		return nil
	}
}
