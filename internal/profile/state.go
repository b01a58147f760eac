package profile

import "fmt"

// FormState holds the current value of every profile field. It is a plain
// value: edits produce a new FormState via With.
//
// The JSON encoding is the prediction request payload: exactly the seven
// field names, each with a string value.
type FormState struct {
	Country      Country    `json:"Country"`
	EdLevel      EdLevel    `json:"EdLevel"`
	AgeGroup     AgeGroup   `json:"Age_group"`
	DevType      DevType    `json:"DevType"`
	RemoteWork   RemoteWork `json:"RemoteWork"`
	MainBranch   MainBranch `json:"MainBranch"`
	YearsCodePro string     `json:"YearsCodePro"`
}

// DefaultState is the form as first presented.
func DefaultState() FormState {
	return FormState{
		Country:      CountryUnitedStates,
		EdLevel:      EdLevelBachelors,
		AgeGroup:     AgeGroup25To34,
		DevType:      DevTypeFullStack,
		RemoteWork:   RemoteWorkHybrid,
		MainBranch:   MainBranchFullTimeDeveloper,
		YearsCodePro: "5",
	}
}

// Get returns the wire value of a field, or "" for unknown fields.
func (s FormState) Get(f Field) string {
	switch f {
	case FieldCountry:
		return s.Country.String()
	case FieldEdLevel:
		return s.EdLevel.String()
	case FieldAgeGroup:
		return s.AgeGroup.String()
	case FieldDevType:
		return s.DevType.String()
	case FieldRemoteWork:
		return s.RemoteWork.String()
	case FieldMainBranch:
		return s.MainBranch.String()
	case FieldYearsCodePro:
		return s.YearsCodePro
	default:
		return ""
	}
}

// With returns a copy of s with one field replaced. Enumerated fields must
// receive a member of their option set; YearsCodePro takes any text and is
// left for the prediction service to interpret.
func (s FormState) With(f Field, value string) (FormState, error) {
	var err error
	switch f {
	case FieldCountry:
		s.Country, err = ParseCountry(value)
	case FieldEdLevel:
		s.EdLevel, err = ParseEdLevel(value)
	case FieldAgeGroup:
		s.AgeGroup, err = ParseAgeGroup(value)
	case FieldDevType:
		s.DevType, err = ParseDevType(value)
	case FieldRemoteWork:
		s.RemoteWork, err = ParseRemoteWork(value)
	case FieldMainBranch:
		s.MainBranch, err = ParseMainBranch(value)
	case FieldYearsCodePro:
		s.YearsCodePro = value
	default:
		return FormState{}, fmt.Errorf("%w: %q", ErrUnknownField, string(f))
	}
	if err != nil {
		return FormState{}, err
	}
	return s, nil
}

// Values returns the state as a field name to wire value map.
func (s FormState) Values() map[string]string {
	out := make(map[string]string, len(fieldOrder))
	for _, f := range fieldOrder {
		out[string(f)] = s.Get(f)
	}
	return out
}
