package profile

import (
	"fmt"
	"strings"
)

// Option is one selectable choice. Value is what the prediction service
// receives; Label is what the user sees.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// optionSet maps a closed enumeration onto its wire values. Members are
// numbered from 1 so the zero value is never a valid selection.
type optionSet[T ~int] struct {
	field  Field
	values []string
	labels map[string]string
}

func (s optionSet[T]) value(v T) string {
	i := int(v) - 1
	if i < 0 || i >= len(s.values) {
		return ""
	}
	return s.values[i]
}

func (s optionSet[T]) label(v T) string {
	value := s.value(v)
	if label, ok := s.labels[value]; ok {
		return label
	}
	return value
}

func (s optionSet[T]) parse(raw string) (T, error) {
	trimmed := strings.TrimSpace(raw)
	for i, v := range s.values {
		if v == trimmed {
			return T(i + 1), nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownOption, s.field, raw)
}

func (s optionSet[T]) marshal(v T) ([]byte, error) {
	value := s.value(v)
	if value == "" {
		return nil, fmt.Errorf("%w: %s #%d", ErrUnknownOption, s.field, int(v))
	}
	return []byte(value), nil
}

func (s optionSet[T]) members() []T {
	out := make([]T, len(s.values))
	for i := range s.values {
		out[i] = T(i + 1)
	}
	return out
}

func (s optionSet[T]) options() []Option {
	out := make([]Option, len(s.values))
	for i := range s.values {
		out[i] = Option{Value: s.values[i], Label: s.label(T(i + 1))}
	}
	return out
}

// Country is the respondent's country of residence.
type Country int

const (
	CountryUnitedStates Country = iota + 1
	CountryGermany
	CountryUnitedKingdom
	CountryUkraine
	CountryIndia
	CountryFrance
	CountryCanada
	CountryBrazil
	CountrySpain
	CountryItaly
	CountryNetherlands
	CountryAustralia
)

var countries = optionSet[Country]{
	field: FieldCountry,
	values: []string{
		"United States of America",
		"Germany",
		"United Kingdom of Great Britain and Northern Ireland",
		"Ukraine",
		"India",
		"France",
		"Canada",
		"Brazil",
		"Spain",
		"Italy",
		"Netherlands",
		"Australia",
	},
}

func ParseCountry(s string) (Country, error) { return countries.parse(s) }
func Countries() []Country                   { return countries.members() }
func (c Country) String() string             { return countries.value(c) }
func (c Country) Label() string              { return countries.label(c) }
func (c Country) MarshalText() ([]byte, error) {
	return countries.marshal(c)
}
func (c *Country) UnmarshalText(b []byte) (err error) {
	*c, err = countries.parse(string(b))
	return err
}

// EdLevel is the highest completed education, already bucketed.
type EdLevel int

const (
	EdLevelBachelors EdLevel = iota + 1
	EdLevelMasters
	EdLevelPostGrad
	EdLevelLessThanBachelors
)

var edLevels = optionSet[EdLevel]{
	field: FieldEdLevel,
	values: []string{
		"Bachelor’s degree",
		"Master’s degree",
		"Post grad",
		"Less than a Bachelors",
	},
}

func ParseEdLevel(s string) (EdLevel, error) { return edLevels.parse(s) }
func EdLevels() []EdLevel                    { return edLevels.members() }
func (e EdLevel) String() string             { return edLevels.value(e) }
func (e EdLevel) Label() string              { return edLevels.label(e) }
func (e EdLevel) MarshalText() ([]byte, error) {
	return edLevels.marshal(e)
}
func (e *EdLevel) UnmarshalText(b []byte) (err error) {
	*e, err = edLevels.parse(string(b))
	return err
}

// DevType is the respondent's main developer role.
type DevType int

const (
	DevTypeFullStack DevType = iota + 1
	DevTypeBackEnd
	DevTypeFrontEnd
	DevTypeMobile
	DevTypeEmbedded
	DevTypeEngineeringManager
	DevTypeDataScientist
	DevTypeDevOps
	DevTypeOther
)

var devTypes = optionSet[DevType]{
	field: FieldDevType,
	values: []string{
		"Developer, full-stack",
		"Developer, back-end",
		"Developer, front-end",
		"Developer, mobile",
		"Developer, embedded applications or devices",
		"Engineering manager",
		"Data scientist or machine learning specialist",
		"DevOps specialist",
		"Other (please specify):",
	},
	labels: map[string]string{
		"Other (please specify):": "Other",
	},
}

func ParseDevType(s string) (DevType, error) { return devTypes.parse(s) }
func DevTypes() []DevType                    { return devTypes.members() }
func (d DevType) String() string             { return devTypes.value(d) }
func (d DevType) Label() string              { return devTypes.label(d) }
func (d DevType) MarshalText() ([]byte, error) {
	return devTypes.marshal(d)
}
func (d *DevType) UnmarshalText(b []byte) (err error) {
	*d, err = devTypes.parse(string(b))
	return err
}

// RemoteWork is the respondent's working arrangement.
type RemoteWork int

const (
	RemoteWorkHybrid RemoteWork = iota + 1
	RemoteWorkFullyRemote
	RemoteWorkInPerson
)

var remoteWorkModes = optionSet[RemoteWork]{
	field: FieldRemoteWork,
	values: []string{
		"Hybrid (some remote, some in-person)",
		"Fully remote",
		"In-person",
	},
}

func ParseRemoteWork(s string) (RemoteWork, error) { return remoteWorkModes.parse(s) }
func RemoteWorkModes() []RemoteWork                { return remoteWorkModes.members() }
func (r RemoteWork) String() string                { return remoteWorkModes.value(r) }
func (r RemoteWork) Label() string                 { return remoteWorkModes.label(r) }
func (r RemoteWork) MarshalText() ([]byte, error) {
	return remoteWorkModes.marshal(r)
}
func (r *RemoteWork) UnmarshalText(b []byte) (err error) {
	*r, err = remoteWorkModes.parse(string(b))
	return err
}

// AgeGroup is the respondent's age bucket.
type AgeGroup int

const (
	AgeGroup25To34 AgeGroup = iota + 1
	AgeGroup35To44
	AgeGroup18To24
	AgeGroup45To54
	AgeGroup55To64
	AgeGroupUnder18
	AgeGroup65OrOlder
	AgeGroupUndisclosed
)

var ageGroups = optionSet[AgeGroup]{
	field: FieldAgeGroup,
	values: []string{
		"25-34 years old",
		"35-44 years old",
		"18-24 years old",
		"45-54 years old",
		"55-64 years old",
		"Under 18 years old",
		"65 years or older",
		"Prefer not to say",
	},
}

func ParseAgeGroup(s string) (AgeGroup, error) { return ageGroups.parse(s) }
func AgeGroups() []AgeGroup                    { return ageGroups.members() }
func (a AgeGroup) String() string              { return ageGroups.value(a) }
func (a AgeGroup) Label() string               { return ageGroups.label(a) }
func (a AgeGroup) MarshalText() ([]byte, error) {
	return ageGroups.marshal(a)
}
func (a *AgeGroup) UnmarshalText(b []byte) (err error) {
	*a, err = ageGroups.parse(string(b))
	return err
}

// MainBranch is the respondent's primary role bucket. Only one bucket exists
// for now.
type MainBranch int

const (
	MainBranchFullTimeDeveloper MainBranch = iota + 1
)

var mainBranches = optionSet[MainBranch]{
	field: FieldMainBranch,
	values: []string{
		"Full time developer",
	},
}

func ParseMainBranch(s string) (MainBranch, error) { return mainBranches.parse(s) }
func MainBranches() []MainBranch                   { return mainBranches.members() }
func (m MainBranch) String() string                { return mainBranches.value(m) }
func (m MainBranch) Label() string                 { return mainBranches.label(m) }
func (m MainBranch) MarshalText() ([]byte, error) {
	return mainBranches.marshal(m)
}
func (m *MainBranch) UnmarshalText(b []byte) (err error) {
	*m, err = mainBranches.parse(string(b))
	return err
}
