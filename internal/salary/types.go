package salary

import (
	"salary-predictor/internal/form"
	"salary-predictor/internal/profile"

	"github.com/shopspring/decimal"
)

// FormView is the JSON rendering of a form snapshot.
type FormView struct {
	Values                 profile.FormState `json:"values"`
	Status                 string            `json:"status"`
	SubmitEnabled          bool              `json:"submit_enabled"`
	Indicator              string            `json:"indicator"`
	PredictedSalary        *decimal.Decimal  `json:"predicted_salary,omitempty"`
	PredictedSalaryDisplay string            `json:"predicted_salary_display,omitempty"`
	Error                  string            `json:"error,omitempty"`
}

func newFormView(s form.Snapshot) FormView {
	v := FormView{
		Values:        s.Values,
		Status:        s.Status.String(),
		SubmitEnabled: s.SubmitEnabled(),
		Indicator:     s.Indicator(),
		Error:         s.Error,
	}
	if s.Prediction.Valid {
		amount := s.Prediction.Decimal
		v.PredictedSalary = &amount
		v.PredictedSalaryDisplay = s.FormattedPrediction()
	}
	return v
}

// FieldUpdateRequest is the body of PUT /api/form/fields/{field}.
type FieldUpdateRequest struct {
	Value *string `json:"value"`
}

// FieldOptions describes one input for GET /api/options.
type FieldOptions struct {
	Field       string           `json:"field"`
	Label       string           `json:"label"`
	Placeholder string           `json:"placeholder,omitempty"`
	Options     []profile.Option `json:"options,omitempty"`
}

func allFieldOptions() []FieldOptions {
	fields := profile.Fields()
	out := make([]FieldOptions, 0, len(fields))
	for _, f := range fields {
		out = append(out, FieldOptions{
			Field:       f.String(),
			Label:       f.Label(),
			Placeholder: f.Placeholder(),
			Options:     f.Options(),
		})
	}
	return out
}
