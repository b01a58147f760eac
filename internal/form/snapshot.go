package form

import (
	"salary-predictor/internal/prediction"
	"salary-predictor/internal/profile"

	"github.com/shopspring/decimal"
)

// Status is the submission lifecycle of a form.
type Status int

const (
	StatusIdle Status = iota
	StatusInFlight
	StatusSettled
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusInFlight:
		return "in-flight"
	case StatusSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of a form. Prediction and Error are never
// both set; both are unset until the first submission settles.
type Snapshot struct {
	Values     profile.FormState
	Status     Status
	Prediction decimal.NullDecimal
	Error      string
}

// SubmitEnabled reports whether the submit control should be active.
func (s Snapshot) SubmitEnabled() bool {
	return s.Status != StatusInFlight
}

// Indicator is the submit control's caption.
func (s Snapshot) Indicator() string {
	if s.Status == StatusInFlight {
		return "Predicting..."
	}
	return "Predict Salary"
}

// FormattedPrediction renders the prediction with digit grouping, or "" when
// there is none.
func (s Snapshot) FormattedPrediction() string {
	if !s.Prediction.Valid {
		return ""
	}
	return prediction.FormatSalary(s.Prediction.Decimal)
}
