package diagnosis

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"medical-assistant/internal/platform/apperr"
)

// Urgency is the overall urgency level reported by the diagnosis service.
type Urgency string

const (
	UrgencyLow       Urgency = "LOW"
	UrgencyModerate  Urgency = "MODERATE"
	UrgencyUrgent    Urgency = "URGENT"
	UrgencyEmergency Urgency = "EMERGENCY"
)

const SeverityCritical = "CRITICAL"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender accepts the form values case-insensitively.
// An empty string yields nil, meaning "not provided".
func ParseGender(s string) (*Gender, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	g := Gender(s)
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return &g, nil
	}
	return nil, apperr.Validation(fmt.Sprintf("unsupported gender %q", s))
}

// Request is the body of POST /diagnose.
type Request struct {
	Symptoms           []string `json:"symptoms"`
	Age                *int     `json:"age"`
	Gender             *Gender  `json:"gender"`
	MedicalHistory     []string `json:"medical_history"`
	CurrentMedications []string `json:"current_medications"`
	Allergies          []string `json:"allergies"`
}

// NewRequest builds a request whose list fields are never nil.
// Medications and allergies are not collected by any flow and stay empty.
func NewRequest(symptoms []string, age *int, gender *Gender, history []string) Request {
	return Request{
		Symptoms:           nonNil(symptoms),
		Age:                age,
		Gender:             gender,
		MedicalHistory:     nonNil(history),
		CurrentMedications: []string{},
		Allergies:          []string{},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

type Diagnosis struct {
	Rank                 int      `json:"rank,omitempty"`
	Condition            string   `json:"condition"`
	ConfidencePercentage string   `json:"confidence_percentage"`
	ConfidenceLevel      string   `json:"confidence_level"`
	Severity             string   `json:"severity"`
	MatchedSymptoms      []string `json:"matched_symptoms"`
	RecommendedAction    string   `json:"recommended_action"`
	AdditionalInfo       string   `json:"additional_info"`
	RiskFactors          []string `json:"risk_factors"`
	KeyIndicators        []string `json:"key_indicators,omitempty"`
}

// ConfidencePercent parses values like "87.5%" without float rounding noise.
func (d Diagnosis) ConfidencePercent() (decimal.Decimal, error) {
	raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(d.ConfidencePercentage), "%"))
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("confidence percentage %q: %w", d.ConfidencePercentage, err)
	}
	return v, nil
}

// IsCritical matches the backend's severity value exactly.
func (d Diagnosis) IsCritical() bool {
	return d.Severity == SeverityCritical
}

// Result is the response of POST /diagnose. Every field may be absent.
type Result struct {
	Diagnoses       []Diagnosis `json:"diagnoses"`
	UrgencyLevel    Urgency     `json:"urgency_level,omitempty"`
	ImmediateAction string      `json:"immediate_action,omitempty"`
	AIAnalysis      string      `json:"ai_analysis,omitempty"`
	TotalMatches    int         `json:"total_matches,omitempty"`
	InputSymptoms   []string    `json:"input_symptoms,omitempty"`
	Timestamp       string      `json:"timestamp,omitempty"`
	Message         string      `json:"message,omitempty"`
	Recommendation  string      `json:"recommendation,omitempty"`
	Disclaimer      string      `json:"disclaimer,omitempty"`
}

func (r *Result) HasDiagnoses() bool {
	return r != nil && len(r.Diagnoses) > 0
}

// Top returns the highest ranked diagnosis.
func (r *Result) Top() (Diagnosis, bool) {
	if !r.HasDiagnoses() {
		return Diagnosis{}, false
	}
	return r.Diagnoses[0], true
}

// Urgency returns the reported level, LOW when the service left it blank.
func (r *Result) Urgency() Urgency {
	if r == nil || r.UrgencyLevel == "" {
		return UrgencyLow
	}
	return Urgency(strings.ToUpper(string(r.UrgencyLevel)))
}

// Health is the body of GET /health-check.
type Health struct {
	Status             string `json:"status"`
	Version            string `json:"version,omitempty"`
	Timestamp          string `json:"timestamp,omitempty"`
	DatabaseConditions int    `json:"database_conditions,omitempty"`
	AIEnabled          bool   `json:"ai_enabled"`
}

// FallbackResult is shown by the diagnosis form when the service cannot be reached.
func FallbackResult(symptoms []string) *Result {
	matched := nonNil(symptoms)
	if len(matched) > 3 {
		matched = matched[:3]
	}
	return &Result{
		UrgencyLevel:    UrgencyModerate,
		ImmediateAction: "Monitor symptoms and consider seeing a healthcare provider if they worsen",
		Diagnoses: []Diagnosis{
			{
				Rank:                 1,
				Condition:            "Common Cold",
				ConfidencePercentage: "75%",
				ConfidenceLevel:      "High",
				Severity:             "MILD",
				MatchedSymptoms:      matched,
				RecommendedAction:    "Rest, stay hydrated, and monitor symptoms",
				AdditionalInfo:       "Symptoms typically resolve within 7-10 days",
				RiskFactors:          []string{"Seasonal changes", "Close contact with others"},
			},
		},
		AIAnalysis: "Based on the symptoms provided, this appears to be a common viral infection. Rest and supportive care are recommended.",
	}
}
