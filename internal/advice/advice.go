// Package advice produces general wellness recommendations for a condition the
// user picked. It never prescribes; severe cases are refused outright.
package advice

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"medical-assistant/internal/platform/apperr"
)

//go:embed catalog.yaml
var catalogYAML []byte

const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"

	defaultAge    = 25
	defaultWeight = 70
)

var (
	ErrConditionRequired = apperr.Validation("Please select a condition first.")
	ErrSevere            = apperr.Validation("For severe symptoms, please consult a healthcare professional immediately.")
)

type entry struct {
	OTCMedications           []string `yaml:"otc_medications"`
	HomeRemedies             []string `yaml:"home_remedies"`
	LifestyleRecommendations []string `yaml:"lifestyle_recommendations"`
	WarningSigns             []string `yaml:"warning_signs"`
	FollowupAdvice           string   `yaml:"followup_advice"`
}

// Catalog holds the per-condition recommendations.
type Catalog struct {
	Conditions map[string]entry `yaml:"conditions"`
	Default    entry            `yaml:"default"`
}

// LoadCatalog parses a catalog document.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse advice catalog: %w", err)
	}
	return &c, nil
}

// DefaultCatalog is the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Request mirrors the recommendations form. Zero Age and Weight mean "not given".
type Request struct {
	Condition string `json:"condition"`
	Severity  string `json:"severity"`
	Age       int    `json:"age"`
	Weight    int    `json:"weight"`
	Allergies string `json:"allergies"`
}

type Recommendations struct {
	Condition                string    `json:"condition"`
	Severity                 string    `json:"severity"`
	Age                      int       `json:"age"`
	Weight                   int       `json:"weight"`
	Timestamp                time.Time `json:"timestamp"`
	OTCMedications           []string  `json:"otc_medications"`
	HomeRemedies             []string  `json:"home_remedies"`
	LifestyleRecommendations []string  `json:"lifestyle_recommendations"`
	WarningSigns             []string  `json:"warning_signs"`
	FollowupAdvice           string    `json:"followup_advice"`
	AllergyWarning           string    `json:"allergy_warning,omitempty"`
}

// ConditionNames lists the catalog's conditions alphabetically.
func (c *Catalog) ConditionNames() []string {
	out := make([]string, 0, len(c.Conditions))
	for name := range c.Conditions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Generate(req Request, now time.Time) (*Recommendations, error) {
	condition := strings.TrimSpace(req.Condition)
	if condition == "" {
		return nil, ErrConditionRequired
	}
	severity := strings.ToLower(strings.TrimSpace(req.Severity))
	if severity == SeveritySevere {
		return nil, ErrSevere
	}

	age := req.Age
	if age <= 0 {
		age = defaultAge
	}
	weight := req.Weight
	if weight <= 0 {
		weight = defaultWeight
	}

	e, ok := c.Conditions[strings.ToLower(condition)]
	if !ok {
		e = c.Default
	}

	rec := &Recommendations{
		Condition:                condition,
		Severity:                 severity,
		Age:                      age,
		Weight:                   weight,
		Timestamp:                now,
		OTCMedications:           clone(e.OTCMedications),
		HomeRemedies:             clone(e.HomeRemedies),
		LifestyleRecommendations: clone(e.LifestyleRecommendations),
		WarningSigns:             clone(e.WarningSigns),
		FollowupAdvice:           e.FollowupAdvice,
	}

	if severity == SeverityModerate {
		rec.FollowupAdvice = "Consider seeing a healthcare provider sooner. " + rec.FollowupAdvice
	}

	switch {
	case age < 18:
		suffix(rec.OTCMedications, " (Pediatric dosing - consult pharmacist or healthcare provider)")
	case age > 65:
		suffix(rec.OTCMedications, " (Senior dosing may differ - consult pharmacist)")
	}

	if allergies := strings.TrimSpace(req.Allergies); allergies != "" {
		rec.AllergyWarning = fmt.Sprintf("⚠️ Patient has allergies to: %s. Verify all medications are safe.", allergies)
	}

	return rec, nil
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func suffix(items []string, s string) {
	for i := range items {
		items[i] += s
	}
}
