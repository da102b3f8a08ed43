// Package explain derives the presentational "why" behind the top diagnosis.
package explain

import (
	"fmt"
	"strings"

	"medical-assistant/internal/diagnosis"
)

type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

const defaultWeight = 30

var symptomImpact = map[string]Impact{
	"chest pain":           ImpactHigh,
	"difficulty breathing": ImpactHigh,
	"severe pain":          ImpactHigh,
	"fever":                ImpactMedium,
	"headache":             ImpactMedium,
	"nausea":               ImpactMedium,
}

var symptomWeight = map[string]float64{
	"chest pain":           85,
	"difficulty breathing": 80,
	"fever":                70,
	"headache":             60,
	"nausea":               50,
	"cough":                40,
}

// Factor is one contributing line in the explanation panel.
type Factor struct {
	Label  string  `json:"factor"`
	Impact Impact  `json:"impact"`
	Weight float64 `json:"weight"`
}

func SymptomImpact(symptom string) Impact {
	if impact, ok := symptomImpact[strings.ToLower(strings.TrimSpace(symptom))]; ok {
		return impact
	}
	return ImpactLow
}

func SymptomWeight(symptom string) float64 {
	if w, ok := symptomWeight[strings.ToLower(strings.TrimSpace(symptom))]; ok {
		return w
	}
	return defaultWeight
}

// Factors explains top given how many symptoms the user reported.
// It fails only when the confidence percentage cannot be parsed.
func Factors(top diagnosis.Diagnosis, symptomCount int) ([]Factor, error) {
	pct, err := top.ConfidencePercent()
	if err != nil {
		return nil, err
	}

	factors := make([]Factor, 0, len(top.MatchedSymptoms)+2)
	for _, s := range top.MatchedSymptoms {
		factors = append(factors, Factor{
			Label:  "Presence of: " + s,
			Impact: SymptomImpact(s),
			Weight: SymptomWeight(s),
		})
	}

	factors = append(factors, Factor{
		Label:  fmt.Sprintf("Number of symptoms (%d)", symptomCount),
		Impact: countImpact(symptomCount),
		Weight: float64(symptomCount * 10),
	})

	factors = append(factors, Factor{
		Label:  "Symptom specificity",
		Impact: confidenceImpact(top.ConfidenceLevel),
		Weight: pct.InexactFloat64(),
	})

	return factors, nil
}

func countImpact(n int) Impact {
	switch {
	case n > 3:
		return ImpactHigh
	case n > 1:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

func confidenceImpact(level string) Impact {
	switch level {
	case "Very High":
		return ImpactHigh
	case "High":
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// ChartSeries feeds the confidence bar chart.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

const chartLimit = 5

// Chart returns the first five diagnoses. Unparseable confidences plot as zero.
func Chart(diagnoses []diagnosis.Diagnosis) ChartSeries {
	n := len(diagnoses)
	if n > chartLimit {
		n = chartLimit
	}
	series := ChartSeries{
		Labels: make([]string, 0, n),
		Values: make([]float64, 0, n),
	}
	for _, d := range diagnoses[:n] {
		series.Labels = append(series.Labels, d.Condition)
		v, err := d.ConfidencePercent()
		if err != nil {
			series.Values = append(series.Values, 0)
			continue
		}
		series.Values = append(series.Values, v.InexactFloat64())
	}
	return series
}
