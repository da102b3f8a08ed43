package explain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-assistant/internal/diagnosis"
)

func TestSymptomWeight(t *testing.T) {
	assert.Equal(t, 70.0, SymptomWeight("fever"))
	assert.Equal(t, 85.0, SymptomWeight("Chest Pain"))
	assert.Equal(t, 30.0, SymptomWeight("hiccups"))
}

func TestSymptomImpact(t *testing.T) {
	assert.Equal(t, ImpactHigh, SymptomImpact("severe pain"))
	assert.Equal(t, ImpactMedium, SymptomImpact("nausea"))
	assert.Equal(t, ImpactLow, SymptomImpact("cough"))
}

func TestFactors(t *testing.T) {
	top := diagnosis.Diagnosis{
		Condition:            "Heart Attack",
		ConfidencePercentage: "87.5%",
		ConfidenceLevel:      "Very High",
		MatchedSymptoms:      []string{"chest pain", "sweating"},
	}

	factors, err := Factors(top, 4)
	require.NoError(t, err)

	assert.Equal(t, []Factor{
		{Label: "Presence of: chest pain", Impact: ImpactHigh, Weight: 85},
		{Label: "Presence of: sweating", Impact: ImpactLow, Weight: 30},
		{Label: "Number of symptoms (4)", Impact: ImpactHigh, Weight: 40},
		{Label: "Symptom specificity", Impact: ImpactHigh, Weight: 87.5},
	}, factors)
}

func TestFactors_Tiers(t *testing.T) {
	tests := []struct {
		count       int
		level       string
		wantCount   Impact
		wantSpecif  Impact
		wantCountWt float64
	}{
		{count: 1, level: "Low", wantCount: ImpactLow, wantSpecif: ImpactLow, wantCountWt: 10},
		{count: 2, level: "High", wantCount: ImpactMedium, wantSpecif: ImpactMedium, wantCountWt: 20},
		{count: 3, level: "Moderate", wantCount: ImpactMedium, wantSpecif: ImpactLow, wantCountWt: 30},
		{count: 5, level: "Very High", wantCount: ImpactHigh, wantSpecif: ImpactHigh, wantCountWt: 50},
	}
	for _, tt := range tests {
		factors, err := Factors(diagnosis.Diagnosis{ConfidencePercentage: "50%", ConfidenceLevel: tt.level}, tt.count)
		require.NoError(t, err)
		require.Len(t, factors, 2)
		assert.Equal(t, tt.wantCount, factors[0].Impact)
		assert.Equal(t, tt.wantCountWt, factors[0].Weight)
		assert.Equal(t, tt.wantSpecif, factors[1].Impact)
		assert.Equal(t, 50.0, factors[1].Weight)
	}
}

func TestFactors_MalformedConfidence(t *testing.T) {
	_, err := Factors(diagnosis.Diagnosis{ConfidencePercentage: "n/a"}, 1)
	assert.Error(t, err)
}

func TestChart(t *testing.T) {
	ds := []diagnosis.Diagnosis{
		{Condition: "A", ConfidencePercentage: "90%"},
		{Condition: "B", ConfidencePercentage: "bad"},
		{Condition: "C", ConfidencePercentage: "50%"},
		{Condition: "D", ConfidencePercentage: "40%"},
		{Condition: "E", ConfidencePercentage: "30%"},
		{Condition: "F", ConfidencePercentage: "20%"},
	}
	series := Chart(ds)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, series.Labels)
	assert.Equal(t, []float64{90, 0, 50, 40, 30}, series.Values)

	empty := Chart(nil)
	assert.Empty(t, empty.Labels)
}
