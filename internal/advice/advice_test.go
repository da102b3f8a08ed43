package advice

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, []string{
		"asthma attack",
		"common cold",
		"general wellness",
		"migraine",
		"tension headache",
		"urinary tract infection",
	}, c.ConditionNames())
	assert.NotEmpty(t, c.Default.FollowupAdvice)
}

func TestGenerate_Validation(t *testing.T) {
	c := DefaultCatalog()

	_, err := c.Generate(Request{Severity: SeverityMild}, fixedNow)
	assert.ErrorIs(t, err, ErrConditionRequired)

	_, err = c.Generate(Request{Condition: "Migraine", Severity: "Severe"}, fixedNow)
	assert.ErrorIs(t, err, ErrSevere)
}

func TestGenerate(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		name  string
		req   Request
		check func(t *testing.T, rec *Recommendations)
	}{
		{
			name: "mild adult uses catalog entry",
			req:  Request{Condition: "Common Cold", Severity: SeverityMild, Age: 30},
			check: func(t *testing.T, rec *Recommendations) {
				assert.Equal(t, "Common Cold", rec.Condition)
				assert.Len(t, rec.OTCMedications, 3)
				assert.Equal(t, "See a healthcare provider if symptoms worsen or persist beyond 10 days.", rec.FollowupAdvice)
				assert.Empty(t, rec.AllergyWarning)
				assert.Equal(t, 70, rec.Weight)
			},
		},
		{
			name: "moderate prefixes follow-up",
			req:  Request{Condition: "migraine", Severity: SeverityModerate},
			check: func(t *testing.T, rec *Recommendations) {
				assert.True(t, strings.HasPrefix(rec.FollowupAdvice, "Consider seeing a healthcare provider sooner. "))
				assert.Equal(t, 25, rec.Age)
			},
		},
		{
			name: "pediatric dosing note",
			req:  Request{Condition: "tension headache", Severity: SeverityMild, Age: 12},
			check: func(t *testing.T, rec *Recommendations) {
				for _, med := range rec.OTCMedications {
					assert.True(t, strings.HasSuffix(med, "(Pediatric dosing - consult pharmacist or healthcare provider)"), med)
				}
			},
		},
		{
			name: "senior dosing note",
			req:  Request{Condition: "general wellness", Age: 70},
			check: func(t *testing.T, rec *Recommendations) {
				for _, med := range rec.OTCMedications {
					assert.True(t, strings.HasSuffix(med, "(Senior dosing may differ - consult pharmacist)"), med)
				}
			},
		},
		{
			name: "unknown condition falls back to defaults",
			req:  Request{Condition: "Gout", Allergies: "penicillin"},
			check: func(t *testing.T, rec *Recommendations) {
				assert.Equal(t, []string{"Consult healthcare provider for specific recommendations"}, rec.OTCMedications)
				assert.Equal(t, "⚠️ Patient has allergies to: penicillin. Verify all medications are safe.", rec.AllergyWarning)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := c.Generate(tt.req, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, fixedNow, rec.Timestamp)
			tt.check(t, rec)
		})
	}
}

func TestGenerate_DoesNotMutateCatalog(t *testing.T) {
	c := DefaultCatalog()

	_, err := c.Generate(Request{Condition: "migraine", Age: 10}, fixedNow)
	require.NoError(t, err)

	rec, err := c.Generate(Request{Condition: "migraine", Age: 40}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofen (Advil) 600mg at onset", rec.OTCMedications[0])
}

func TestLoadCatalog_Invalid(t *testing.T) {
	_, err := LoadCatalog([]byte("conditions: [unterminated"))
	assert.Error(t, err)
}
