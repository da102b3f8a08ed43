package symptom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: []string{}},
		{name: "no match", text: "xyz", want: []string{}},
		{name: "single", text: "I have a fever", want: []string{"fever"}},
		{name: "case insensitive", text: "FEVER and Cough", want: []string{"fever", "cough"}},
		{name: "vocabulary order", text: "cough then fever", want: []string{"fever", "cough"}},
		{name: "substring terms", text: "chest pain since morning", want: []string{"chest pain", "pain"}},
		{name: "head hurts", text: "my head hurts", want: []string{"headache"}},
		{name: "head pain", text: "pain in my head", want: []string{"pain", "headache"}},
		{name: "throat hurts", text: "my throat hurts", want: []string{"sore throat"}},
		{name: "nose running", text: "my nose keeps running", want: []string{"runny nose"}},
		{name: "compound already found", text: "headache, my head hurts", want: []string{"headache", "ache"}},
		{name: "headache contains ache", text: "terrible headache", want: []string{"headache", "ache"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text).Items())
		})
	}
}

func TestExtract_EveryVocabularyTermOnce(t *testing.T) {
	for _, term := range Vocabulary {
		t.Run(term, func(t *testing.T) {
			text := "Well, " + strings.ToUpper(term) + " again and " + term + " all day"
			got := Extract(text).Items()

			count := 0
			for _, s := range got {
				if s == term {
					count++
				}
			}
			assert.Equal(t, 1, count, "extracted %v", got)
		})
	}
}

func TestSet(t *testing.T) {
	s := NewSet(" Fever ", "fever", "", "Cough")
	assert.Equal(t, []string{"fever", "cough"}, s.Items())
	assert.True(t, s.Contains("FEVER"))

	assert.False(t, s.Add("cough"))
	assert.True(t, s.Add("rash"))
	assert.Equal(t, 3, s.Len())

	assert.True(t, s.Remove("Fever"))
	assert.False(t, s.Remove("fever"))
	assert.Equal(t, []string{"cough", "rash"}, s.Items())

	items := s.Items()
	items[0] = "mutated"
	assert.Equal(t, "cough", s.Items()[0])
}
