// Package symptom pulls known symptom keywords out of free text.
package symptom

import "strings"

// Vocabulary is matched as plain substrings of the lower-cased text, in this order.
var Vocabulary = []string{
	"headache", "fever", "cough", "sore throat", "runny nose", "congestion",
	"chest pain", "shortness of breath", "dizziness", "nausea", "vomiting",
	"diarrhea", "fatigue", "weakness", "pain", "ache", "burning", "itching",
	"swelling", "rash", "bleeding", "difficulty breathing", "wheezing",
}

// compound infers a symptom from a body part plus any of the given verbs.
type compound struct {
	part    string
	verbs   []string
	symptom string
}

var compounds = []compound{
	{part: "head", verbs: []string{"hurt", "pain"}, symptom: "headache"},
	{part: "throat", verbs: []string{"hurt"}, symptom: "sore throat"},
	{part: "nose", verbs: []string{"run"}, symptom: "runny nose"},
}

// Extract returns the symptoms mentioned in text in order of discovery.
func Extract(text string) *Set {
	lower := strings.ToLower(text)
	found := NewSet()

	for _, s := range Vocabulary {
		if strings.Contains(lower, s) {
			found.Add(s)
		}
	}

	for _, c := range compounds {
		if !strings.Contains(lower, c.part) {
			continue
		}
		for _, v := range c.verbs {
			if strings.Contains(lower, v) {
				found.Add(c.symptom)
				break
			}
		}
	}

	return found
}

// Set is an insertion-ordered set of lower-case entries.
type Set struct {
	items []string
	index map[string]struct{}
}

func NewSet(items ...string) *Set {
	s := &Set{index: make(map[string]struct{})}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add trims and lower-cases item. Blank and duplicate entries are ignored.
// It reports whether the set changed.
func (s *Set) Add(item string) bool {
	item = strings.ToLower(strings.TrimSpace(item))
	if item == "" {
		return false
	}
	if _, ok := s.index[item]; ok {
		return false
	}
	s.index[item] = struct{}{}
	s.items = append(s.items, item)
	return true
}

func (s *Set) Remove(item string) bool {
	item = strings.ToLower(strings.TrimSpace(item))
	if _, ok := s.index[item]; !ok {
		return false
	}
	delete(s.index, item)
	for i, v := range s.items {
		if v == item {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return true
}

func (s *Set) Contains(item string) bool {
	_, ok := s.index[strings.ToLower(strings.TrimSpace(item))]
	return ok
}

func (s *Set) Len() int {
	return len(s.items)
}

// Items returns a copy of the entries in insertion order. Never nil.
func (s *Set) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
