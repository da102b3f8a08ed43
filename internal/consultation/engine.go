package consultation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"medical-assistant/internal/diagnosis"
	"medical-assistant/internal/symptom"
)

const (
	WelcomeMessage = "Hello! I'm your AI medical assistant. I can help you understand your symptoms and provide health guidance. Please describe what you're experiencing."

	Disclaimer = "Please note: This is for informational purposes only and doesn't replace professional medical advice."

	ApologyMessage = "I'm sorry, I'm having trouble processing your request right now. Please try again or consult a healthcare professional if this is urgent."

	emergencyReply       = "This sounds like it could be a medical emergency. Please call 911 or go to the nearest emergency room immediately."
	emergencyInstruction = "Seek immediate emergency medical care"
	greetingReply        = "Hello! I'm here to help you with your health concerns. Please tell me about any symptoms you're experiencing, and I'll do my best to provide helpful information."
	thanksReply          = "You're welcome! Remember, if your symptoms worsen or you're concerned, don't hesitate to contact a healthcare professional. Is there anything else I can help you with?"
	medicationReply      = "I can provide general information about over-the-counter remedies, but I cannot prescribe medications. For prescription medications, please consult with a licensed healthcare provider. Would you like some general wellness recommendations instead?"
	pleasantryReply      = "I'm doing well, thank you for asking! I'm here to help you with any health-related questions or concerns you might have. How can I assist you today?"
	restateReply         = "I understand you have a health concern. Could you please describe your specific symptoms? For example, you could say 'I have a headache and fever' or 'I'm feeling dizzy and nauseous'. The more specific you are, the better I can help!"

	criticalBanner = "⚠️ **This appears to be a medical emergency. Please seek immediate medical attention.**"
	closingNote    = "*Remember: This is for informational purposes only. Always consult with a healthcare professional for proper medical advice.*"
)

var (
	emergencyKeywords  = []string{"emergency", "call 911", "chest pain", "can't breathe", "unconscious", "severe pain"}
	greetingKeywords   = []string{"hello", "hi"}
	medicationKeywords = []string{"medication", "medicine"}
	pleasantryKeywords = []string{"how are you", "good morning", "good afternoon"}
)

// Diagnoser is the part of the diagnosis service the engine needs.
type Diagnoser interface {
	Diagnose(ctx context.Context, req diagnosis.Request) (*diagnosis.Result, error)
}

// Engine turns one utterance into one assistant reply.
type Engine struct {
	diagnoser Diagnoser
}

func NewEngine(d Diagnoser) *Engine {
	return &Engine{diagnoser: d}
}

// Route asks the diagnosis service when the utterance names symptoms and
// falls back to the canned rules otherwise. Collaborator failures never
// surface; the only error is a context that is already done.
func (e *Engine) Route(ctx context.Context, s *Session, utterance string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	symptoms := symptom.Extract(utterance)
	if symptoms.Len() > 0 {
		if reply, ok := e.analyse(ctx, symptoms.Items()); ok {
			return reply, nil
		}
	}

	reply := CannedReply(s, utterance)
	reply.Symptoms = symptoms.Items()
	return reply, nil
}

func (e *Engine) analyse(ctx context.Context, symptoms []string) (Reply, bool) {
	res, err := e.diagnoser.Diagnose(ctx, diagnosis.NewRequest(symptoms, nil, nil, nil))
	if err != nil {
		log.Warn().Err(err).Strs("symptoms", symptoms).Msg("diagnosis unavailable, using canned reply")
		return Reply{}, false
	}

	top, ok := res.Top()
	if !ok || strings.TrimSpace(top.Condition) == "" {
		log.Info().Strs("symptoms", symptoms).Msg("diagnosis returned no usable conditions")
		return Reply{}, false
	}

	return Reply{
		Text:             FormatTopLine(top),
		Urgency:          res.Urgency(),
		EmergencyMessage: res.ImmediateAction,
		Source:           SourceDiagnosis,
		Symptoms:         symptoms,
		Result:           res,
	}, true
}

// CannedReply applies the local rules in order; the first match wins.
// The pleasantry rule clears the session's first-turn flag.
func CannedReply(s *Session, utterance string) Reply {
	lower := strings.ToLower(utterance)
	low := func(text string) Reply {
		return Reply{Text: text, Urgency: diagnosis.UrgencyLow, Source: SourceRules}
	}

	switch {
	case containsAny(lower, emergencyKeywords...):
		return Reply{
			Text:             emergencyReply,
			Urgency:          diagnosis.UrgencyEmergency,
			EmergencyMessage: emergencyInstruction,
			Source:           SourceRules,
		}
	case containsAny(lower, greetingKeywords...):
		return low(greetingReply)
	case strings.Contains(lower, "thank"):
		return low(thanksReply)
	case containsAny(lower, medicationKeywords...):
		return low(medicationReply)
	case s.IsFirstTurn() || containsAny(lower, pleasantryKeywords...):
		s.markGreeted()
		return low(pleasantryReply)
	}
	return low(restateReply)
}

func containsAny(text string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func FormatTopLine(top diagnosis.Diagnosis) string {
	var b strings.Builder
	b.WriteString("Based on your symptoms, here's what I found:\n\n")
	fmt.Fprintf(&b, "**Most likely condition:** %s\n", top.Condition)
	fmt.Fprintf(&b, "**Confidence:** %s\n\n", top.ConfidenceLevel)
	fmt.Fprintf(&b, "**Recommended action:** %s\n\n", top.RecommendedAction)
	if top.IsCritical() {
		b.WriteString(criticalBanner)
	}
	b.WriteString("\n\n")
	b.WriteString(closingNote)
	return b.String()
}

const detailLimit = 3

// FormatDetail lists up to the first three diagnoses. It returns "" for an
// empty result.
func FormatDetail(res *diagnosis.Result) string {
	if !res.HasDiagnoses() {
		return ""
	}
	var b strings.Builder
	b.WriteString("Here's a more detailed analysis:\n\n")
	for i, d := range res.Diagnoses {
		if i == detailLimit {
			break
		}
		fmt.Fprintf(&b, "%d. **%s** (%s)\n", i+1, d.Condition, d.ConfidencePercentage)
		fmt.Fprintf(&b, "   Action: %s\n\n", d.RecommendedAction)
	}
	return b.String()
}
