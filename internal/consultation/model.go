package consultation

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"medical-assistant/internal/diagnosis"
	"medical-assistant/internal/explain"
	"medical-assistant/internal/report"
	"medical-assistant/internal/symptom"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

type Turn struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Source tells which path produced a reply.
type Source string

const (
	SourceDiagnosis Source = "diagnosis"
	SourceRules     Source = "rules"
	SourceApology   Source = "apology"
)

// Reply is the assistant's answer to one utterance.
type Reply struct {
	Text             string            `json:"message"`
	Urgency          diagnosis.Urgency `json:"urgency"`
	EmergencyMessage string            `json:"emergency_message,omitempty"`
	Source           Source            `json:"source"`
	Symptoms         []string          `json:"symptoms,omitempty"`
	Result           *diagnosis.Result `json:"diagnosis,omitempty"`
}

// Session is one browser conversation. It lives only in memory.
//
// busy is true exactly while a diagnosis request is in flight; the remaining
// fields are guarded by mu because handlers run on separate goroutines.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	busy atomic.Bool

	mu             sync.Mutex
	history        []Turn
	firstTurn      bool
	symptoms       *symptom.Set
	medicalHistory *symptom.Set
}

func NewSession(now time.Time) *Session {
	return &Session{
		ID:             uuid.New(),
		CreatedAt:      now,
		history:        []Turn{},
		firstTurn:      true,
		symptoms:       symptom.NewSet(),
		medicalHistory: symptom.NewSet(),
	}
}

// TryBegin moves the session from idle to sending. It reports false, and
// changes nothing, when a request is already in flight.
func (s *Session) TryBegin() bool {
	return s.busy.CompareAndSwap(false, true)
}

func (s *Session) End() {
	s.busy.Store(false)
}

func (s *Session) Busy() bool {
	return s.busy.Load()
}

func (s *Session) IsFirstTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstTurn
}

func (s *Session) markGreeted() {
	s.mu.Lock()
	s.firstTurn = false
	s.mu.Unlock()
}

func (s *Session) AppendTurn(sender Sender, text string, at time.Time) Turn {
	t := Turn{Sender: sender, Text: text, Timestamp: at}
	s.mu.Lock()
	s.history = append(s.history, t)
	s.mu.Unlock()
	return t
}

func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// setForm replaces the diagnosis form lists.
func (s *Session) setForm(symptoms, history *symptom.Set) {
	s.mu.Lock()
	s.symptoms = symptoms
	s.medicalHistory = history
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.mu.Lock()
	s.history = []Turn{}
	s.firstTurn = true
	s.symptoms = symptom.NewSet()
	s.medicalHistory = symptom.NewSet()
	s.mu.Unlock()
}

func (s *Session) Snapshot(now time.Time) report.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]report.Message, 0, len(s.history))
	for _, t := range s.history {
		msgs = append(msgs, report.Message{Sender: string(t.Sender), Message: t.Text, Timestamp: t.Timestamp})
	}
	return report.Snapshot{
		ConsultationID: s.ID,
		Timestamp:      now,
		Messages:       msgs,
		Symptoms:       s.symptoms.Items(),
		MedicalHistory: s.medicalHistory.Items(),
	}
}

type SessionView struct {
	ID             uuid.UUID `json:"consultation_id"`
	CreatedAt      time.Time `json:"created_at"`
	Busy           bool      `json:"busy"`
	FirstTurn      bool      `json:"first_turn"`
	History        []Turn    `json:"history"`
	Symptoms       []string  `json:"symptoms"`
	MedicalHistory []string  `json:"medical_history"`
}

func (s *Session) View() SessionView {
	busy := s.Busy()
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]Turn, len(s.history))
	copy(history, s.history)
	return SessionView{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt,
		Busy:           busy,
		FirstTurn:      s.firstTurn,
		History:        history,
		Symptoms:       s.symptoms.Items(),
		MedicalHistory: s.medicalHistory.Items(),
	}
}

// ChatResponse is what one send produces.
type ChatResponse struct {
	Reply   Reply                `json:"reply"`
	Turns   []Turn               `json:"turns"`
	Factors []explain.Factor     `json:"factors,omitempty"`
	Chart   *explain.ChartSeries `json:"chart,omitempty"`
}

type AudioResponse struct {
	Text        string        `json:"text"`
	Chat        *ChatResponse `json:"chat,omitempty"`
	AudioBase64 string        `json:"audio_base64,omitempty"`
}

// Form is the structured diagnosis form.
type Form struct {
	Symptoms       []string `json:"symptoms"`
	Age            *int     `json:"age"`
	Gender         string   `json:"gender"`
	MedicalHistory []string `json:"medical_history"`
}

type DiagnosisOutcome struct {
	Result   *diagnosis.Result    `json:"result"`
	Fallback bool                 `json:"fallback"`
	Notice   string               `json:"notice,omitempty"`
	Factors  []explain.Factor     `json:"factors,omitempty"`
	Chart    *explain.ChartSeries `json:"chart,omitempty"`
}

type HealthStatus struct {
	Status           string            `json:"status"`
	DiagnosisService *diagnosis.Health `json:"diagnosis_service,omitempty"`
	Warning          string            `json:"warning,omitempty"`
}
