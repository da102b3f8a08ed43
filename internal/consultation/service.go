package consultation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"medical-assistant/internal/diagnosis"
	"medical-assistant/internal/explain"
	"medical-assistant/internal/platform/apperr"
	"medical-assistant/internal/report"
	"medical-assistant/internal/symptom"
)

const (
	minUtteranceLength = 3
	maxAge             = 130

	noConditionsNotice = "No specific conditions could be identified from the provided symptoms. Please consult a healthcare professional."
	offlineWarning     = "Cannot connect to the diagnosis service. Some features may not work properly."
)

var (
	ErrBusy              = apperr.Conflict("a request is already in progress for this consultation")
	ErrUtteranceTooShort = apperr.Validation(fmt.Sprintf("message must be at least %d characters", minUtteranceLength))
	ErrNoSymptoms        = apperr.Validation("please select at least one symptom")
)

// DiagnosisService is the external diagnosis backend.
type DiagnosisService interface {
	Diagnoser
	HealthCheck(ctx context.Context) (*diagnosis.Health, error)
}

type Exporter interface {
	Render(snap report.Snapshot, format report.Format) (*report.File, error)
	SendDoctorReport(ctx context.Context, snap report.Snapshot) error
}

type EmergencyNotifier interface {
	NotifyEmergency(ctx context.Context, consultationID uuid.UUID, userText, instruction string) error
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioData []byte, fileName string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Service interface {
	CreateConsultation(ctx context.Context) (*Session, error)
	GetConsultation(ctx context.Context, id uuid.UUID) (*Session, error)
	EndConsultation(ctx context.Context, id uuid.UUID) error
	SendMessage(ctx context.Context, id uuid.UUID, text string) (*ChatResponse, error)
	SendAudio(ctx context.Context, id uuid.UUID, audio []byte, fileName string) (*AudioResponse, error)
	SubmitDiagnosis(ctx context.Context, id uuid.UUID, form Form) (*DiagnosisOutcome, error)
	Reset(ctx context.Context, id uuid.UUID) error
	Export(ctx context.Context, id uuid.UUID, format report.Format) (*report.File, error)
	SendReport(ctx context.Context, id uuid.UUID) error
	Health(ctx context.Context) HealthStatus
}

type Option func(*service)

// WithNotifier alerts the care team whenever a reply is EMERGENCY.
func WithNotifier(n EmergencyNotifier) Option {
	return func(s *service) { s.notifier = n }
}

func WithTranscriber(t Transcriber) Option {
	return func(s *service) { s.stt = t }
}

// WithSynthesizer makes voice notes answer with audio as well as text.
func WithSynthesizer(t Synthesizer) Option {
	return func(s *service) { s.tts = t }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

type service struct {
	repo     Repository
	diag     DiagnosisService
	engine   *Engine
	exporter Exporter
	notifier EmergencyNotifier
	stt      Transcriber
	tts      Synthesizer
	now      func() time.Time
}

func NewService(repo Repository, diag DiagnosisService, exporter Exporter, opts ...Option) Service {
	s := &service{
		repo:     repo,
		diag:     diag,
		engine:   NewEngine(diag),
		exporter: exporter,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateConsultation(ctx context.Context) (*Session, error) {
	sess := NewSession(s.now())
	if err := s.repo.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save consultation: %w", err)
	}
	log.Info().Str("consultation_id", sess.ID.String()).Msg("consultation started")
	return sess, nil
}

func (s *service) GetConsultation(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) EndConsultation(ctx context.Context, id uuid.UUID) error {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !sess.TryBegin() {
		return ErrBusy
	}
	defer sess.End()

	return s.repo.Delete(ctx, id)
}

// SendMessage runs one chat turn. While a turn is in flight further sends on
// the same session are rejected with ErrBusy and leave the history untouched.
func (s *service) SendMessage(ctx context.Context, id uuid.UUID, text string) (*ChatResponse, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minUtteranceLength {
		return nil, ErrUtteranceTooShort
	}

	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.TryBegin() {
		return nil, ErrBusy
	}
	defer sess.End()

	return s.send(ctx, sess, text), nil
}

// send runs a turn on a session the caller has already marked busy.
func (s *service) send(ctx context.Context, sess *Session, text string) *ChatResponse {
	id := sess.ID
	sess.AppendTurn(SenderUser, text, s.now())

	reply, err := s.engine.Route(ctx, sess, text)
	if err != nil {
		log.Warn().Err(err).Str("consultation_id", id.String()).Msg("turn aborted")
		reply = Reply{Text: ApologyMessage, Urgency: diagnosis.UrgencyLow, Source: SourceApology}
	}

	resp := &ChatResponse{Reply: reply}
	resp.Turns = append(resp.Turns, sess.AppendTurn(SenderAssistant, reply.Text, s.now()))

	if reply.Result.HasDiagnoses() {
		resp.Turns = append(resp.Turns, sess.AppendTurn(SenderAssistant, FormatDetail(reply.Result), s.now()))
		resp.Factors, resp.Chart = s.explainResult(reply.Result, len(reply.Symptoms))
	}

	if reply.Urgency == diagnosis.UrgencyEmergency {
		s.notifyEmergency(ctx, id, text, reply.EmergencyMessage)
	}
	return resp
}

func (s *service) SendAudio(ctx context.Context, id uuid.UUID, audio []byte, fileName string) (*AudioResponse, error) {
	if len(audio) == 0 {
		return nil, apperr.Validation("audio file is empty")
	}
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.stt == nil {
		return nil, apperr.Validation("speech recognition is not configured")
	}
	if !sess.TryBegin() {
		return nil, ErrBusy
	}
	defer sess.End()

	text, err := s.stt.Transcribe(ctx, audio, fileName)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return &AudioResponse{}, nil
	}
	if len([]rune(text)) < minUtteranceLength {
		return nil, ErrUtteranceTooShort
	}

	chat := s.send(ctx, sess, text)
	resp := &AudioResponse{Text: text, Chat: chat}

	if s.tts != nil {
		audio, err := s.tts.Synthesize(ctx, chat.Reply.Text)
		if err != nil {
			log.Warn().Err(err).Str("consultation_id", id.String()).Msg("speech synthesis failed, replying with text only")
		} else {
			resp.AudioBase64 = base64.StdEncoding.EncodeToString(audio)
		}
	}
	return resp, nil
}

func (s *service) SubmitDiagnosis(ctx context.Context, id uuid.UUID, form Form) (*DiagnosisOutcome, error) {
	symptoms := symptom.NewSet(form.Symptoms...)
	if symptoms.Len() == 0 {
		return nil, ErrNoSymptoms
	}
	gender, err := diagnosis.ParseGender(form.Gender)
	if err != nil {
		return nil, err
	}
	if form.Age != nil && (*form.Age < 0 || *form.Age > maxAge) {
		return nil, apperr.Validation(fmt.Sprintf("age must be between 0 and %d", maxAge))
	}
	history := symptom.NewSet(form.MedicalHistory...)

	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.TryBegin() {
		return nil, ErrBusy
	}
	defer sess.End()

	sess.setForm(symptoms, history)

	req := diagnosis.NewRequest(symptoms.Items(), form.Age, gender, history.Items())
	out := &DiagnosisOutcome{}
	res, err := s.diag.Diagnose(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("consultation_id", id.String()).Msg("diagnosis unavailable, showing fallback")
		res = diagnosis.FallbackResult(symptoms.Items())
		out.Fallback = true
	}
	out.Result = res

	if !res.HasDiagnoses() {
		out.Notice = noConditionsNotice
		return out, nil
	}
	out.Factors, out.Chart = s.explainResult(res, symptoms.Len())

	if res.Urgency() == diagnosis.UrgencyEmergency {
		s.notifyEmergency(ctx, id, strings.Join(symptoms.Items(), ", "), res.ImmediateAction)
	}
	return out, nil
}

func (s *service) explainResult(res *diagnosis.Result, symptomCount int) ([]explain.Factor, *explain.ChartSeries) {
	chart := explain.Chart(res.Diagnoses)
	top, _ := res.Top()
	factors, err := explain.Factors(top, symptomCount)
	if err != nil {
		log.Warn().Err(err).Str("condition", top.Condition).Msg("skipping explanation factors")
		return nil, &chart
	}
	return factors, &chart
}

func (s *service) notifyEmergency(ctx context.Context, id uuid.UUID, userText, instruction string) {
	log.Warn().Str("consultation_id", id.String()).Msg("emergency urgency detected")
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyEmergency(ctx, id, userText, instruction); err != nil {
		log.Error().Err(err).Str("consultation_id", id.String()).Msg("failed to notify care team")
	}
}

// Reset clears the conversation and form lists. It is refused mid-turn.
func (s *service) Reset(ctx context.Context, id uuid.UUID) error {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !sess.TryBegin() {
		return ErrBusy
	}
	defer sess.End()

	sess.reset()
	log.Info().Str("consultation_id", id.String()).Msg("consultation reset")
	return nil
}

func (s *service) Export(ctx context.Context, id uuid.UUID, format report.Format) (*report.File, error) {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.exporter.Render(sess.Snapshot(s.now()), format)
}

func (s *service) SendReport(ctx context.Context, id uuid.UUID) error {
	sess, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.exporter.SendDoctorReport(ctx, sess.Snapshot(s.now()))
}

// Health never fails; an unreachable backend only produces a warning.
func (s *service) Health(ctx context.Context) HealthStatus {
	h, err := s.diag.HealthCheck(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("diagnosis service health check failed")
		return HealthStatus{Status: "degraded", Warning: offlineWarning}
	}
	return HealthStatus{Status: "ok", DiagnosisService: h}
}
