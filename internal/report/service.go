package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/signintech/gopdf"

	"medical-assistant/internal/platform/apperr"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatText, FormatPDF:
		return f, nil
	}
	return "", apperr.Validation(fmt.Sprintf("unsupported export format %q", s))
}

type Message struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a point-in-time copy of one consultation.
type Snapshot struct {
	ConsultationID uuid.UUID `json:"consultation_id"`
	Timestamp      time.Time `json:"timestamp"`
	Messages       []Message `json:"messages"`
	Symptoms       []string  `json:"symptoms"`
	MedicalHistory []string  `json:"medical_history"`
}

// File is a rendered export ready to be downloaded.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type TelegramClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error
}

type Service struct {
	tgClient     TelegramClient
	doctorChatID int64
	fontPaths    []string
}

// NewService builds the exporter. tg may be nil when no care team chat is configured.
func NewService(tg TelegramClient, doctorChatID int64, fontPaths []string) *Service {
	return &Service{
		tgClient:     tg,
		doctorChatID: doctorChatID,
		fontPaths:    fontPaths,
	}
}

func (s *Service) Render(snap Snapshot, format Format) (*File, error) {
	base := "medical_conversation_" + snap.Timestamp.Format("2006-01-02")

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, apperr.Internal("encode export", err)
		}
		return &File{Name: base + ".json", ContentType: "application/json", Data: data}, nil
	case FormatText:
		return &File{Name: base + ".txt", ContentType: "text/plain; charset=utf-8", Data: []byte(renderText(snap))}, nil
	case FormatPDF:
		data, err := s.renderPDF(snap)
		if err != nil {
			return nil, err
		}
		return &File{Name: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	}
	return nil, apperr.Validation(fmt.Sprintf("unsupported export format %q", format))
}

func renderText(snap Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Medical conversation %s\n", snap.ConsultationID)
	fmt.Fprintf(&b, "Exported: %s\n\n", snap.Timestamp.Format(time.RFC3339))

	if len(snap.Symptoms) > 0 {
		fmt.Fprintf(&b, "Symptoms: %s\n", strings.Join(snap.Symptoms, ", "))
	}
	if len(snap.MedicalHistory) > 0 {
		fmt.Fprintf(&b, "Medical history: %s\n", strings.Join(snap.MedicalHistory, ", "))
	}
	if len(snap.Symptoms) > 0 || len(snap.MedicalHistory) > 0 {
		b.WriteString("\n")
	}

	for _, m := range snap.Messages {
		fmt.Fprintf(&b, "[%s] %s:\n%s\n\n", m.Timestamp.Format("15:04"), m.Sender, m.Message)
	}
	return b.String()
}

func (s *Service) renderPDF(snap Snapshot) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			fontLoaded = true
			break
		} else {
			fontErr = err
		}
	}
	if !fontLoaded {
		return nil, apperr.Internal("no usable font for PDF export", fontErr)
	}

	w := &pdfWriter{pdf: &pdf}
	w.font(20)
	w.line("Medical conversation report", 30)

	w.font(12)
	w.line(fmt.Sprintf("Date: %s", snap.Timestamp.Format("02.01.2006 15:04")), 15)
	w.line(fmt.Sprintf("Consultation: %s", snap.ConsultationID), 25)

	w.font(14)
	w.line("Reported symptoms:", 15)
	w.font(11)
	if len(snap.Symptoms) == 0 {
		w.line("- none recorded", 15)
	}
	for _, s := range snap.Symptoms {
		w.line("- "+s, 12)
	}
	for _, h := range snap.MedicalHistory {
		w.line("- history: "+h, 12)
	}
	w.pdf.Br(15)

	w.font(14)
	w.line("Conversation:", 15)
	w.font(11)
	for _, m := range snap.Messages {
		w.wrapped(fmt.Sprintf("[%s] %s: %s", m.Timestamp.Format("15:04"), m.Sender, m.Message))
		w.pdf.Br(5)
	}

	if w.err != nil {
		return nil, apperr.Internal("render PDF", w.err)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, apperr.Internal("failed to write PDF", err)
	}
	return buf.Bytes(), nil
}

// pdfWriter keeps the first error so rendering reads top to bottom.
type pdfWriter struct {
	pdf *gopdf.GoPdf
	err error
}

const (
	pageBottom = 800
	textWidth  = 500
)

func (w *pdfWriter) font(size int) {
	if w.err == nil {
		w.err = w.pdf.SetFont("DejaVu", "", size)
	}
}

func (w *pdfWriter) line(text string, br float64) {
	if w.err != nil {
		return
	}
	if w.pdf.GetY() > pageBottom {
		w.pdf.AddPage()
	}
	w.err = w.pdf.Cell(nil, text)
	w.pdf.Br(br)
}

func (w *pdfWriter) wrapped(text string) {
	if w.err != nil {
		return
	}
	for _, para := range strings.Split(text, "\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		lines, err := w.pdf.SplitText(para, textWidth)
		if err != nil {
			w.err = err
			return
		}
		for _, l := range lines {
			w.line(l, 12)
		}
	}
}

// SendDoctorReport uploads the PDF export to the care team chat.
func (s *Service) SendDoctorReport(ctx context.Context, snap Snapshot) error {
	if s.tgClient == nil || s.doctorChatID == 0 {
		return apperr.Validation("care team chat is not configured")
	}

	log.Info().Str("consultation_id", snap.ConsultationID.String()).Msg("generating PDF report")
	file, err := s.Render(snap, FormatPDF)
	if err != nil {
		return err
	}

	fileName := fmt.Sprintf("report_%s.pdf", snap.ConsultationID)
	if err := s.tgClient.SendDocument(ctx, s.doctorChatID, file.Data, fileName); err != nil {
		return apperr.External("failed to deliver report", err)
	}
	log.Info().Str("consultation_id", snap.ConsultationID.String()).Int64("chat_id", s.doctorChatID).Msg("PDF report sent")
	return nil
}
