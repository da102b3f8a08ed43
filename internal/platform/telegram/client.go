package telegram

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

const maxMessageLen = 4096

type Client struct {
	bot *bot.Bot
}

// NewClient creates a send-only Telegram client; it never polls for updates.
func NewClient(token string, opts ...bot.Option) (*Client, error) {
	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Client{bot: b}, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if r := []rune(text); len(r) > maxMessageLen {
		text = string(r[:maxMessageLen-3]) + "..."
	}

	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error {
	_, err := c.bot.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: fileName,
			Data:     bytes.NewReader(fileData),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram document: %w", err)
	}
	return nil
}

// CareTeamNotifier posts emergency alerts into the care team chat.
type CareTeamNotifier struct {
	client *Client
	chatID int64
}

func NewCareTeamNotifier(client *Client, chatID int64) *CareTeamNotifier {
	return &CareTeamNotifier{client: client, chatID: chatID}
}

func (n *CareTeamNotifier) NotifyEmergency(ctx context.Context, consultationID uuid.UUID, userText, instruction string) error {
	text := fmt.Sprintf("EMERGENCY flagged in consultation %s\n\nPatient wrote: %s\n\nShown instruction: %s",
		consultationID, userText, instruction)
	return n.client.SendMessage(ctx, n.chatID, text)
}
