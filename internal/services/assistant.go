package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"cryptolegal-backend/internal/models"
)

// ErrEmptyMessage is returned when the incoming message is empty or
// whitespace-only. No completion call is made in that case.
var ErrEmptyMessage = errors.New("message is empty")

// Completer sends an ordered conversation to the completion provider and
// returns the assistant's reply. A single attempt per call, no retries.
type Completer interface {
	Complete(ctx context.Context, turns []models.ChatTurn) (string, error)
}

// AssembleTurns maps the widget-supplied history onto the backend's
// two-role vocabulary and appends the new message as the final user turn.
// History entries with any type other than "user" collapse to assistant
// turns; the transcript comes from a semi-trusted client, so unknown
// roles are coerced rather than rejected. The input is never mutated or
// truncated — bounding the history is the caller's job.
func AssembleTurns(history []models.HistoryEntry, message string) ([]models.ChatTurn, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	turns := make([]models.ChatTurn, 0, len(history)+1)
	for _, entry := range history {
		role := models.RoleAssistant
		if entry.Type == models.RoleUser {
			role = models.RoleUser
		}
		turns = append(turns, models.ChatTurn{Role: role, Content: entry.Content})
	}

	return append(turns, models.ChatTurn{Role: models.RoleUser, Content: message}), nil
}

// AssistantService fronts the Gemini API. Generation parameters are fixed
// at construction and not request-controllable.
type AssistantService struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewAssistantService(ctx context.Context, apiKey, modelName, systemPrompt string, maxOutputTokens int, temperature float64) (*AssistantService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(float32(temperature))
	model.SetMaxOutputTokens(int32(maxOutputTokens))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	return &AssistantService{
		client: client,
		model:  model,
	}, nil
}

func (s *AssistantService) Close() {
	s.client.Close()
}

// Complete sends the conversation in one attempt: everything before the
// final turn becomes chat history, the final turn is the message.
func (s *AssistantService) Complete(ctx context.Context, turns []models.ChatTurn) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("no turns to send")
	}

	last := turns[len(turns)-1]
	session := s.model.StartChat()
	session.History = toGenaiHistory(turns[:len(turns)-1])

	resp, err := session.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return firstText(resp)
}

// toGenaiHistory converts prior turns to the provider's content format,
// where assistant turns carry the role "model".
func toGenaiHistory(turns []models.ChatTurn) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		role := "model"
		if turn.Role == models.RoleUser {
			role = "user"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}
	return history
}

// firstText extracts the first textual part of the first candidate.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", fmt.Errorf("model returned no content parts")
	}
	text, ok := content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("model returned a non-text part")
	}
	return string(text), nil
}
