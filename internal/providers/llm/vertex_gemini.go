package llm

import (
	"context"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
)

type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	m := c.GenerativeModel(modelName)
	return &VertexGemini{client: c, model: m}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Chat(ctx context.Context, history []Message, message string) (string, error) {
	if err := ValidateHistory(history); err != nil {
		return "", err
	}

	cs := v.model.StartChat()
	cs.History = make([]*vertexgenai.Content, 0, len(history))
	for _, m := range history {
		cs.History = append(cs.History, &vertexgenai.Content{
			Role:  string(m.Role),
			Parts: []vertexgenai.Part{vertexgenai.Text(m.Text)},
		})
	}

	resp, err := cs.SendMessage(ctx, vertexgenai.Text(message))
	if err != nil {
		return "", err
	}
	return vertexText(resp)
}

func (v *VertexGemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, vertexgenai.Text(prompt))
	if err != nil {
		return "", err
	}
	return vertexText(resp)
}

// vertexText joins the text parts of the first candidate.
func vertexText(resp *vertexgenai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(vertexgenai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
