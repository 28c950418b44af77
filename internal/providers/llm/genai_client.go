package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GenAI talks to Gemini through the unified google.golang.org/genai SDK,
// either with an API key (Gemini API) or through Vertex AI.
type GenAI struct {
	client    *genai.Client
	modelName string
}

type GenAIConfig struct {
	APIKey    string // Gemini API backend when set
	Project   string // Vertex backend otherwise
	Location  string
	ModelName string
}

func NewGenAI(ctx context.Context, cfg GenAIConfig) (*GenAI, error) {
	cc := &genai.ClientConfig{}
	switch {
	case cfg.APIKey != "":
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	case cfg.Project != "" && cfg.Location != "":
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, errors.New("genai: either an API key or project and location are required")
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	modelName := cfg.ModelName
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GenAI{client: client, modelName: modelName}, nil
}

// Close is a no-op; the genai client holds no resources that need releasing.
func (g *GenAI) Close() error { return nil }

func (g *GenAI) Chat(ctx context.Context, history []Message, message string) (string, error) {
	if err := ValidateHistory(history); err != nil {
		return "", err
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	return g.generate(ctx, contents)
}

func (g *GenAI) Generate(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)})
}

func (g *GenAI) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("genai generate content: %w", err)
	}
	text := res.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
