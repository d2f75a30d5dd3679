// Package lookup asks Gemini, grounded with Google Search, for descriptive
// metadata about a board game. The rest of the system treats it as a black
// box that either returns normalizable fields or fails.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/wfunc/boardvault/logger"
	"github.com/wfunc/boardvault/models"
)

// FallbackEmoji is the single documented silent default: a details response
// without an emoji gets the generic die.
const FallbackEmoji = "🎲"

var (
	ErrMissingAPIKey = errors.New("gemini api key not configured")
	ErrEmptyResponse = errors.New("no response from AI")
	ErrBadResponse   = errors.New("could not decode AI response")
)

// Client Gemini查询客户端
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// searchConfig grounds generation in Google Search results for accuracy.
func searchConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}
}

// FetchGameDetails returns descriptive fields for a game name.
func (c *Client) FetchGameDetails(ctx context.Context, gameName string) (*models.AIInfoResponse, error) {
	prompt := fmt.Sprintf(`Busca en internet información precisa sobre el juego de mesa "%s".

Usa los resultados de búsqueda para rellenar el siguiente JSON. Prioriza la exactitud de los datos (número de jugadores, mecánicas oficiales, etc.).

Devuelve un JSON con:
- description: Resumen breve en español (máx 200 caracteres).
- minPlayers, maxPlayers, minAge: Números precisos según BGG o editorial.
- playtime: String (ej "30-60 min").
- mechanics: Lista de strings (máx 4 importantes).
- emoji: Un solo emoji que represente la temática del juego (ej 🏰, 🦠, 🚂).
- officialExpansions: Lista de expansiones OFICIALES encontradas ({name, description}).

Formato JSON estricto (no uses bloques de código markdown, solo el texto JSON plano si es posible):
{
  "description": "...",
  "minPlayers": 1,
  "maxPlayers": 4,
  "playtime": "...",
  "minAge": 10,
  "mechanics": ["..."],
  "emoji": "🎲",
  "officialExpansions": [{"name": "...", "description": "..."}]
}`, gameName)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), searchConfig())
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	return ParseDetailsText(resp.Text())
}

// FetchExpansions returns official expansions for a game name or free-text
// query. An answer the model is unsure about comes back as an empty list.
func (c *Client) FetchExpansions(ctx context.Context, query string) ([]models.Expansion, error) {
	prompt := fmt.Sprintf(`Busca expansiones OFICIALES para el juego de mesa o búsqueda: "%s".

Usa Google Search para verificar que realmente existen.

Instrucciones estrictas:
1. Devuelve SOLAMENTE un array JSON de objetos.
2. Solo incluye expansiones que estés 100%% seguro que existen y son oficiales.
3. Si no encuentras nada certero, devuelve array vacío [].

Formato JSON esperado:
[
  { "name": "Nombre Expansion", "description": "Breve descripción" }
]`, query)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), searchConfig())
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	return ParseExpansionsText(resp.Text()), nil
}

// ParseDetailsText extracts the JSON object from a model answer that may be
// wrapped in markdown fences or intro text.
func ParseDetailsText(text string) (*models.AIInfoResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	if obj, ok := between(text, '{', '}'); ok {
		text = obj
	}

	var info models.AIInfoResponse
	if err := json.Unmarshal([]byte(text), &info); err != nil {
		logger.Log.Errorf("Failed to parse AI JSON response: %v", err)
		return nil, ErrBadResponse
	}

	if info.Emoji == "" {
		info.Emoji = FallbackEmoji
	}
	return &info, nil
}

// ParseExpansionsText extracts the JSON array from a model answer. Anything
// undecodable degrades to the empty list, matching the "no certain results"
// contract of the prompt.
func ParseExpansionsText(text string) []models.Expansion {
	text = strings.TrimSpace(text)
	if text == "" {
		return []models.Expansion{}
	}

	arr, ok := between(text, '[', ']')
	if !ok {
		return []models.Expansion{}
	}

	var expansions []models.Expansion
	if err := json.Unmarshal([]byte(arr), &expansions); err != nil {
		logger.Log.Errorf("Error parsing expansions: %v", err)
		return []models.Expansion{}
	}
	if expansions == nil {
		expansions = []models.Expansion{}
	}
	return expansions
}

// between cuts text to the span from the first opening to the last closing
// delimiter.
func between(text string, opening, closing byte) (string, bool) {
	start := strings.IndexByte(text, opening)
	end := strings.LastIndexByte(text, closing)
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
