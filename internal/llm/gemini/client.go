package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"telehealth-backend/internal/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client implements llm.Provider using the Google Generative Language API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Gemini client. Missing credentials are a fatal
// configuration error: this subsystem cannot function without its primary
// provider.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required: %w", llm.ErrUnauthorized)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}
	timeout := 60 * time.Second
	if raw := strings.TrimSpace(os.Getenv("GEMINI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// Name returns the provider/model identifier for audit records.
func (c *Client) Name() string {
	return "gemini:" + c.model
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	TopP            float32 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates []struct {
		Content       content        `json:"content"`
		FinishReason  string         `json:"finishReason"`
		SafetyRatings []safetyRating `json:"safetyRatings"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason   string         `json:"blockReason"`
		SafetyRatings []safetyRating `json:"safetyRatings"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

type safetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
}

// Generate calls generateContent and maps the response to an llm.Outcome.
// A safety block is reported as Filtered, not as an error.
func (c *Client) Generate(ctx context.Context, prompt string, params llm.Params) (llm.Outcome, error) {
	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     params.Temperature,
			MaxOutputTokens: params.MaxOutputTokens,
			TopP:            params.TopP,
			TopK:            params.TopK,
		},
		SafetySettings: safetySettingsFor(params.Safety),
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return llm.Outcome{}, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return llm.Outcome{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return llm.Outcome{}, fmt.Errorf("gemini request timeout: %w", err)
		}
		return llm.Outcome{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Outcome{}, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return llm.Outcome{}, fmt.Errorf("gemini status %d: %w", resp.StatusCode, llm.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return llm.Outcome{}, fmt.Errorf("gemini status %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return llm.Outcome{}, fmt.Errorf("gemini response parse: %w", err)
	}
	if parsed.Error != nil {
		if parsed.Error.Status == "UNAUTHENTICATED" || parsed.Error.Status == "PERMISSION_DENIED" {
			return llm.Outcome{}, fmt.Errorf("gemini error: %s: %w", parsed.Error.Message, llm.ErrUnauthorized)
		}
		return llm.Outcome{}, fmt.Errorf("gemini error: %s (%s)", parsed.Error.Message, parsed.Error.Status)
	}

	// Prompt-level block: no candidates at all.
	if len(parsed.Candidates) == 0 {
		outcome := llm.Outcome{Filtered: true, FinishReason: "NO_CANDIDATES"}
		if parsed.PromptFeedback != nil {
			if parsed.PromptFeedback.BlockReason != "" {
				outcome.FinishReason = parsed.PromptFeedback.BlockReason
			}
			outcome.SafetyRatings = toRatings(parsed.PromptFeedback.SafetyRatings)
		}
		return outcome, nil
	}

	candidate := parsed.Candidates[0]
	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}

	outcome := llm.Outcome{
		Text:          strings.TrimSpace(text.String()),
		FinishReason:  candidate.FinishReason,
		SafetyRatings: toRatings(candidate.SafetyRatings),
	}
	// Candidate-level block: present but with no parts, or finished on SAFETY.
	if outcome.Text == "" || candidate.FinishReason == "SAFETY" || candidate.FinishReason == "PROHIBITED_CONTENT" {
		outcome.Filtered = true
		outcome.Text = ""
	}
	return outcome, nil
}

func safetySettingsFor(preset llm.SafetyPreset) []safetySetting {
	if preset == llm.SafetyMinimal {
		return []safetySetting{
			{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_ONLY_HIGH"},
		}
	}
	return []safetySetting{
		{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_ONLY_HIGH"},
		{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_ONLY_HIGH"},
		{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_ONLY_HIGH"},
		{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_ONLY_HIGH"},
	}
}

func toRatings(raw []safetyRating) []llm.SafetyRating {
	if len(raw) == 0 {
		return nil
	}
	out := make([]llm.SafetyRating, 0, len(raw))
	for _, r := range raw {
		out = append(out, llm.SafetyRating{Category: r.Category, Probability: r.Probability})
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

var _ llm.Provider = (*Client)(nil)
