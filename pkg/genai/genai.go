// Package genai asks a Gemini-compatible endpoint for market
// commentary on scan digests.
package genai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

const DEFAULT_HOST = "https://generativelanguage.googleapis.com"

type GenAiApi struct {
	Host   string
	ApiKey string
	Model  string
	Logger *zap.Logger
}

func NewGenAiApi(host, apiKey, model string, logger *zap.Logger) *GenAiApi {
	if host == "" {
		host = DEFAULT_HOST
	}
	return &GenAiApi{
		Host:   host,
		ApiKey: apiKey,
		Model:  model,
		Logger: logger,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *GenAiApi) generateURL() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.Host, g.Model)
}

// GenerateCommentary sends a prompt and returns the first candidate's
// text.
func (g *GenAiApi) GenerateCommentary(prompt string) (string, error) {
	reqBody, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", g.generateURL(), bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.ApiKey)

	client := http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("genai request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("genai response: %w", err)
	}
	if parsed.Error != nil {
		g.Logger.Warn("genai error",
			zap.Int("code", parsed.Error.Code),
			zap.String("message", parsed.Error.Message))
		return "", fmt.Errorf("genai error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("genai returned no candidates")
	}

	g.Logger.Info("genai commentary generated", zap.Int("bytes", len(body)))
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// CleanJSON strips code fences from a model reply, repairs malformed
// JSON and pretty-prints the result for saving alongside scan output.
func CleanJSON(reply string) ([]byte, error) {
	text := strings.TrimSpace(reply)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, fmt.Errorf("repair model json: %w", err)
	}
	return pretty.Pretty([]byte(repaired)), nil
}
