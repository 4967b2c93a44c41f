package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultCallTimeout = 120 * time.Second

// HuggingFace calls a HuggingFace-style text-generation inference endpoint.
type HuggingFace struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewHuggingFace builds a client for the given endpoint. The bearer token is
// required; its absence is an assembly-time error, not a per-request one.
func NewHuggingFace(url, token string, timeout time.Duration) (*HuggingFace, error) {
	if url == "" {
		return nil, fmt.Errorf("inference endpoint url required")
	}
	if token == "" {
		return nil, fmt.Errorf("inference api token required")
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &HuggingFace{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

// generated is one element of the endpoint's success response. Depending on
// the provider the body is either a list of these or a single object.
type generated struct {
	GeneratedText string `json:"generated_text"`
}

// Generate issues one POST to the endpoint and normalizes the response into a
// single generated-text string. Non-200 statuses come back as *HTTPError and
// transport or decode failures as *TransportError; neither is escalated.
func (c *HuggingFace) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	body, err := json.Marshal(generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			MaxNewTokens:   params.MaxNewTokens,
			Temperature:    params.Temperature,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{Status: resp.StatusCode, Body: string(raw)}
	}
	return decodeGenerated(raw)
}

// decodeGenerated normalizes the two response shapes once, at the client
// boundary. Nothing downstream sees the list-vs-object distinction.
func decodeGenerated(raw []byte) (string, error) {
	var list []generated
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", &TransportError{Err: fmt.Errorf("empty response list")}
		}
		return list[0].GeneratedText, nil
	}
	var single generated
	if err := json.Unmarshal(raw, &single); err != nil {
		return "", &TransportError{Err: fmt.Errorf("malformed response body: %w", err)}
	}
	return single.GeneratedText, nil
}
