package inference

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls the OpenAI Chat Completions API as an alternative to the
// HuggingFace-style endpoint. It satisfies the same Client contract.
type OpenAIClient struct {
	model  openai.ChatModel
	client *openai.Client
}

// NewOpenAIClient builds a client with defaults against api.openai.com.
func NewOpenAIClient(apiKey string, model openai.ChatModel) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		model:  model,
		client: &cli,
	}, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	if c == nil || c.client == nil {
		return "", &TransportError{Err: fmt.Errorf("nil openai client")}
	}
	reqCtx, cancel := context.WithTimeout(ctx, defaultCallTimeout)
	defer cancel()

	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature: openai.Float(params.Temperature),
	}
	if params.MaxNewTokens > 0 {
		req.MaxCompletionTokens = openai.Int(int64(params.MaxNewTokens))
	}

	resp, err := c.client.Chat.Completions.New(reqCtx, req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &TransportError{Err: fmt.Errorf("openai: no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}
