package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"tanya-chat/internal/types"
)

// OpenAIRelay serves the same {contents} contract from a chat-completion
// provider and answers in the candidates shape the client expects.
type OpenAIRelay struct {
	client *openai.Client
	model  string
}

func NewOpenAIRelay(apiKey, baseURL, model string, httpClient *http.Client) *OpenAIRelay {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIRelay{client: openai.NewClientWithConfig(cfg), model: model}
}

func (o *OpenAIRelay) Forward(ctx context.Context, contents json.RawMessage) (*Response, error) {
	var in []types.Content
	if err := json.Unmarshal(contents, &in); err != nil {
		return nil, fmt.Errorf("decode contents: %w", err)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: convertContents(in),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return errorResponse(apiErr), nil
		}
		return nil, err
	}

	out := types.ChatResponse{}
	for _, c := range resp.Choices {
		out.Candidates = append(out.Candidates, types.Candidate{
			Content: types.Content{
				Role:  types.RoleModel,
				Parts: []types.Part{{Text: c.Message.Content}},
			},
			FinishReason: strings.ToUpper(string(c.FinishReason)),
		})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode candidates: %w", err)
	}
	return &Response{StatusCode: http.StatusOK, ContentType: "application/json", Body: b}, nil
}

func convertContents(in []types.Content) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(in))
	for _, c := range in {
		role := openai.ChatMessageRoleUser
		if c.Role == types.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: c.Text()})
	}
	return out
}

func errorResponse(apiErr *openai.APIError) *Response {
	status := apiErr.HTTPStatusCode
	if status == 0 {
		status = http.StatusBadGateway
	}
	var typ string
	if apiErr.Type != "" {
		typ = strings.ToUpper(apiErr.Type)
	}
	b, _ := json.Marshal(types.UpstreamErrorResponse{Error: types.ErrorDetail{
		Code:    status,
		Message: apiErr.Message,
		Status:  typ,
	}})
	return &Response{StatusCode: status, ContentType: "application/json", Body: b}
}
