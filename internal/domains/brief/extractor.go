package brief

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const extractionPrompt = `From this court hearing transcription provided, extract the following information:
"case_title, case_number, judge_name, accused_name, filtered_transcript, court_type, country, court_location, date, prosecutor_name, defense_counsel_name, charges, plea, verdict, sentence, mitigating_factors, aggravating_factors, legal_principles, precedents_cited"

For charges, plea, verdict, sentence, mitigating_factors, aggravating_factors, legal_principles and precedents_cited, provide detailed and comprehensive information, formatted as numbered entries separated by newline characters (\n).

Return a valid JSON blob with key-value pairs. Ensure that all multi-line values are returned as a single string with appropriate newline characters.

Where there's no information, replace with "......." and ensure all keys are in small letters.

NB: Only return the object nothing else`

// Extractor turns a raw transcript into the case-info field map.
type Extractor interface {
	ExtractCaseInfo(ctx context.Context, transcript string) (map[string]string, error)
}

// OpenAIExtractor asks a chat model for the structured case fields.
type OpenAIExtractor struct {
	client openai.Client
	model  openai.ChatModel
}

func NewOpenAIExtractor(apiKey string, model openai.ChatModel) *OpenAIExtractor {
	if model == "" {
		model = openai.ChatModelGPT4o
	}
	return &OpenAIExtractor{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

var _ Extractor = (*OpenAIExtractor)(nil)

func (e *OpenAIExtractor) ExtractCaseInfo(ctx context.Context, transcript string) (map[string]string, error) {
	chat, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractionPrompt),
			openai.UserMessage(transcript),
		},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("case info completion: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return parseCaseInfo(chat.Choices[0].Message.Content)
}

// parseCaseInfo decodes the model output, tolerating markdown code fences
// around the JSON object.
func parseCaseInfo(raw string) (map[string]string, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return nil, ErrEmptyResponse
	}

	fields := map[string]string{}
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return fields, nil
}
