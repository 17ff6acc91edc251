package llm

import (
	"encoding/json"
)

// chatCompletionDocument is the non-streamed completion wire shape of an
// OpenAI-compatible gateway. Tool call arguments arrive double-encoded: the
// arguments field is itself a JSON string.
type chatCompletionDocument struct {
	Choices []struct {
		Message struct {
			Content   string         `json:"content"`
			ToolCalls []chatToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// ExtractToolPayload locates the single expected tool invocation in a
// completion document and unmarshals its arguments into out. The model
// answering with prose instead of the tool, or invoking a different tool,
// is a hard failure; there is never a partial result.
func ExtractToolPayload(doc []byte, function string, out interface{}) error {
	var parsed chatCompletionDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return &DecodeError{Reason: "malformed completion document", Err: err}
	}

	call := firstToolCall(&parsed)
	if call == nil {
		return ErrMissingToolCall
	}
	if call.Function.Name != function {
		return &WrongToolError{Want: function, Got: call.Function.Name}
	}

	if err := json.Unmarshal([]byte(call.Function.Arguments), out); err != nil {
		return &DecodeError{Reason: "malformed tool arguments", Err: err}
	}
	return nil
}

func firstToolCall(doc *chatCompletionDocument) *chatToolCall {
	for _, choice := range doc.Choices {
		for i := range choice.Message.ToolCalls {
			return &choice.Message.ToolCalls[i]
		}
	}
	return nil
}
