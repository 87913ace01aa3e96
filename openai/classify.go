package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"

	"github.com/ibreez3/pixel-ai/chat"
)

const (
	msgAuth        = "Authentication failed. Check your OpenAI API key."
	msgQuota       = "Rate limit or quota exceeded for this model."
	msgUnavailable = "The selected model is not available."
	msgTimeout     = "The request to OpenAI timed out."
)

// classify maps an SDK error to an Outcome. Quota and model availability
// failures carry the fallback hint; everything else is final.
func classify(err error) chat.Outcome {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return chat.Failed(chat.KindAuth, msgAuth, false)
		case apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.Code == "insufficient_quota",
			apiErr.Code == "rate_limit_exceeded":
			return chat.Failed(chat.KindQuota, msgQuota, true)
		case apiErr.StatusCode == http.StatusNotFound && apiErr.Code == "model_not_found":
			return chat.Failed(chat.KindUnavailable, msgUnavailable, true)
		}
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return chat.Failed(chat.KindAPI, fmt.Sprintf("OpenAI API error (%d): %s", apiErr.StatusCode, msg), false)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return chat.Failed(chat.KindTimeout, msgTimeout, false)
	}
	return chat.Failed(chat.KindNetwork, fmt.Sprintf("Failed to reach OpenAI: %v", err), false)
}
