// Package tokencost computes the token cost of chat requests. It is the
// usage accountant that feeds the rate limiter's increment operation: count
// the prompt before generation, count the completion after, charge the sum.
package tokencost

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding covers models tiktoken has no mapping for.
const fallbackEncoding = "cl100k_base"

// Message is one chat message for counting purposes.
type Message struct {
	Role    string
	Content string
}

// Counter counts tokens for a specific model's encoding. Safe for
// concurrent use.
type Counter struct {
	encoding *tiktoken.Tiktoken
	model    string
}

var (
	// Encodings are expensive to initialize, so they are cached per model.
	encodingCache = make(map[string]*tiktoken.Tiktoken)
	cacheMu       sync.Mutex
)

// NewCounter creates a counter for a model. Unknown models fall back to the
// cl100k_base encoding, which keeps counts approximately right for
// non-OpenAI models.
func NewCounter(model string) (*Counter, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached, ok := encodingCache[model]; ok {
		return &Counter{encoding: cached, model: model}, nil
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("load encoding for %s: %w", model, err)
		}
	}

	encodingCache[model] = encoding
	return &Counter{encoding: encoding, model: model}, nil
}

// Model returns the model this counter was built for.
func (c *Counter) Model() string {
	return c.model
}

// Count returns the token count of a plain text.
func (c *Counter) Count(text string) int64 {
	return int64(len(c.encoding.Encode(text, nil, nil)))
}

// CountMessages counts the tokens of a message list, including the
// per-message framing overhead of the OpenAI chat format.
func (c *Counter) CountMessages(messages []Message) int64 {
	// <|start|>role<|message|>content<|end|> costs 3 tokens per message,
	// and the reply is primed with another 3.
	const perMessage = 3
	const replyPriming = 3

	total := int64(replyPriming)
	for _, msg := range messages {
		total += perMessage
		total += int64(len(c.encoding.Encode(msg.Role, nil, nil)))
		total += int64(len(c.encoding.Encode(msg.Content, nil, nil)))
	}
	return total
}

// Estimate gives a rough chars/4 token estimate for when no encoding is
// available. It overshoots short texts and undershoots code-heavy ones;
// use a Counter whenever possible.
func Estimate(text string) int64 {
	return int64(len(text) / 4)
}
