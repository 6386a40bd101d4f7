// Package prompt builds the grounding prompt that pairs retrieved reference
// text with a user query. The hosted agent's own file-search mechanism
// performs retrieval and context injection server-side, so the query path
// does not call Augment; it exists for callers that want to drive a
// client-side grounding flow against a plain completion endpoint, and as the
// single source of the fallback phrase the fake backend answers with.
package prompt

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// FallbackAnswer is the exact phrase the agent must reply with when the
// provided context does not contain the requested information.
const FallbackAnswer = "I don't know the answer based on the provided context."

const grounding = "Answer the question using ONLY the context above. " +
	"Do not use any outside knowledge. If the context does not contain the " +
	"information needed to answer, reply exactly with: " + FallbackAnswer

// Augment combines retrieval context and a raw user query into a single
// instruction-bearing prompt. Context and query are embedded verbatim, in
// that order, followed by the fixed grounding instruction. No escaping or
// truncation is applied; use TokenCount to observe the footprint of large
// contexts before sending.
func Augment(query, context string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\n%s", context, query, grounding)
}

// TokenCount reports the tiktoken token footprint of s under the encoding
// for the given model, falling back to cl100k_base for unknown models.
func TokenCount(model, s string) (int, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, fmt.Errorf("failed to get encoding: %w", err)
		}
	}
	return len(enc.Encode(s, nil, nil)), nil
}
