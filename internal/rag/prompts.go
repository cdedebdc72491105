package rag

import (
	"fmt"
	"strings"
)

// systemPrompt constrains the generator to the retrieved context.
const systemPrompt = "You are FloatChat, an intelligent ocean data assistant. " +
	"Answer questions only using the provided context. " +
	"Do not hallucinate or guess beyond the context."

// truncationMarker is appended when the context exceeds the configured limit.
const truncationMarker = "\n\n[Truncated...]"

// renderUser builds the user prompt from the question and the retrieved
// context. The context is truncated at maxContextChars (0 disables).
func renderUser(question, context string, maxContextChars int) string {
	if maxContextChars > 0 {
		if runes := []rune(context); len(runes) > maxContextChars {
			context = string(runes[:maxContextChars]) + truncationMarker
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Question:\n%s\n\nContext:\n%s", question, context)
	b.WriteString("\n\nAnswer using the Context only.")
	return b.String()
}
