package ai

import (
	"context"
	"fmt"

	"edumate/pkg/domain"
)

// LLMBackend satisfies Backend by prompting any TextGenerator.
type LLMBackend struct {
	generator TextGenerator
}

// NewLLMBackend wraps a text generator.
func NewLLMBackend(generator TextGenerator) *LLMBackend {
	return &LLMBackend{generator: generator}
}

// Transform builds the prompt pair for the operation and runs the
// generator. Generator failures come back as *BackendError via the
// gateway.
func (b *LLMBackend) Transform(ctx context.Context, req Request, _ ProgressFunc) (string, error) {
	if b == nil || b.generator == nil {
		return "", ErrBackendUnavailable
	}
	system, user := buildPrompt(req)
	result, err := b.generator.GenerateText(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", req.Kind, err)
	}
	return result, nil
}

// buildPrompt maps an operation request onto a system/user prompt pair.
// Unrecognized style, length, or tone values fall back to the defaults
// (key-points, medium, more-casual).
func buildPrompt(req Request) (system, user string) {
	switch req.Kind {
	case domain.OpSummarize:
		return summarizePrompt(req.Text, req.Options)
	case domain.OpSimplify:
		return simplifyPrompt(req.Text, req.Options)
	case domain.OpProofread:
		return "You are a careful proofreader. Correct grammar, spelling, and punctuation. Return only the corrected text, preserving the author's meaning and tone.",
			req.Text
	case domain.OpQuestions:
		count := req.Options.QuestionCount
		if count <= 0 {
			count = defaultQuestionCount
		}
		return "You are a study assistant creating practice material.",
			fmt.Sprintf("Create %d practice questions with answers based on the following content:\n\n%s", count, req.Text)
	}
	// The gateway rejects unknown kinds before reaching a backend.
	return "", req.Text
}

const defaultQuestionCount = 5

func summarizePrompt(text string, opts Options) (string, string) {
	guide := lengthGuide(opts.Length)
	var user string
	switch opts.Style {
	case "tl;dr":
		user = fmt.Sprintf("Provide a TL;DR summary in %s:\n\n%s", guide, text)
	case "teaser":
		user = fmt.Sprintf("Write an engaging teaser in %s that makes someone want to read more:\n\n%s", guide, text)
	case "headline":
		user = fmt.Sprintf("Create a compelling headline (1 sentence) that captures the main idea:\n\n%s", text)
	default: // key-points
		user = fmt.Sprintf("Extract the key points from the following text as a bullet list. Keep it concise (%s):\n\n%s", guide, text)
	}
	return "You are a study assistant summarizing learning material.", user
}

func simplifyPrompt(text string, opts Options) (string, string) {
	tone := opts.Tone
	switch tone {
	case "more-formal", "as-is":
	default:
		tone = "more-casual"
	}
	return "You rewrite text so it is easier to study from, without losing information.",
		fmt.Sprintf("Rewrite the following text in simpler language with a %s tone, keeping the original length:\n\n%s", tone, text)
}

func lengthGuide(length string) string {
	switch length {
	case "short":
		return "2-3 sentences"
	case "long":
		return "2-3 paragraphs"
	default: // medium
		return "1 paragraph (4-6 sentences)"
	}
}
