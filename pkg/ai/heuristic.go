package ai

import (
	"context"
	"fmt"
	"strings"

	"edumate/pkg/domain"
)

// HeuristicBackend is a deterministic text-heuristic stand-in for an AI
// backend. It needs no network or model: same input, same output. It
// keeps the app usable when no provider is configured and backs tests.
type HeuristicBackend struct{}

// NewHeuristicBackend returns the stand-in backend.
func NewHeuristicBackend() *HeuristicBackend {
	return &HeuristicBackend{}
}

// Transform implements Backend with pure string heuristics.
func (h *HeuristicBackend) Transform(_ context.Context, req Request, _ ProgressFunc) (string, error) {
	switch req.Kind {
	case domain.OpSummarize:
		return h.summarize(req.Text, req.Options), nil
	case domain.OpSimplify:
		return h.simplify(req.Text), nil
	case domain.OpProofread:
		return h.proofread(req.Text), nil
	case domain.OpQuestions:
		count := req.Options.QuestionCount
		if count <= 0 {
			count = defaultQuestionCount
		}
		return h.questions(req.Text, count), nil
	}
	return "", ErrUnknownOperation
}

func (h *HeuristicBackend) summarize(text string, opts Options) string {
	sentences := splitSentences(text)
	n := sentenceBudget(opts.Length)
	if n > len(sentences) {
		n = len(sentences)
	}
	head := sentences[:n]

	switch opts.Style {
	case "tl;dr":
		return "TL;DR: " + strings.Join(head, " ")
	case "teaser":
		return strings.Join(head, " ") + " ..."
	case "headline":
		return strings.TrimRight(sentences[0], ".!?")
	default: // key-points
		var b strings.Builder
		for _, s := range head {
			b.WriteString("- ")
			b.WriteString(s)
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n")
	}
}

// simplify breaks compound sentences apart so each one carries a single
// clause.
func (h *HeuristicBackend) simplify(text string) string {
	sentences := splitSentences(text)
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		for _, clause := range strings.Split(s, ";") {
			clause = strings.TrimSpace(strings.TrimRight(clause, ".!?"))
			if clause == "" {
				continue
			}
			out = append(out, capitalize(clause)+".")
		}
	}
	return strings.Join(out, " ")
}

// proofread normalizes whitespace, capitalizes sentence starts, and
// ensures terminal punctuation.
func (h *HeuristicBackend) proofread(text string) string {
	sentences := splitSentences(text)
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		s = strings.Join(strings.Fields(s), " ")
		if !strings.ContainsAny(s[len(s)-1:], ".!?") {
			s += "."
		}
		out = append(out, capitalize(s))
	}
	return strings.Join(out, " ")
}

func (h *HeuristicBackend) questions(text string, count int) string {
	sentences := splitSentences(text)
	if count > len(sentences) {
		count = len(sentences)
	}
	var b strings.Builder
	for i := 0; i < count; i++ {
		statement := strings.TrimRight(sentences[i], ".!?")
		fmt.Fprintf(&b, "Q%d: What is meant by: %q?\nA%d: %s.\n\n", i+1, statement, i+1, statement)
	}
	return strings.TrimRight(b.String(), "\n")
}

func sentenceBudget(length string) int {
	switch length {
	case "short":
		return 2
	case "long":
		return 6
	default: // medium
		return 4
	}
}

// splitSentences breaks text on terminal punctuation. It always returns
// at least one element for non-blank input.
func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	var sentences []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" && s != "." && s != "!" && s != "?" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	if len(sentences) == 0 {
		sentences = []string{text}
	}
	return sentences
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
