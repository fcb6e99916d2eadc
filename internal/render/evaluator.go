package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Evaluator executes a code chunk and returns its output as opaque text.
//
// The renderer never embeds a specific execution engine; callers supply an
// Evaluator (or none, in which case executable chunks fail the render).
type Evaluator interface {
	Evaluate(ctx context.Context, lang, code string) (string, error)
}

// ExecEvaluator delegates chunk execution to external interpreter commands,
// one per language, with the chunk code on stdin and stdout captured.
type ExecEvaluator struct {
	// Engines maps a language tag to the command that evaluates it,
	// e.g. "python" -> ["python3", "-"].
	Engines map[string][]string
}

// NewExecEvaluator builds an evaluator from an engines map (typically the
// `engines:` config section).
func NewExecEvaluator(engines map[string][]string) *ExecEvaluator {
	return &ExecEvaluator{Engines: engines}
}

func (e *ExecEvaluator) Evaluate(ctx context.Context, lang, code string) (string, error) {
	argv, ok := e.Engines[lang]
	if !ok || len(argv) == 0 {
		return "", fmt.Errorf("no engine configured for language %q", lang)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(code)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("engine %s: %w: %s", argv[0], err, msg)
		}
		return "", fmt.Errorf("engine %s: %w", argv[0], err)
	}
	return stdout.String(), nil
}
