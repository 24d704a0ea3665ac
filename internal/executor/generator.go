package executor

import (
	"context"
	"fmt"
	"strings"
)

// Generator is the text-generation capability a task is executed against.
// Implementations must not retry internally.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// EchoGenerator answers every prompt with its own task line. It makes
// dry runs possible without any provider credentials.
type EchoGenerator struct{}

func (EchoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "Task: ") {
			return fmt.Sprintf("echo: %s", strings.TrimPrefix(line, "Task: ")), nil
		}
	}
	return "echo", nil
}
