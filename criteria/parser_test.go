package criteria

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/trialmatch/ai"
	"github.com/poiesic/trialmatch/ai/mock"
	"github.com/poiesic/trialmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser_RequiresCompleter(t *testing.T) {
	_, err := NewParser(nil)
	assert.ErrorIs(t, err, ErrCompleterRequired)
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     core.ParsedCriteria
	}{
		{
			name:     "clean json",
			response: `{"inclusion": ["Age 18 or older", "Type 2 diabetes"], "exclusion": ["Pregnancy"]}`,
			want: core.ParsedCriteria{
				Inclusion: []string{"Age 18 or older", "Type 2 diabetes"},
				Exclusion: []string{"Pregnancy"},
			},
		},
		{
			name:     "json wrapped in prose",
			response: "Sure! Here it is:\n{\"inclusion\": [\"Hypertension\"], \"exclusion\": []}\nLet me know.",
			want: core.ParsedCriteria{
				Inclusion: []string{"Hypertension"},
				Exclusion: []string{},
			},
		},
		{
			name:     "no braces",
			response: "I cannot help with that.",
			want:     core.ParsedCriteria{},
		},
		{
			name:     "malformed json",
			response: `{"inclusion": ["unterminated}`,
			want:     core.ParsedCriteria{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := mock.NewMockCompleter()
			completer.CompleteFunc = func(ctx context.Context, prompt string, maxTokens int) (string, error) {
				return tt.response, nil
			}
			parser, err := NewParser(completer)
			require.NoError(t, err)

			got, err := parser.Parse(context.Background(), "Inclusion: adults")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, completer.CallCount())
		})
	}
}

func TestParser_Parse_CompletionErrorPropagates(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "", errors.New("service unavailable")
	}
	parser, err := NewParser(completer)
	require.NoError(t, err)

	got, err := parser.Parse(context.Background(), "Inclusion: adults")
	require.ErrorIs(t, err, core.ErrExternalService)
	assert.Contains(t, err.Error(), "service unavailable")
	assert.False(t, got.IsScoreable())
}

func TestParser_Parse_ClientTimeoutPropagates(t *testing.T) {
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "", fmt.Errorf("Post \"http://localhost:11434/v1/chat/completions\": %w (Client.Timeout exceeded while awaiting headers)", context.DeadlineExceeded)
	}
	parser, err := NewParser(completer)
	require.NoError(t, err)

	// The caller's context is still live; only the HTTP client gave up.
	_, err = parser.Parse(context.Background(), "Inclusion: adults")
	require.ErrorIs(t, err, core.ErrExternalService)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParser_Parse_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "", ctx.Err()
	}
	parser, err := NewParser(completer)
	require.NoError(t, err)

	_, err = parser.Parse(ctx, "Inclusion: adults")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParser_Parse_PromptAndTokens(t *testing.T) {
	var gotPrompt string
	var gotTokens int
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		gotPrompt = prompt
		gotTokens = maxTokens
		return mock.EmptyCriteriaResponse, nil
	}

	parser, err := NewParser(completer)
	require.NoError(t, err)
	_, err = parser.Parse(context.Background(), "Must be over 18")
	require.NoError(t, err)

	assert.Equal(t, ai.DefaultMaxNewTokens, gotTokens)
	assert.True(t, strings.HasPrefix(gotPrompt, "[INST]"))
	assert.True(t, strings.HasSuffix(gotPrompt, `Criteria: "Must be over 18"[/INST]`))

	parser, err = NewParser(completer, WithMaxTokens(128))
	require.NoError(t, err)
	_, err = parser.Parse(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 128, gotTokens)
}

func TestBuildPrompt_Truncates(t *testing.T) {
	long := strings.Repeat("é", MaxInputChars+500)
	prompt := BuildPrompt(long)

	assert.Equal(t, MaxInputChars, strings.Count(prompt, "é"))
	assert.True(t, utf8.ValidString(prompt))

	short := BuildPrompt("short")
	assert.Contains(t, short, `"short"`)
}
