// Package anyllm implements [suggest.Suggester] on top of
// github.com/mozilla-ai/any-llm-go, a unified multi-provider LLM interface
// supporting OpenAI, Anthropic, Gemini, Ollama, DeepSeek, Mistral, Groq, and
// local llama.cpp/llamafile servers.
//
// Usage:
//
//	s, err := anyllm.New("ollama", "llama3.2", anyllmlib.WithBaseURL("http://localhost:11434"))
//	s, err := anyllm.NewOpenAI("gpt-4o-mini")
package anyllm

import (
	"context"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/SimplyKushal/intelligent-autocorrect-system/pkg/suggest"
)

const (
	// defaultTemperature keeps correction output near-deterministic.
	defaultTemperature = 0.1

	// defaultMaxTokens bounds the reply: a corrected word or short phrase,
	// never prose.
	defaultMaxTokens = 30
)

// systemPrompt constrains the model to conservative single-word correction.
const systemPrompt = `You are a spelling correction assistant.
Given a possibly misspelled word (and optional preceding context), reply with the corrected word only.
Rules:
- Reply with the corrected word and nothing else: no punctuation, no quotes, no explanation.
- If the word is already correct, reply with the word unchanged.
- Never invent a different word; only fix spelling.`

// Option is a functional option for configuring a [Suggester].
type Option func(*Suggester)

// WithTemperature overrides the sampling temperature. Default: 0.1.
func WithTemperature(t float64) Option {
	return func(s *Suggester) {
		s.temperature = t
	}
}

// Suggester implements [suggest.Suggester] by delegating to an any-llm-go
// provider. It is safe for concurrent use.
type Suggester struct {
	backend     anyllmlib.Provider
	model       string
	temperature float64
}

// Compile-time interface check.
var _ suggest.Suggester = (*Suggester)(nil)

// New creates a Suggester backed by the named LLM provider.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama",
// "deepseek", "mistral", "groq", "llamacpp", "llamafile". model is the
// provider-specific model name. Without an API-key option, the provider
// falls back to its usual environment variable (OPENAI_API_KEY, …).
func New(providerName, model string, backendOpts []anyllmlib.Option, opts ...Option) (*Suggester, error) {
	if providerName == "" {
		return nil, fmt.Errorf("anyllm: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("anyllm: model must not be empty")
	}

	backend, err := createBackend(providerName, backendOpts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", providerName, err)
	}

	s := &Suggester{
		backend:     backend,
		model:       model,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// NewOpenAI creates a Suggester backed by OpenAI.
func NewOpenAI(model string, opts ...Option) (*Suggester, error) {
	return New("openai", model, nil, opts...)
}

// NewOllama creates a Suggester backed by a local Ollama instance.
func NewOllama(model string, opts ...Option) (*Suggester, error) {
	return New("ollama", model, nil, opts...)
}

// createBackend creates the underlying any-llm-go provider by name.
func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	case "llamafile":
		return llamafile.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, deepseek, mistral, groq, llamacpp, llamafile", providerName)
	}
}

// Suggest implements [suggest.Suggester]. Network and provider errors are
// returned to the caller; the cascade treats them as a skipped stage.
func (s *Suggester) Suggest(ctx context.Context, req suggest.Request) (string, error) {
	temp := s.temperature
	maxTokens := defaultMaxTokens

	params := anyllmlib.CompletionParams{
		Model: s.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: systemPrompt},
			{Role: anyllmlib.RoleUser, Content: buildPrompt(req)},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}

	resp, err := s.backend.Completion(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anyllm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("anyllm: empty choices in response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.ContentString()), nil
}

// buildPrompt formats the user message. Context, when present, helps the
// model disambiguate; tone and formality nudge word choice.
func buildPrompt(req suggest.Request) string {
	var sb strings.Builder
	if req.Context != "" {
		fmt.Fprintf(&sb, "Correct this text: %s %s", req.Context, req.Word)
	} else {
		fmt.Fprintf(&sb, "Correct this word: %s", req.Word)
	}
	if req.Tone != "" || req.Formality != "" {
		fmt.Fprintf(&sb, "\n(tone: %s, formality: %s)", req.Tone, req.Formality)
	}
	return sb.String()
}
