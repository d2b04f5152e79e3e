package ai

import "github.com/kapu/courtside-go/internal/prompt"

// Preset names a sampling profile.
type Preset string

const (
	PresetBlurb       Preset = "blurb"
	PresetHealthCheck Preset = "health_check"
)

// Sampling carries the knobs both providers understand. Zero TopK means the
// provider default.
type Sampling struct {
	Temperature float32
	TopP        float32
	TopK        int
	MaxTokens   int
}

var samplingByPreset = map[Preset]Sampling{
	// thinking models spend output tokens before the answer, keep headroom
	PresetBlurb:       {Temperature: 0.4, TopP: 0.95, TopK: 40, MaxTokens: 4096},
	PresetHealthCheck: {Temperature: 0, TopP: 1, MaxTokens: 16},
}

// Sampling falls back to the blurb profile for unknown presets.
func (p Preset) Sampling() Sampling {
	if s, ok := samplingByPreset[p]; ok {
		return s
	}
	return samplingByPreset[PresetBlurb]
}

// Request is one completion. Model overrides the provider default when set.
type Request struct {
	Prompt prompt.Blurb
	Preset Preset
	Model  string
}

// Completion is what a provider answered. Text may be empty.
type Completion struct {
	Text     string
	Provider string
	Model    string
	Fallback bool
}

func healthCheckRequest() Request {
	return Request{
		Prompt: prompt.Blurb{Rules: "Reply with the single word pong.", Subject: "ping"},
		Preset: PresetHealthCheck,
	}
}
