package studio

import "github.com/Deva-here/ScribbleForge/pkg/style"

// Fixed user-facing failure messages. The underlying cause is logged, never
// shown.
const (
	GenerationFailedMessage = "Failed to generate text. Please try again."
	AnalysisFailedMessage   = "Failed to analyze handwriting. Please try a clearer image."
)

// State is one session's complete, replace-only state.
type State struct {
	Text     string         `json:"text" yaml:"text"`
	Settings style.Settings `json:"settings" yaml:"settings"`
	Busy     bool           `json:"busy" yaml:"busy"`

	// Error is the current user-facing error message; empty means none.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// InitialState returns the state a new session starts with: the sample
// text and the default settings.
func InitialState() State {
	return State{
		Text:     style.DefaultText,
		Settings: style.Default(),
	}
}

// HasError reports whether s carries an error message.
func (s State) HasError() bool { return s.Error != "" }
