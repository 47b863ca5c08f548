package cache

// Keyer builds cache keys. Swap implementations to change the key scheme
// without touching callers.
type Keyer interface {
	// AnalysisKey identifies a style analysis of one image by one model.
	AnalysisKey(imageHash string, opts AnalysisKeyOpts) string
}

// AnalysisKeyOpts are the inputs besides the image that change an
// analysis result.
type AnalysisKeyOpts struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Prompt   string `json:"prompt,omitempty"`
}

// DefaultKeyer produces keys of the form "analysis:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AnalysisKey hashes the image hash together with opts so that switching
// models never serves another model's answer.
func (DefaultKeyer) AnalysisKey(imageHash string, opts AnalysisKeyOpts) string {
	return hashKey("analysis", imageHash, opts)
}
