// Package integrations provides clients for the remote model providers
// behind text generation and handwriting analysis.
//
// # Overview
//
// Each provider has its own subpackage implementing [Generator] and
// [Analyzer]:
//
//   - [gemini]: Google Gemini generateContent REST API
//   - [openai]: OpenAI chat completions (and compatible endpoints)
//
// # Client Pattern
//
// Provider clients follow a consistent pattern:
//
//	client := gemini.NewClient(gemini.Config{APIKey: key, Model: "gemini-2.5-flash"})
//	text, err := client.GenerateText(ctx, "a poem about rain")
//	partial, err := client.AnalyzeHandwriting(ctx, "data:image/png;base64,...")
//
// # Shared Infrastructure
//
// [Client] posts JSON with retry on network errors, 5xx and 429 responses,
// mapping HTTP statuses to [ErrNotFound], [ErrUnauthorized],
// [ErrRateLimited] and [ErrNetwork]. [ParseDataURI] validates image input,
// [AnalysisPrompt] and [DecodeAnalysis] define the analysis contract shared
// by all providers, and [CachedAnalyzer] memoizes analyses in a
// [cache.Cache].
//
// [gemini]: github.com/Deva-here/ScribbleForge/pkg/integrations/gemini
// [openai]: github.com/Deva-here/ScribbleForge/pkg/integrations/openai
// [cache.Cache]: github.com/Deva-here/ScribbleForge/pkg/cache.Cache
package integrations
