// Package pkg provides the core libraries for ScribbleForge.
//
// # Overview
//
// ScribbleForge keeps the visual configuration of handwriting-style text and
// drives two remote flows that change it: generating body text from a
// prompt and inferring style settings from a photo of handwriting. The pkg
// directory is organized into three main areas:
//
//  1. Domain - the settings model and the session controller
//  2. Integrations - clients for the remote text and vision models
//  3. Infrastructure - caching, sessions, retries, errors and hooks
//
// # Architecture
//
// The typical data flow through ScribbleForge:
//
//	CLI / TUI / HTTP request
//	         ↓
//	    [studio] Controller (busy/error bookkeeping, flows)
//	         ↓                        ↓
//	    [style] reducer         [integrations] provider client
//	         ↓                        ↓
//	    new Settings            text or a Partial, cached by [cache]
//
// # Quick Start
//
// Update settings and run a flow:
//
//	import (
//	    "context"
//	    "github.com/Deva-here/ScribbleForge/pkg/integrations/gemini"
//	    "github.com/Deva-here/ScribbleForge/pkg/studio"
//	    "github.com/Deva-here/ScribbleForge/pkg/style"
//	)
//
//	client := gemini.NewClient(gemini.Config{APIKey: key})
//	ctrl := studio.New(client, client)
//
//	_ = ctrl.ChangeSetting(style.FieldInstrument, style.InstrumentMarker)
//	_ = ctrl.GenerateText(context.Background(), "a note for the fridge")
//	fmt.Println(ctrl.State().Text)
//
// # Main Packages
//
// ## Domain
//
// [style] - The Settings record, the instrument presets, the single-field
// reducer and partial-settings sanitizing and merging.
//
// [studio] - The per-session controller. Holds text, settings, the busy flag
// and the user-facing error, and runs the generation and analysis flows.
//
// ## Integrations
//
// [integrations] - Shared HTTP client, data URI handling, prompts and the
// cached analyzer. Provider subpackages implement Gemini and OpenAI.
//
// ## Infrastructure
//
// [cache] - Key-value cache with file, Redis and null backends, used for
// analysis results.
//
// [session] - In-memory session store with TTL expiry for the HTTP server.
//
// [httputil] - Retry with exponential backoff.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Flow start and completion hooks.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/style/...    # Specific package
//	go test -run Example ./... # Examples only
//
// [style]: https://pkg.go.dev/github.com/Deva-here/ScribbleForge/pkg/style
// [studio]: https://pkg.go.dev/github.com/Deva-here/ScribbleForge/pkg/studio
// [integrations]: https://pkg.go.dev/github.com/Deva-here/ScribbleForge/pkg/integrations
// [cache]: https://pkg.go.dev/github.com/Deva-here/ScribbleForge/pkg/cache
// [session]: https://pkg.go.dev/github.com/Deva-here/ScribbleForge/pkg/session
// [httputil]: https://pkg.go.dev/github.com/Deva-here/ScribbleForge/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/Deva-here/ScribbleForge/pkg/errors
// [observability]: https://pkg.go.dev/github.com/Deva-here/ScribbleForge/pkg/observability
package pkg
