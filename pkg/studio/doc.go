// Package studio implements the application controller: the single owner of
// a session's text, style settings and busy/error state.
//
// # State
//
// [State] is a value. Every change builds a new State and swaps it in whole,
// so readers never see a half-applied update. [Controller.State] returns a
// copy; [Controller.Subscribe] streams new states to a UI.
//
// # Flows
//
// Two remote flows update the state:
//
//   - [Controller.GenerateText] asks a [TextGenerator] for body text and
//     replaces the text on success.
//   - [Controller.AnalyzeStyle] asks a [StyleAnalyzer] for a partial
//     settings record, merges it over the current settings and forces the
//     instrument to custom.
//
// Each flow sets busy and clears the error when it starts, and clears busy
// when it ends. On failure it sets a fixed user-facing message
// ([GenerationFailedMessage] or [AnalysisFailedMessage]), logs the cause,
// and leaves text and settings as they were.
//
// Flows block until the collaborator returns. [Controller.StartGenerateText]
// and [Controller.StartAnalyzeStyle] return once the session is busy and
// deliver the result on a channel instead. Overlapping flows race: whichever finishes last
// decides the final text, settings, busy and error. [WithSingleFlight]
// rejects a second flow of the same kind while one is pending instead.
// A flow is never cancelled once its call is issued unless the caller's
// context is.
package studio
