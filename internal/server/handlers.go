package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/Deva-here/ScribbleForge/pkg/buildinfo"
	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
	"github.com/Deva-here/ScribbleForge/pkg/integrations"
	"github.com/Deva-here/ScribbleForge/pkg/session"
	"github.com/Deva-here/ScribbleForge/pkg/studio"
	"github.com/Deva-here/ScribbleForge/pkg/style"
)

type ctxKey struct{}

type sessionResponse struct {
	ID    string       `json:"id"`
	State studio.State `json:"state"`
}

type createSessionRequest struct {
	Text     *string       `json:"text"`
	Settings style.Partial `json:"settings"`
}

type textRequest struct {
	Text string `json:"text"`
}

type settingRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type analyzeRequest struct {
	Image string `json:"image"`
}

type presetsResponse struct {
	Presets      map[style.Instrument]style.Preset `json:"presets"`
	FontFamilies []style.FontFamily                `json:"fontFamilies"`
	Instruments  []style.Instrument                `json:"instruments"`
	Papers       []style.Paper                     `json:"papers"`
	Fields       []style.Field                     `json:"fields"`
	Defaults     style.Settings                    `json:"defaults"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  buildinfo.Version,
		"sessions": s.store.Len(),
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, presetsResponse{
		Presets:      style.Presets(),
		FontFamilies: style.FontFamilies(),
		Instruments:  style.Instruments(),
		Papers:       style.Papers(),
		Fields:       style.Fields(),
		Defaults:     style.Default(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}

	initial := studio.InitialState()
	if req.Text != nil {
		if err := errs.ValidateText("text", *req.Text, errs.MaxTextLength); err != nil {
			s.writeError(w, r, err)
			return
		}
		initial.Text = *req.Text
	}
	if _, dropped := req.Settings.Sanitize(); len(dropped) > 0 {
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidValue, "invalid settings: %v", dropped))
		return
	}
	initial.Settings = style.Merge(initial.Settings, req.Settings)

	ctrl := s.newController(studio.WithInitialState(initial), studio.WithLogger(s.logger))
	sess := session.New(ctrl, s.sessionTTL)
	if err := s.store.Set(r.Context(), sess); err != nil {
		if errors.Is(err, session.ErrLimit) {
			w.Header().Set("Retry-After", "60")
			err = errs.Wrap(errs.ErrCodeSessionLimit, err, "too many active sessions")
		}
		s.writeError(w, r, err)
		return
	}

	log.FromContext(r.Context()).Debug("session created", "session", sess.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, State: ctrl.State()})
}

// loadSession resolves {id}, extends its TTL and stores it in the request
// context.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !session.ValidID(id) {
			s.writeError(w, r, errs.New(errs.ErrCodeSessionNotFound, "session %q not found", id))
			return
		}

		sess, err := s.store.Get(r.Context(), id)
		switch {
		case errors.Is(err, session.ErrExpired):
			s.writeError(w, r, errs.New(errs.ErrCodeSessionNotFound, "session %q expired", id))
			return
		case err != nil:
			s.writeError(w, r, err)
			return
		case sess == nil:
			s.writeError(w, r, errs.New(errs.ErrCodeSessionNotFound, "session %q not found", id))
			return
		}
		_ = s.store.Touch(r.Context(), id, s.sessionTTL)

		ctx := context.WithValue(r.Context(), ctxKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(ctxKey{}).(*session.Session)
	return sess
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: sess.Controller.State()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), sessionFrom(r).ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errs.ValidateText("text", req.Text, errs.MaxTextLength); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := sessionFrom(r)
	sess.Controller.SetText(req.Text)
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: sess.Controller.State()})
}

func (s *Server) handleChangeSetting(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	field, err := style.ParseField(req.Field)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := sessionFrom(r)
	if err := sess.Controller.ChangeSetting(field, req.Value); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: sess.Controller.State()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.Controller.Reset()
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: sess.Controller.State()})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errs.ValidateText("prompt", req.Prompt, errs.MaxPromptLength); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctrl := sessionFrom(r).Controller
	s.runFlow(w, r, studio.FlowGenerate,
		func(ctx context.Context) error { return ctrl.GenerateText(ctx, req.Prompt) },
		func(ctx context.Context) (<-chan error, error) { return ctrl.StartGenerateText(ctx, req.Prompt) },
	)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := integrations.ParseDataURI(req.Image); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctrl := sessionFrom(r).Controller
	s.runFlow(w, r, studio.FlowAnalyze,
		func(ctx context.Context) error { return ctrl.AnalyzeStyle(ctx, req.Image) },
		func(ctx context.Context) (<-chan error, error) { return ctrl.StartAnalyzeStyle(ctx, req.Image) },
	)
}

// runFlow runs a flow inline when the request asks to wait and in the
// background otherwise. A flow failure is not an HTTP error: the returned
// state carries the user-facing message. Only a rejected start is.
func (s *Server) runFlow(w http.ResponseWriter, r *http.Request, flow studio.Flow,
	run func(context.Context) error, start func(context.Context) (<-chan error, error),
) {
	sess := sessionFrom(r)
	logger := s.logger.With("session", sess.ID, "flow", flow)

	if wait(r) {
		err := run(log.WithContext(r.Context(), logger))
		if errs.Is(err, errs.ErrCodeFlowInFlight) {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: sess.Controller.State()})
		return
	}

	// The flow outlives the request; it keeps the logger but not the
	// request's cancellation.
	ctx, cancel := context.WithTimeout(log.WithContext(context.Background(), logger), s.flowTimeout)
	done, err := start(ctx)
	if err != nil {
		cancel()
		s.writeError(w, r, err)
		return
	}

	s.flows.Add(1)
	go func() {
		defer s.flows.Done()
		defer cancel()
		if err := <-done; err == nil {
			logger.Debug("flow finished")
		}
	}()

	writeJSON(w, http.StatusAccepted, sessionResponse{ID: sess.ID, State: sess.Controller.State()})
}

func wait(r *http.Request) bool {
	v := r.URL.Query().Get("wait")
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
