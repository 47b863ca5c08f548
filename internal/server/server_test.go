package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
	"github.com/Deva-here/ScribbleForge/pkg/integrations"
	"github.com/Deva-here/ScribbleForge/pkg/session"
	"github.com/Deva-here/ScribbleForge/pkg/studio"
	"github.com/Deva-here/ScribbleForge/pkg/style"
)

type fakeGenerator struct {
	text string
	err  error
}

func (g *fakeGenerator) GenerateText(context.Context, string) (string, error) {
	return g.text, g.err
}

// gatedGenerator blocks until release is closed.
type gatedGenerator struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedGenerator) GenerateText(ctx context.Context, _ string) (string, error) {
	g.started <- struct{}{}
	select {
	case <-g.release:
		return "released", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type fakeAnalyzer struct {
	partial style.Partial
	err     error
}

func (a *fakeAnalyzer) AnalyzeHandwriting(context.Context, string) (style.Partial, error) {
	return a.partial, a.err
}

var testImage = integrations.EncodeDataURI("image/png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})

type fixture struct {
	srv   *Server
	store *session.MemoryStore
	h     http.Handler
}

func newFixture(t *testing.T, gen studio.TextGenerator, an studio.StyleAnalyzer, ctrlOpts ...studio.Option) *fixture {
	t.Helper()
	store := session.NewMemoryStore(session.WithMaxSessions(3))
	factory := func(opts ...studio.Option) *studio.Controller {
		return studio.New(gen, an, append(opts, ctrlOpts...)...)
	}
	srv := New(store, factory, WithLogger(log.New(io.Discard)))
	t.Cleanup(srv.Wait)
	return &fixture{srv: srv, store: store, h: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) create(t *testing.T) sessionResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", rec.Code, rec.Body)
	}
	return decode[sessionResponse](t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body, err)
	}
	return v
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code errs.Code) {
	t.Helper()
	if rec.Code != status {
		t.Errorf("status = %d, want %d (%s)", rec.Code, status, rec.Body)
	}
	if got := decode[errorResponse](t, rec); got.Code != code {
		t.Errorf("code = %q, want %q", got.Code, code)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil, nil)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestPresets(t *testing.T) {
	f := newFixture(t, nil, nil)
	rec := f.do(t, http.MethodGet, "/api/v1/presets", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[presetsResponse](t, rec)
	if got.Presets[style.InstrumentMarker].FontFamily != style.FontPermanentMarker {
		t.Errorf("marker preset = %+v", got.Presets[style.InstrumentMarker])
	}
	if len(got.FontFamilies) != 8 || len(got.Papers) != 4 || len(got.Fields) != 13 {
		t.Errorf("domains = %d fonts, %d papers, %d fields", len(got.FontFamilies), len(got.Papers), len(got.Fields))
	}
	if got.Defaults != style.Default() {
		t.Errorf("defaults = %+v", got.Defaults)
	}
}

func TestSessionLifecycle(t *testing.T) {
	f := newFixture(t, nil, nil)
	created := f.create(t)

	if !session.ValidID(created.ID) {
		t.Errorf("id = %q", created.ID)
	}
	if created.State != studio.InitialState() {
		t.Errorf("initial state = %+v", created.State)
	}

	rec := f.do(t, http.MethodGet, "/api/v1/sessions/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, "/api/v1/sessions/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/"+created.ID, nil)
	expectError(t, rec, http.StatusNotFound, errs.ErrCodeSessionNotFound)
}

func TestCreateSessionWithInitialValues(t *testing.T) {
	f := newFixture(t, nil, nil)
	rec := f.do(t, http.MethodPost, "/api/v1/sessions", `{"text":"hi","settings":{"paper":"grid","inkBleed":40}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	st := decode[sessionResponse](t, rec).State
	if st.Text != "hi" || st.Settings.Paper != style.PaperGrid || st.Settings.InkBleed != 40 {
		t.Errorf("state = %+v", st)
	}
	if st.Settings.Instrument != style.InstrumentPen {
		t.Errorf("instrument = %q, want default kept", st.Settings.Instrument)
	}
}

func TestCreateSessionErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errs.Code
	}{
		{"out of range", `{"settings":{"pressure":500}}`, errs.ErrCodeInvalidValue},
		{"unknown key", `{"colour":"red"}`, errs.ErrCodeInvalidInput},
		{"malformed", `{"text":`, errs.ErrCodeInvalidInput},
		{"control characters", `{"text":"a\u0000b"}`, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			rec := f.do(t, http.MethodPost, "/api/v1/sessions", tt.body)
			expectError(t, rec, http.StatusBadRequest, tt.code)
			if f.store.Len() != 0 {
				t.Error("session created despite error")
			}
		})
	}
}

func TestSessionLimit(t *testing.T) {
	f := newFixture(t, nil, nil)
	for range 3 {
		f.create(t)
	}
	rec := f.do(t, http.MethodPost, "/api/v1/sessions", nil)
	expectError(t, rec, http.StatusServiceUnavailable, errs.ErrCodeSessionLimit)
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t, nil, nil)
	for _, id := range []string{"not-a-uuid", "00000000-0000-4000-8000-000000000000"} {
		rec := f.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
		expectError(t, rec, http.StatusNotFound, errs.ErrCodeSessionNotFound)
	}
}

func TestExpiredSession(t *testing.T) {
	f := newFixture(t, nil, nil)
	sess := session.New(studio.New(nil, nil), -time.Second)
	_ = f.store.Set(context.Background(), sess)

	rec := f.do(t, http.MethodGet, "/api/v1/sessions/"+sess.ID, nil)
	expectError(t, rec, http.StatusNotFound, errs.ErrCodeSessionNotFound)
}

func TestSetText(t *testing.T) {
	f := newFixture(t, nil, nil)
	id := f.create(t).ID

	rec := f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/text", textRequest{Text: "new body"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if st := decode[sessionResponse](t, rec).State; st.Text != "new body" {
		t.Errorf("text = %q", st.Text)
	}

	rec = f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/text", strings.Repeat("x", 3))
	expectError(t, rec, http.StatusBadRequest, errs.ErrCodeInvalidInput)
}

func TestChangeSetting(t *testing.T) {
	f := newFixture(t, nil, nil)
	id := f.create(t).ID
	path := "/api/v1/sessions/" + id + "/settings"

	rec := f.do(t, http.MethodPatch, path, settingRequest{Field: "instrument", Value: "marker"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	s := decode[sessionResponse](t, rec).State.Settings
	if s.FontFamily != style.FontPermanentMarker || s.Color != "#111111" || s.Thickness != 700 {
		t.Errorf("marker preset not applied: %+v", s)
	}

	rec = f.do(t, http.MethodPatch, path, settingRequest{Field: "line_height", Value: 3.0})
	if got := decode[sessionResponse](t, rec).State.Settings.LineHeight; got != 3 {
		t.Errorf("lineHeight = %v", got)
	}

	tests := []struct {
		name string
		req  settingRequest
		code errs.Code
	}{
		{"unknown field", settingRequest{Field: "opacity", Value: 1.0}, errs.ErrCodeInvalidField},
		{"wrong type", settingRequest{Field: "thickness", Value: "bold"}, errs.ErrCodeInvalidValue},
		{"out of range", settingRequest{Field: "smudgeLevel", Value: 9.0}, errs.ErrCodeInvalidValue},
		{"bad enum", settingRequest{Field: "paper", Value: "papyrus"}, errs.ErrCodeInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPatch, path, tt.req)
			expectError(t, rec, http.StatusBadRequest, tt.code)
		})
	}

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	if got := decode[sessionResponse](t, rec).State.Settings; got.LineHeight != 3 || got.Paper != style.PaperLined {
		t.Errorf("failed updates changed settings: %+v", got)
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t, nil, nil)
	id := f.create(t).ID
	f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/text", textRequest{Text: "changed"})

	rec := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/reset", nil)
	if st := decode[sessionResponse](t, rec).State; st != studio.InitialState() {
		t.Errorf("state after reset = %+v", st)
	}
}

func TestGenerateWait(t *testing.T) {
	tests := []struct {
		name     string
		gen      *fakeGenerator
		wantText string
		wantErr  string
	}{
		{"success", &fakeGenerator{text: "A poem."}, "A poem.", ""},
		{"failure", &fakeGenerator{err: errors.New("quota")}, style.DefaultText, studio.GenerationFailedMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.gen, nil)
			id := f.create(t).ID

			rec := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/generate?wait=true", generateRequest{Prompt: "a poem"})
			if rec.Code != http.StatusOK {
				t.Fatalf("status %d: %s", rec.Code, rec.Body)
			}
			st := decode[sessionResponse](t, rec).State
			if st.Text != tt.wantText || st.Error != tt.wantErr || st.Busy {
				t.Errorf("state = %+v", st)
			}
		})
	}
}

func TestGenerateRejectsLongPrompt(t *testing.T) {
	f := newFixture(t, &fakeGenerator{text: "x"}, nil)
	id := f.create(t).ID
	prompt := strings.Repeat("a", errs.MaxPromptLength+1)

	rec := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/generate", generateRequest{Prompt: prompt})
	expectError(t, rec, http.StatusBadRequest, errs.ErrCodeInvalidInput)
}

func TestGenerateAsync(t *testing.T) {
	gen := &gatedGenerator{started: make(chan struct{}, 1), release: make(chan struct{})}
	f := newFixture(t, gen, nil, studio.WithSingleFlight(true))
	id := f.create(t).ID
	path := "/api/v1/sessions/" + id + "/generate"

	rec := f.do(t, http.MethodPost, path, generateRequest{Prompt: "p"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if !decode[sessionResponse](t, rec).State.Busy {
		t.Error("accepted state should be busy")
	}
	<-gen.started

	rec = f.do(t, http.MethodPost, path, generateRequest{Prompt: "again"})
	expectError(t, rec, http.StatusConflict, errs.ErrCodeFlowInFlight)

	close(gen.release)
	f.srv.Wait()

	rec = f.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	if st := decode[sessionResponse](t, rec).State; st.Text != "released" || st.Busy {
		t.Errorf("state after flow = %+v", st)
	}
}

func TestAnalyze(t *testing.T) {
	paper := style.PaperParchment
	bleed := 70.0
	an := &fakeAnalyzer{partial: style.Partial{Paper: &paper, InkBleed: &bleed}}
	f := newFixture(t, nil, an)
	id := f.create(t).ID

	rec := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/analyze?wait=1", analyzeRequest{Image: testImage})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	s := decode[sessionResponse](t, rec).State.Settings
	if s.Paper != paper || s.InkBleed != bleed || s.Instrument != style.InstrumentCustom {
		t.Errorf("settings = %+v", s)
	}
	if s.FontFamily != style.FontCaveat {
		t.Errorf("fontFamily = %q, want unchanged", s.FontFamily)
	}
}

func TestAnalyzeFailure(t *testing.T) {
	f := newFixture(t, nil, &fakeAnalyzer{err: errors.New("blurry")})
	id := f.create(t).ID

	rec := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/analyze?wait=true", analyzeRequest{Image: testImage})
	st := decode[sessionResponse](t, rec).State
	if st.Error != studio.AnalysisFailedMessage || st.Settings != style.Default() {
		t.Errorf("state = %+v", st)
	}
}

func TestAnalyzeRejectsBadImage(t *testing.T) {
	f := newFixture(t, nil, &fakeAnalyzer{})
	id := f.create(t).ID

	for _, img := range []string{"", "not a uri", "data:text/plain;base64,aGk=", "data:image/png,raw"} {
		rec := f.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/analyze", analyzeRequest{Image: img})
		expectError(t, rec, http.StatusBadRequest, errs.ErrCodeInvalidImage)
	}
}

func TestEvents(t *testing.T) {
	f := newFixture(t, nil, nil)
	id := f.create(t).ID
	ts := httptest.NewServer(f.h)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/sessions/"+id+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	events := make(chan studio.State, 4)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
		for sc.Scan() {
			data, ok := strings.CutPrefix(sc.Text(), "data: ")
			if !ok {
				continue
			}
			var st studio.State
			if json.Unmarshal([]byte(data), &st) == nil {
				events <- st
			}
		}
		close(events)
	}()

	next := func() studio.State {
		t.Helper()
		select {
		case st := <-events:
			return st
		case <-time.After(2 * time.Second):
			t.Fatal("no event")
			return studio.State{}
		}
	}

	if st := next(); st.Text != style.DefaultText {
		t.Errorf("first event text = %q", st.Text)
	}
	f.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/text", textRequest{Text: "streamed"})
	if st := next(); st.Text != "streamed" {
		t.Errorf("update event text = %q", st.Text)
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[errs.Code]int{
		errs.ErrCodeInvalidField:     http.StatusBadRequest,
		errs.ErrCodeSessionNotFound:  http.StatusNotFound,
		errs.ErrCodeFlowInFlight:     http.StatusConflict,
		errs.ErrCodeRateLimited:      http.StatusTooManyRequests,
		errs.ErrCodeSessionLimit:     http.StatusServiceUnavailable,
		errs.ErrCodeGenerationFailed: http.StatusInternalServerError,
		"":                           http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := statusFor(code); got != want {
			t.Errorf("statusFor(%q) = %d, want %d", code, got, want)
		}
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	f := newFixture(t, nil, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestServeShutsDownWithOpenStream(t *testing.T) {
	f := newFixture(t, nil, nil)
	id := f.create(t).ID
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/v1/sessions/" + id + "/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	if !sc.Scan() || sc.Text() != "event: state" {
		t.Fatalf("first line = %q", sc.Text())
	}

	start := time.Now()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve = %v", err)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("shutdown took %s", elapsed)
		}
	case <-time.After(8 * time.Second):
		t.Fatal("Serve did not return with a stream open")
	}
}
