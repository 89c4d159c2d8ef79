// Package web serves the map document, the trend chart and the playback
// controls over HTTP.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pixil98/go-atlas/internal/atlas"
	"github.com/pixil98/go-atlas/internal/chart"
	"github.com/pixil98/go-atlas/internal/commands"
	"github.com/pixil98/go-atlas/internal/driver"
	"github.com/pixil98/go-atlas/internal/metrics"
	"github.com/pixil98/go-atlas/internal/playback"
	"github.com/pixil98/go-atlas/internal/style"
	"github.com/pixil98/go-atlas/internal/view"
	"github.com/pixil98/go-atlas/internal/yeardata"
)

const shutdownTimeout = 5 * time.Second

// Executor runs one console command line.
type Executor interface {
	Exec(ctx context.Context, line string) (string, error)
}

// WebTarget keeps the latest frame and serves it to browsers. It is both a
// view target and a service worker.
type WebTarget struct {
	addr     string
	controls commands.Controls
	banner   *view.Banner
	exec     Executor
	renderer *chart.Renderer
	schema   yeardata.Schema
	scale    style.Scale
	webDir   string

	mu    sync.RWMutex
	frame *view.Frame
}

func NewWebTarget(addr string, controls commands.Controls, banner *view.Banner, opts ...WebOpt) *WebTarget {
	t := &WebTarget{
		addr:     addr,
		controls: controls,
		banner:   banner,
		renderer: chart.NewRenderer(),
		schema:   yeardata.DefaultSchema,
		scale:    style.DefaultScale,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *WebTarget) Name() string {
	return fmt.Sprintf("web(%s)", t.addr)
}

// Update stores frame for the next request.
func (t *WebTarget) Update(_ context.Context, frame *view.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame = frame
	return nil
}

func (t *WebTarget) Close() error {
	return nil
}

func (t *WebTarget) current() *view.Frame {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.frame
}

// Start serves HTTP until ctx is done.
func (t *WebTarget) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              t.addr,
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "serving http", "addr", t.addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serving http on %s: %w", t.addr, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler for embedding in existing servers.
func (t *WebTarget) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/view", t.handleView)
	mux.HandleFunc("GET /api/data", t.handleData)
	mux.HandleFunc("GET /api/style", t.handleStyle)
	mux.HandleFunc("GET /api/chart.png", t.handleChart)
	mux.HandleFunc("GET /api/status", t.handleStatus)
	mux.HandleFunc("GET /api/popup", t.handlePopup)

	mux.HandleFunc("POST /api/play", t.control(t.controls.Play))
	mux.HandleFunc("POST /api/pause", t.control(t.controls.Pause))
	mux.HandleFunc("POST /api/toggle", t.control(t.controls.TogglePlay))
	mux.HandleFunc("POST /api/next", t.control(t.controls.Next))
	mux.HandleFunc("POST /api/previous", t.control(t.controls.Previous))
	mux.HandleFunc("POST /api/clear", t.control(t.controls.ClearSelection))
	mux.HandleFunc("POST /api/jump", t.handleJump)
	mux.HandleFunc("POST /api/speed", t.handleSpeed)
	mux.HandleFunc("POST /api/select", t.handleSelect)
	mux.HandleFunc("POST /api/3d", t.toggle(t.controls.Toggle3D))
	mux.HandleFunc("POST /api/stats", t.toggle(t.controls.ToggleStats))
	if t.exec != nil {
		mux.HandleFunc("POST /api/command", t.handleCommand)
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	if t.webDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(t.webDir)))
	}

	return mux
}

type viewResponse struct {
	*view.Frame
	Banner view.BannerStatus `json:"banner"`
}

func (t *WebTarget) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewResponse{Frame: t.current(), Banner: t.banner.Status()})
}

func (t *WebTarget) handleData(w http.ResponseWriter, r *http.Request) {
	f := t.current()
	if f == nil || f.Data == nil {
		writeError(w, http.StatusServiceUnavailable, atlas.NoDataMessage)
		return
	}
	w.Header().Set("X-Atlas-Year", strconv.Itoa(f.Year))
	writeJSON(w, http.StatusOK, f.Data)
}

func (t *WebTarget) handleStyle(w http.ResponseWriter, r *http.Request) {
	f := t.current()
	if f == nil || f.Data == nil {
		writeError(w, http.StatusServiceUnavailable, atlas.NoDataMessage)
		return
	}
	writeJSON(w, http.StatusOK, style.Build(f.Data, style.Options{
		Scale:     t.scale,
		Property:  t.schema.IndicatorProperty,
		PromoteID: t.schema.IDProperty,
		Show3D:    f.Show3D,
		Touched:   f.Touched,
		Extruded:  f.Extruded,
	}))
}

func (t *WebTarget) handleChart(w http.ResponseWriter, r *http.Request) {
	f := t.current()
	if f == nil {
		writeError(w, http.StatusServiceUnavailable, atlas.NoDataMessage)
		return
	}

	var buf bytes.Buffer
	err := t.renderer.Render(&buf, f.Chart)
	if errors.Is(err, chart.ErrNothingToDraw) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "rendering chart", "year", f.Year, "error", err)
		writeError(w, http.StatusInternalServerError, "Render error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (t *WebTarget) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := t.controls.Status(r.Context())
	if err != nil {
		t.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (t *WebTarget) handlePopup(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("country")
	if key == "" {
		writeError(w, http.StatusBadRequest, "country is required")
		return
	}
	p, err := t.controls.Describe(r.Context(), key)
	if err != nil {
		t.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, popupResponse(p))
}

// control runs fn and answers with the resulting status.
func (t *WebTarget) control(fn func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r.Context()); err != nil {
			t.fail(w, r, err)
			return
		}
		t.handleStatus(w, r)
	}
}

func (t *WebTarget) toggle(fn func(context.Context) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		on, err := fn(r.Context())
		if err != nil {
			t.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"on": on})
	}
}

func (t *WebTarget) handleJump(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	t.control(func(ctx context.Context) error {
		return t.controls.JumpTo(ctx, year)
	})(w, r)
}

func (t *WebTarget) handleSpeed(w http.ResponseWriter, r *http.Request) {
	speed, err := strconv.Atoi(r.URL.Query().Get("value"))
	if err != nil || speed < playback.MinSpeed || speed > playback.MaxSpeed {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("value must be an integer from %d to %d", playback.MinSpeed, playback.MaxSpeed))
		return
	}
	t.control(func(ctx context.Context) error {
		return t.controls.SetSpeed(ctx, speed)
	})(w, r)
}

// handleSelect toggles a country by id or name, or the one under lon/lat.
func (t *WebTarget) handleSelect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		p   atlas.Popup
		err error
	)
	switch {
	case q.Get("country") != "":
		p, err = t.controls.Select(r.Context(), q.Get("country"))
	case q.Has("lon") && q.Has("lat"):
		lon, lerr := strconv.ParseFloat(q.Get("lon"), 64)
		lat, perr := strconv.ParseFloat(q.Get("lat"), 64)
		if lerr != nil || perr != nil {
			writeError(w, http.StatusBadRequest, "lon and lat must be numbers")
			return
		}
		p, err = t.controls.SelectAt(r.Context(), lon, lat)
	default:
		writeError(w, http.StatusBadRequest, "country or lon and lat are required")
		return
	}
	if err != nil {
		t.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, popupResponse(p))
}

func (t *WebTarget) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 4096))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading command")
		return
	}

	out, err := t.exec.Exec(r.Context(), string(body))
	switch {
	case err == nil, errors.Is(err, commands.ErrQuit):
		writeJSON(w, http.StatusOK, map[string]string{"output": out})
	case commands.IsUserError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		t.fail(w, r, err)
	}
}

func (t *WebTarget) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, code, err.Error())
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, playback.ErrUnknownYear), errors.Is(err, yeardata.ErrNoFeature):
		return http.StatusNotFound
	case errors.Is(err, atlas.ErrNotReady), errors.Is(err, driver.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type popup struct {
	atlas.Popup
	Text string `json:"text"`
}

func popupResponse(p atlas.Popup) popup {
	return popup{Popup: p, Text: p.String()}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
