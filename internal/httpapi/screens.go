package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-valuation/pkg/auth"
	"github.com/goliatone/go-valuation/pkg/form"
	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/render"
	"github.com/goliatone/go-valuation/pkg/schema"
	"github.com/goliatone/go-valuation/pkg/screen"
)

// screenGeohashPrecision is roughly a city block.
const screenGeohashPrecision = 7

type screenEntry struct {
	screen   *screen.Screen
	owner    string
	lastSeen time.Time
}

func (e screenEntry) expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(e.lastSeen) > ttl
}

type createScreenRequest struct {
	Page        string `json:"page"`
	ListingType string `json:"listing_type"`
}

type screenResponse struct {
	ID         string                 `json:"id"`
	Page       string                 `json:"page"`
	Features   model.PropertyFeatures `json:"features"`
	Geohash    string                 `json:"geohash"`
	Applicable []string               `json:"applicable"`
	InFlight   bool                   `json:"in_flight"`
	Display    *model.DisplayModel    `json:"display,omitempty"`
}

func newScreenResponse(sc *screen.Screen) screenResponse {
	f := sc.Features()
	resp := screenResponse{
		ID:       sc.ID(),
		Page:     sc.Page().Name,
		Features: f,
		Geohash:  f.Coordinates().Geohash(screenGeohashPrecision),
		InFlight: sc.InFlight(),
	}
	for _, def := range schema.Applicable(f.PropertyType) {
		resp.Applicable = append(resp.Applicable, def.Name)
	}
	if d := sc.Display(); !d.IsZero() {
		resp.Display = &d
	}
	return resp
}

func (s *Server) handleCreateScreen(w http.ResponseWriter, r *http.Request) {
	var body createScreenRequest
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			writeError(w, fmt.Errorf("%w: %v", ErrBadRequest, err))
			return
		}
	}

	page := screen.PredictPage
	if body.Page != "" {
		p, ok := screen.LookupPage(body.Page)
		if !ok {
			writeError(w, fmt.Errorf("%w: %s", ErrUnknownPage, body.Page))
			return
		}
		page = p
	}
	if body.ListingType != "" {
		lt, err := model.ParseListingType(body.ListingType)
		if err != nil {
			writeError(w, &model.InvalidFieldError{Field: schema.FieldListingType})
			return
		}
		page.ListingType = lt
	}

	session, _ := auth.FromContext(r.Context())
	if to, ok := auth.Guard(page.Route, session); !ok {
		writeRedirect(w, http.StatusUnauthorized, ErrUnauthorized, to)
		return
	}

	sc, err := screen.New(s.apiClient(r),
		screen.WithPage(page),
		screen.WithPresenter(s.presenter(r)),
		screen.WithContract(s.opts.Contract),
		screen.WithLogger(s.opts.Logger),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	s.sweep()
	s.mu.Lock()
	s.screens[sc.ID()] = screenEntry{screen: sc, owner: session.Username, lastSeen: s.opts.Now()}
	s.mu.Unlock()

	w.Header().Set("Location", "/api/screens/"+sc.ID())
	writeJSON(w, http.StatusCreated, newScreenResponse(sc))
}

// lookup returns the screen named in the path if the session owns it and
// marks it as seen. An idle screen is closed and reported as missing.
func (s *Server) lookup(r *http.Request) (*screen.Screen, error) {
	id := chi.URLParam(r, "id")
	session, _ := auth.FromContext(r.Context())
	now := s.opts.Now()

	s.mu.Lock()
	entry, ok := s.screens[id]
	if ok && entry.owner != session.Username {
		ok = false
	}
	var stale *screen.Screen
	if ok && entry.expired(now, s.opts.ScreenTTL) {
		delete(s.screens, id)
		stale, ok = entry.screen, false
	}
	if ok {
		entry.lastSeen = now
		s.screens[id] = entry
	}
	s.mu.Unlock()

	if stale != nil {
		stale.Close()
		s.opts.Logger.Debug("screen expired", slog.String("screen_id", id))
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScreenNotFound, id)
	}
	return entry.screen, nil
}

// sweep closes every screen idle past the TTL.
func (s *Server) sweep() {
	now := s.opts.Now()
	s.closeWhere(func(e screenEntry) bool { return e.expired(now, s.opts.ScreenTTL) })
}

// closeWhere removes and closes the screens matching drop.
func (s *Server) closeWhere(drop func(screenEntry) bool) int {
	var closed []*screen.Screen
	s.mu.Lock()
	for id, entry := range s.screens {
		if drop(entry) {
			delete(s.screens, id)
			closed = append(closed, entry.screen)
		}
	}
	s.mu.Unlock()

	for _, sc := range closed {
		sc.Close()
	}
	return len(closed)
}

func (s *Server) handleGetScreen(w http.ResponseWriter, r *http.Request) {
	sc, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newScreenResponse(sc))
}

func (s *Server) handleDeleteScreen(w http.ResponseWriter, r *http.Request) {
	sc, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sc.Close()
	s.mu.Lock()
	delete(s.screens, sc.ID())
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type eventsRequest struct {
	Events []form.Event `json:"events"`
}

// decodeEvents accepts {"events": [...]}, a bare array or a single event.
func decodeEvents(w http.ResponseWriter, r *http.Request) ([]form.Event, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0:
		return nil, fmt.Errorf("%w: no events", ErrBadRequest)
	case raw[0] == '[':
		var events []form.Event
		if err := json.Unmarshal(raw, &events); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		return events, nil
	}
	var batch eventsRequest
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if len(batch.Events) > 0 {
		return batch.Events, nil
	}
	var single form.Event
	if err := json.Unmarshal(raw, &single); err != nil || single.Field == "" {
		return nil, fmt.Errorf("%w: no events", ErrBadRequest)
	}
	if single.Op == "" {
		single.Op = form.OpSet
	}
	return []form.Event{single}, nil
}

type eventsResponse struct {
	screenResponse
	Error *errorBody `json:"error,omitempty"`
}

// handleEvents applies edits in order. A rejected edit stops the batch; the
// response carries the state after the last accepted edit alongside the error.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sc, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := decodeEvents(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	for i := range events {
		if events[i].Op == "" {
			events[i].Op = form.OpSet
		}
	}

	if _, err := sc.Apply(events...); err != nil {
		body := errorPayload(err)
		writeJSON(w, statusFor(err), eventsResponse{screenResponse: newScreenResponse(sc), Error: &body})
		return
	}
	writeJSON(w, http.StatusOK, newScreenResponse(sc))
}

type pendingResponse struct {
	ID      string                 `json:"id"`
	Epoch   uint64                 `json:"epoch"`
	Request model.ValuationRequest `json:"request"`
}

// handleSubmit waits for the result unless wait=false, in which case it
// answers 202 and the result is read later from GET /api/screens/{id}.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sc, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	wait := true
	if raw := r.URL.Query().Get("wait"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			wait = v
		}
	}

	if !wait {
		pending, err := sc.Submit(context.WithoutCancel(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, pendingResponse{ID: sc.ID(), Epoch: pending.Epoch(), Request: pending.Request()})
		return
	}

	display, err := sc.SubmitAndWait(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeDisplay(w, r, sc, display)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	sc, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"dismissed": sc.Dismiss()})
}

// writeDisplay renders a presented result. Failures are still 200: the
// banner is the payload.
func (s *Server) writeDisplay(w http.ResponseWriter, r *http.Request, sc *screen.Screen, display model.DisplayModel) {
	renderer := s.renderer(r)
	out, err := renderer.Render(r.Context(), display, render.RenderOptions{
		Locale:   requestLocale(r, s.opts.Locale),
		ScreenID: sc.ID(),
	})
	if err != nil {
		s.opts.Logger.Error("render failed", slog.String("renderer", renderer.Name()), slog.Any("error", err))
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
