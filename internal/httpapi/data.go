package httpapi

import (
	"net/http"

	"github.com/goliatone/go-valuation/pkg/auth"
	"github.com/goliatone/go-valuation/pkg/client"
	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/render"
	"github.com/goliatone/go-valuation/pkg/schema"
)

type schemaResponse struct {
	Fields        []schema.Field       `json:"fields"`
	ListingTypes  []model.ListingType  `json:"listing_types"`
	Cities        []model.City         `json:"cities"`
	PropertyTypes []model.PropertyType `json:"property_types"`
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, schemaResponse{
		Fields:        schema.Fields(),
		ListingTypes:  model.ListingTypes(),
		Cities:        model.Cities(),
		PropertyTypes: model.PropertyTypes(),
	})
}

// apiClient returns the valuation client authenticated as the request session.
func (s *Server) apiClient(r *http.Request) *client.Client {
	if session, ok := auth.FromContext(r.Context()); ok {
		return s.opts.Client.WithToken(session.Token)
	}
	return s.opts.Client
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.apiClient(r).Analysis(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	p := s.presenter(r)
	view := p.Analysis(analysis)

	renderer := s.renderer(r)
	ar, ok := renderer.(render.AnalysisRenderer)
	if !ok {
		writeJSON(w, http.StatusOK, view)
		return
	}
	out, err := ar.RenderAnalysis(r.Context(), view, render.RenderOptions{Locale: p.Locale()})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handlePayment(w http.ResponseWriter, r *http.Request) {
	var body client.PaymentRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	receipt, err := s.apiClient(r).ProcessPayment(r.Context(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
