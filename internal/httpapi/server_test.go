package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-valuation/internal/httpapi"
	"github.com/goliatone/go-valuation/pkg/client"
	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/schema"
	"github.com/goliatone/go-valuation/pkg/testsupport"
)

type harness struct {
	t       *testing.T
	backend *testsupport.Backend
	server  *httptest.Server
	token   string
}

func newHarness(t *testing.T, extra ...httpapi.Option) *harness {
	t.Helper()

	backend := testsupport.NewBackend(t)
	options := append([]httpapi.Option{
		httpapi.WithClient(client.New(client.WithBaseURL(backend.URL()))),
		httpapi.WithAllowedOrigins("http://localhost:3000"),
	}, extra...)
	api, err := httpapi.New(options...)
	if err != nil {
		t.Fatalf("httpapi.New: %v", err)
	}
	server := httptest.NewServer(api)
	t.Cleanup(func() {
		api.Close()
		server.Close()
	})
	return &harness{t: t, backend: backend, server: server}
}

func (h *harness) do(method, path, body string, headers ...string) (*http.Response, []byte) {
	h.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, h.server.URL+path, reader)
	if err != nil {
		h.t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func (h *harness) login() {
	h.t.Helper()
	resp, body := h.do(http.MethodPost, "/api/auth/login", `{"username":"amina","password":"secret"}`)
	if resp.StatusCode != http.StatusOK {
		h.t.Fatalf("login status %d: %s", resp.StatusCode, body)
	}
	var session struct {
		Token   string `json:"token"`
		Landing string `json:"landing"`
	}
	decode(h.t, body, &session)
	if session.Landing != "/dashboard" {
		h.t.Fatalf("unexpected landing %q", session.Landing)
	}
	h.token = session.Token
}

type screenBody struct {
	ID         string                 `json:"id"`
	Page       string                 `json:"page"`
	Features   model.PropertyFeatures `json:"features"`
	Geohash    string                 `json:"geohash"`
	Applicable []string               `json:"applicable"`
	InFlight   bool                   `json:"in_flight"`
	Display    *model.DisplayModel    `json:"display"`
	Error      *struct {
		Kind  string `json:"kind"`
		Field string `json:"field"`
	} `json:"error"`
}

func (h *harness) createScreen(body string) screenBody {
	h.t.Helper()
	resp, raw := h.do(http.MethodPost, "/api/screens", body)
	if resp.StatusCode != http.StatusCreated {
		h.t.Fatalf("create screen status %d: %s", resp.StatusCode, raw)
	}
	var sc screenBody
	decode(h.t, raw, &sc)
	return sc
}

func decode(t *testing.T, raw []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
}

func TestHealthAndSchema(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(`"ok"`)) {
		t.Fatalf("unexpected health %d: %s", resp.StatusCode, body)
	}

	resp, body = h.do(http.MethodGet, "/api/schema", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("schema status %d", resp.StatusCode)
	}
	var schema struct {
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
		Cities []string `json:"cities"`
	}
	decode(t, body, &schema)
	if len(schema.Fields) != 12 || schema.Fields[0].Name != "listingType" || len(schema.Cities) != 4 {
		t.Fatalf("unexpected schema %+v", schema)
	}
}

type cityBody struct {
	City          model.City        `json:"city"`
	Centre        model.Coordinates `json:"centre"`
	Geohash       string            `json:"geohash"`
	Neighborhoods []string          `json:"neighborhoods"`
}

func TestCitiesRoute(t *testing.T) {
	h := newHarness(t)
	marrakech, _ := schema.DefaultCatalogue().City(model.Marrakech)
	rabat, _ := schema.DefaultCatalogue().City(model.Rabat)

	tests := []struct {
		name  string
		query string
		want  []cityBody
	}{
		{
			name:  "city prefix",
			query: "?q=marra",
			want: []cityBody{{
				City:          model.Marrakech,
				Centre:        marrakech.Centre,
				Geohash:       marrakech.Centre.Geohash(6),
				Neighborhoods: marrakech.Neighborhoods,
			}},
		},
		{
			name:  "neighborhood narrows the list",
			query: "?q=HASSAN",
			want: []cityBody{{
				City:          model.Rabat,
				Centre:        rabat.Centre,
				Geohash:       rabat.Centre.Geohash(6),
				Neighborhoods: []string{"Hassan"},
			}},
		},
		{
			name:  "no match",
			query: "?q=paris",
			want:  []cityBody{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := h.do(http.MethodGet, "/api/cities"+tt.query, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("cities status %d", resp.StatusCode)
			}
			var payload struct {
				Data []cityBody `json:"data"`
			}
			decode(t, body, &payload)
			if diff := cmp.Diff(tt.want, payload.Data); diff != "" {
				t.Fatalf("cities mismatch (-want +got):\n%s", diff)
			}
		})
	}

	resp, _ := h.do(http.MethodGet, "/api/cities", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status %d", resp.StatusCode)
	}
}

func TestCityByName(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(http.MethodGet, "/api/cities/tangier", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("city status %d: %s", resp.StatusCode, body)
	}
	var got cityBody
	decode(t, body, &got)
	tangier, _ := schema.DefaultCatalogue().City(model.Tangier)
	want := cityBody{
		City:          model.Tangier,
		Centre:        tangier.Centre,
		Geohash:       tangier.Centre.Geohash(6),
		Neighborhoods: tangier.Neighborhoods,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("city mismatch (-want +got):\n%s", diff)
	}

	resp, _ = h.do(http.MethodGet, "/api/cities/paris", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown city, got %d", resp.StatusCode)
	}
}

func TestScreenGeohashFollowsCity(t *testing.T) {
	h := newHarness(t)
	h.login()

	sc := h.createScreen("")
	if want := sc.Features.Coordinates().Geohash(7); sc.Geohash != want {
		t.Fatalf("expected geohash %q, got %q", want, sc.Geohash)
	}

	resp, raw := h.do(http.MethodPost, "/api/screens/"+sc.ID+"/events", `{"field":"city","value":"Tangier"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events status %d: %s", resp.StatusCode, raw)
	}
	var moved screenBody
	decode(t, raw, &moved)
	tangier, _ := schema.DefaultCatalogue().City(model.Tangier)
	if want := tangier.Centre.Geohash(7); moved.Geohash != want {
		t.Fatalf("expected the Tangier cell %q, got %q", want, moved.Geohash)
	}
	if moved.Geohash == sc.Geohash {
		t.Fatalf("geohash did not change with the city: %q", moved.Geohash)
	}
}

func TestLandingAndGuards(t *testing.T) {
	h := newHarness(t)

	_, body := h.do(http.MethodGet, "/api/landing", "")
	if !bytes.Contains(body, []byte(`"/auth"`)) {
		t.Fatalf("anonymous landing should be /auth, got %s", body)
	}

	resp, body := h.do(http.MethodPost, "/api/screens", `{"page":"predict"}`)
	if resp.StatusCode != http.StatusUnauthorized || !bytes.Contains(body, []byte(`"redirect":"/auth"`)) {
		t.Fatalf("expected 401 redirect to /auth, got %d: %s", resp.StatusCode, body)
	}
	resp, _ = h.do(http.MethodGet, "/api/analysis", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for analysis, got %d", resp.StatusCode)
	}

	h.login()
	_, body = h.do(http.MethodGet, "/api/landing", "")
	if !bytes.Contains(body, []byte(`"/dashboard"`)) {
		t.Fatalf("user landing should be /dashboard, got %s", body)
	}

	resp, _ = h.do(http.MethodDelete, "/api/auth/session", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status %d", resp.StatusCode)
	}
	_, body = h.do(http.MethodGet, "/api/landing", "")
	if !bytes.Contains(body, []byte(`"/auth"`)) {
		t.Fatalf("landing after logout should be /auth, got %s", body)
	}
}

func TestSuperAdminLanding(t *testing.T) {
	h := newHarness(t)
	h.backend.Reply("/auth/login", testsupport.JSON(http.StatusOK, `{"access_token":"root-token","user_role":"superadmin","username":"root"}`))

	resp, body := h.do(http.MethodPost, "/api/auth/login", `{"username":"root","password":"pw"}`)
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(`"landing":"/admin"`)) {
		t.Fatalf("unexpected login %d: %s", resp.StatusCode, body)
	}
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(http.MethodPost, "/api/auth/login", `{"username":"","password":""}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank credentials, got %d", resp.StatusCode)
	}

	h.backend.Reply("/auth/login", testsupport.JSON(http.StatusUnauthorized, `{"detail":"Invalid credentials"}`))
	resp, body := h.do(http.MethodPost, "/api/auth/login", `{"username":"amina","password":"nope"}`)
	if resp.StatusCode != http.StatusUnauthorized || !bytes.Contains(body, []byte("Invalid credentials")) {
		t.Fatalf("expected upstream 401, got %d: %s", resp.StatusCode, body)
	}
}

func TestScreenFlow(t *testing.T) {
	h := newHarness(t)
	h.login()

	sc := h.createScreen(`{"page":"predict","listing_type":"Rent"}`)
	if sc.Page != "predict" || sc.Features.ListingType != model.ListingRent || len(sc.Applicable) != 12 {
		t.Fatalf("unexpected screen %+v", sc)
	}

	resp, raw := h.do(http.MethodPost, "/api/screens/"+sc.ID+"/events",
		`{"events":[{"op":"set","field":"propertyType","value":"Land"},{"field":"sizeM2","value":300}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events status %d: %s", resp.StatusCode, raw)
	}
	var updated screenBody
	decode(t, raw, &updated)
	if updated.Features.Bedrooms != 0 || updated.Features.SizeM2 != 300 || len(updated.Applicable) != 7 {
		t.Fatalf("unexpected land state %+v", updated)
	}

	resp, raw = h.do(http.MethodPost, "/api/screens/"+sc.ID+"/submit", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status %d: %s", resp.StatusCode, raw)
	}
	var display model.DisplayModel
	decode(t, raw, &display)
	if display.Value != "6,500 MAD" || display.Label != "Estimated Monthly Rent" {
		t.Fatalf("unexpected display %+v", display)
	}

	reqs := h.backend.Requests()
	if len(reqs) != 1 || reqs[0].PropertyType != model.Land || reqs[0].Bedrooms != 0 {
		t.Fatalf("unexpected upstream requests %+v", reqs)
	}
	headers := h.backend.Headers()
	if got := headers[len(headers)-1].Get("Authorization"); got != "Bearer token-123" {
		t.Fatalf("expected the session token upstream, got %q", got)
	}

	resp, _ = h.do(http.MethodDelete, "/api/screens/"+sc.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	resp, _ = h.do(http.MethodGet, "/api/screens/"+sc.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestRejectedEventKeepsState(t *testing.T) {
	h := newHarness(t)
	h.login()
	sc := h.createScreen("")

	resp, raw := h.do(http.MethodPost, "/api/screens/"+sc.ID+"/events", `{"field":"bathrooms","value":-2}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.StatusCode, raw)
	}
	var body screenBody
	decode(t, raw, &body)
	if body.Error == nil || body.Error.Field != "bathrooms" {
		t.Fatalf("expected a bathrooms error, got %s", raw)
	}
	if diff := cmp.Diff(sc.Features, body.Features); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}

	resp, _ = h.do(http.MethodPost, "/api/screens/"+sc.ID+"/events", `{"field":"floors","value":2}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", resp.StatusCode)
	}
	resp, _ = h.do(http.MethodPost, "/api/screens/"+sc.ID+"/events", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty batch, got %d", resp.StatusCode)
	}
}

func TestIncompleteSubmitIs422(t *testing.T) {
	h := newHarness(t)
	h.login()
	sc := h.createScreen("")

	h.do(http.MethodPost, "/api/screens/"+sc.ID+"/events", `{"field":"neighborhood","value":""}`)
	resp, raw := h.do(http.MethodPost, "/api/screens/"+sc.ID+"/submit", "")
	if resp.StatusCode != http.StatusUnprocessableEntity || !bytes.Contains(raw, []byte(`"missing":["neighborhood"]`)) {
		t.Fatalf("expected 422 incomplete, got %d: %s", resp.StatusCode, raw)
	}
	if h.backend.Calls("/predict") != 0 {
		t.Fatalf("incomplete features must not reach the backend")
	}
}

func TestSubmitInProgressIs409(t *testing.T) {
	h := newHarness(t)
	h.login()
	sc := h.createScreen(`{"page":"dashboard"}`)
	h.backend.Hold()

	resp, raw := h.do(http.MethodPost, "/api/screens/"+sc.ID+"/submit?wait=false", "")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.StatusCode, raw)
	}
	select {
	case <-h.backend.Entered():
	case <-time.After(2 * time.Second):
		t.Fatalf("request never reached the backend")
	}

	resp, raw = h.do(http.MethodPost, "/api/screens/"+sc.ID+"/submit", "")
	if resp.StatusCode != http.StatusConflict || !bytes.Contains(raw, []byte(`"submission_in_progress"`)) {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, raw)
	}
	if got := h.backend.Calls("/predict"); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}

	h.backend.Release()
	deadline := time.Now().Add(2 * time.Second)
	for {
		_, raw = h.do(http.MethodGet, "/api/screens/"+sc.ID, "")
		var state screenBody
		decode(t, raw, &state)
		if state.Display != nil {
			if state.InFlight || state.Display.Value != "6,500 MAD" {
				t.Fatalf("unexpected final state %s", raw)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("result never presented: %s", raw)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFailureBannerHTMLAndDismiss(t *testing.T) {
	h := newHarness(t)
	h.login()
	sc := h.createScreen("")
	h.backend.Reply("/predict", testsupport.JSON(http.StatusInternalServerError, `{"detail":"<b>Model</b> not loaded"}`))

	resp, raw := h.do(http.MethodPost, "/api/screens/"+sc.ID+"/submit", "", "Accept", "text/html")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status %d: %s", resp.StatusCode, raw)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("expected HTML, got %q", resp.Header.Get("Content-Type"))
	}
	if bytes.Contains(raw, []byte("<b>")) || !bytes.Contains(raw, []byte("Model not loaded")) {
		t.Fatalf("expected sanitised detail, got %s", raw)
	}

	_, raw = h.do(http.MethodPost, "/api/screens/"+sc.ID+"/dismiss", "")
	if !bytes.Contains(raw, []byte(`"dismissed":true`)) {
		t.Fatalf("expected dismissal, got %s", raw)
	}
}

func TestAnalysisAndPayment(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, raw := h.do(http.MethodGet, "/api/analysis", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analysis status %d: %s", resp.StatusCode, raw)
	}
	var view struct {
		TotalListings string `json:"total_listings"`
		Cities        []struct {
			City string `json:"city"`
			Buy  string `json:"buy"`
		} `json:"cities"`
	}
	decode(t, raw, &view)
	if view.TotalListings != "150" || len(view.Cities) != 1 || view.Cities[0].Buy != "1,850,000 MAD" {
		t.Fatalf("unexpected analysis %s", raw)
	}

	resp, raw = h.do(http.MethodGet, "/api/analysis", "", "Accept", "text/html", "Accept-Language", "fr-FR,fr;q=0.9")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(raw, []byte(`lang="fr`)) {
		t.Fatalf("expected french HTML analysis, got %d: %s", resp.StatusCode, raw)
	}

	resp, raw = h.do(http.MethodPost, "/api/payments", `{"amount":199,"user_id":7}`)
	if resp.StatusCode != http.StatusOK || !bytes.Contains(raw, []byte(`"success"`)) {
		t.Fatalf("unexpected payment %d: %s", resp.StatusCode, raw)
	}
}

func TestLogoutClosesOwnedScreens(t *testing.T) {
	h := newHarness(t)
	h.login()
	sc := h.createScreen("")

	resp, _ := h.do(http.MethodDelete, "/api/auth/session", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status %d", resp.StatusCode)
	}

	h.login()
	resp, _ = h.do(http.MethodGet, "/api/screens/"+sc.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected the screen to close on logout, got %d", resp.StatusCode)
	}
}

func TestLogoutKeepsScreensOfAnotherToken(t *testing.T) {
	h := newHarness(t)
	h.login()
	sc := h.createScreen("")
	first := h.token

	resp, raw := h.do(http.MethodPost, "/api/auth/register", `{"username":"amina","email":"amina@example.com","password":"secret"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d: %s", resp.StatusCode, raw)
	}
	var second struct {
		Token string `json:"token"`
	}
	decode(t, raw, &second)

	h.token = second.Token
	if resp, _ := h.do(http.MethodDelete, "/api/auth/session", ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status %d", resp.StatusCode)
	}

	h.token = first
	resp, _ = h.do(http.MethodGet, "/api/screens/"+sc.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the screen to survive, got %d", resp.StatusCode)
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestIdleScreensExpire(t *testing.T) {
	clk := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	h := newHarness(t, httpapi.WithScreenTTL(30*time.Minute), httpapi.WithClock(clk.Now))
	h.login()
	sc := h.createScreen("")

	clk.Advance(20 * time.Minute)
	if resp, _ := h.do(http.MethodGet, "/api/screens/"+sc.ID, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the screen after 20m, got %d", resp.StatusCode)
	}

	// Each request restarts the idle window.
	clk.Advance(20 * time.Minute)
	if resp, _ := h.do(http.MethodGet, "/api/screens/"+sc.ID, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the screen after another 20m, got %d", resp.StatusCode)
	}

	clk.Advance(31 * time.Minute)
	resp, _ := h.do(http.MethodGet, "/api/screens/"+sc.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected an idle screen to expire, got %d", resp.StatusCode)
	}
}

func TestZeroScreenTTLKeepsScreens(t *testing.T) {
	clk := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	h := newHarness(t, httpapi.WithScreenTTL(0), httpapi.WithClock(clk.Now))
	h.login()
	sc := h.createScreen("")

	clk.Advance(48 * time.Hour)
	h.createScreen("")
	if resp, _ := h.do(http.MethodGet, "/api/screens/"+sc.ID, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the screen to stay without a TTL, got %d", resp.StatusCode)
	}
}
