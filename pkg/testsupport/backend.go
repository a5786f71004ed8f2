package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goliatone/go-valuation/pkg/model"
)

// Reply is a canned HTTP answer.
type Reply struct {
	Status      int
	Body        string
	ContentType string
}

// JSON returns a Reply with an application/json body.
func JSON(status int, body string) Reply {
	return Reply{Status: status, Body: body, ContentType: "application/json"}
}

// Backend is an httptest server speaking the valuation API. Every path
// answers with its configured Reply; /predict can additionally be held open
// until Release is called.
type Backend struct {
	t      testing.TB
	server *httptest.Server

	mu       sync.Mutex
	replies  map[string]Reply
	calls    map[string]int
	requests []model.ValuationRequest
	headers  []http.Header
	gate     chan struct{}
	entered  chan struct{}
}

// NewBackend starts a Backend with successful defaults and closes it when the
// test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		t:     t,
		calls: make(map[string]int),
		replies: map[string]Reply{
			"/predict":         JSON(http.StatusOK, `{"predicted_price": 6500}`),
			"/auth/login":      JSON(http.StatusOK, `{"access_token":"token-123","user_role":"user","username":"amina"}`),
			"/auth/register":   JSON(http.StatusOK, `{"access_token":"token-456","user_role":"user","username":"amina"}`),
			"/analysis":        JSON(http.StatusOK, `{"average_prices":{"Casablanca":{"Rent":9000,"Buy":1850000}},"property_counts":{"Apartment":120,"Villa":30},"total_listings":150}`),
			"/payment/process": JSON(http.StatusOK, `{"status":"success"}`),
		},
		entered: make(chan struct{}, 16),
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

// URL returns the base URL of the server.
func (b *Backend) URL() string { return b.server.URL }

// Close releases any held request and stops the server.
func (b *Backend) Close() {
	b.Release()
	b.server.Close()
}

// Reply sets the answer for path.
func (b *Backend) Reply(path string, reply Reply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies[path] = reply
}

// Hold makes subsequent /predict calls block until Release.
func (b *Backend) Hold() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gate == nil {
		b.gate = make(chan struct{})
	}
}

// Release unblocks held /predict calls.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gate != nil {
		close(b.gate)
		b.gate = nil
	}
}

// Entered signals each time a /predict call reaches the server.
func (b *Backend) Entered() <-chan struct{} { return b.entered }

// Calls reports how many requests path received.
func (b *Backend) Calls(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

// Requests returns the decoded /predict bodies in arrival order.
func (b *Backend) Requests() []model.ValuationRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.ValuationRequest(nil), b.requests...)
}

// Headers returns the request headers in arrival order, all paths.
func (b *Backend) Headers() []http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]http.Header(nil), b.headers...)
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.calls[r.URL.Path]++
	b.headers = append(b.headers, r.Header.Clone())
	reply, ok := b.replies[r.URL.Path]
	gate := b.gate
	if r.URL.Path == "/predict" {
		var req model.ValuationRequest
		if err := json.Unmarshal(body, &req); err == nil {
			b.requests = append(b.requests, req)
		}
	}
	b.mu.Unlock()

	if r.URL.Path == "/predict" {
		select {
		case b.entered <- struct{}{}:
		default:
		}
		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
	}

	if !ok {
		http.NotFound(w, r)
		return
	}
	if reply.ContentType != "" {
		w.Header().Set("Content-Type", reply.ContentType)
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply.Body)
}
