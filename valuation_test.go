package valuation_test

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	valuation "github.com/goliatone/go-valuation"
	"github.com/goliatone/go-valuation/pkg/client"
	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/screen"
	"github.com/goliatone/go-valuation/pkg/testsupport"
)

func TestEmbeddedTemplatesContainDisplayFlavours(t *testing.T) {
	fsys := valuation.EmbeddedTemplates()
	for _, name := range []string{"display.txt.tpl", "display.html.tpl", "analysis.txt.tpl", "analysis.html.tpl"} {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			t.Fatalf("expected %s to be readable: %v", name, err)
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			t.Fatalf("expected %s to have content", name)
		}
	}
}

func TestEstimateRent(t *testing.T) {
	backend := testsupport.NewBackend(t)
	c := valuation.NewClient(client.WithBaseURL(backend.URL()))

	rent := screen.PredictPage
	rent.ListingType = model.ListingRent

	got, err := valuation.Estimate(context.Background(), c, rent,
		valuation.Set("city", "Rabat"),
		valuation.Toggle("hasGarden"),
	)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if got.Label != "Estimated Monthly Rent" || got.Value != "6,500 MAD" {
		t.Fatalf("unexpected display %+v", got)
	}

	reqs := backend.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	want := valuation.DefaultFeatures(model.ListingRent)
	want.City = model.Rabat
	want.HasGarden = true
	want.Latitude, want.Longitude = 34.0209, -6.8416
	wantReq, err := valuation.Normalize(want)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if diff := cmp.Diff(wantReq, reqs[0]); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestEstimateRejectsInvalidEdit(t *testing.T) {
	backend := testsupport.NewBackend(t)
	c := valuation.NewClient(client.WithBaseURL(backend.URL()))

	_, err := valuation.Estimate(context.Background(), c, valuation.Page{}, valuation.Set("sizeM2", -1))
	var verr *model.ValidationError
	if !errors.As(err, &verr) || verr.Field != "sizeM2" {
		t.Fatalf("expected sizeM2 validation error, got %v", err)
	}
	if backend.Calls("/predict") != 0 {
		t.Fatalf("rejected edit must not reach the backend")
	}
}

func TestEstimateServerFailureIsDisplayed(t *testing.T) {
	backend := testsupport.NewBackend(t)
	backend.Reply("/predict", testsupport.JSON(http.StatusServiceUnavailable, `{"detail":"Model not loaded"}`))
	c := valuation.NewClient(client.WithBaseURL(backend.URL()))

	got, err := valuation.Estimate(context.Background(), c, valuation.Page{})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if !got.IsFailure() || got.Failure.Kind != model.ServerError || got.Detail != "Model not loaded" {
		t.Fatalf("unexpected failure display %+v", got)
	}
}
