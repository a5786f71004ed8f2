package contract_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-valuation/pkg/contract"
	"github.com/goliatone/go-valuation/pkg/model"
)

func validRequest() model.ValuationRequest {
	return model.ValuationRequest{
		ListingType:  model.ListingRent,
		City:         model.Casablanca,
		Neighborhood: "Maarif",
		PropertyType: model.Apartment,
		Bedrooms:     2,
		Bathrooms:    1,
		SizeM2:       80,
		Latitude:     33.5731,
		Longitude:    -7.5898,
	}
}

func TestDefaultEndpoints(t *testing.T) {
	t.Parallel()

	want := []contract.Endpoint{
		{ID: "analysis", Method: http.MethodGet, Path: "/analysis"},
		{ID: "login", Method: http.MethodPost, Path: "/auth/login"},
		{ID: "predict", Method: http.MethodPost, Path: "/predict"},
		{ID: "processPayment", Method: http.MethodPost, Path: "/payment/process"},
		{ID: "register", Method: http.MethodPost, Path: "/auth/register"},
	}
	if diff := cmp.Diff(want, contract.Default().Endpoints()); diff != "" {
		t.Fatalf("endpoints mismatch (-want +got):\n%s", diff)
	}

	if _, err := contract.Default().Endpoint("refund"); !errors.Is(err, contract.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	c := contract.Default()
	if err := c.ValidateRequest(contract.OpPredict, validRequest()); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	bad := validRequest()
	bad.SizeM2 = 0
	err := c.ValidateRequest(contract.OpPredict, bad)
	var violation *contract.ViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected ViolationError, got %v", err)
	}
	if violation.Pointer != "/Size_m2" {
		t.Fatalf("unexpected pointer %q", violation.Pointer)
	}

	flag := validRequest()
	flag.HasPool = 2
	if err := c.ValidateRequest(contract.OpPredict, flag); err == nil {
		t.Fatalf("expected Has_Pool=2 to be rejected")
	}
}

func TestValidateResponse(t *testing.T) {
	t.Parallel()

	c := contract.Default()
	if err := c.ValidateResponse(contract.OpPredict, 200, []byte(`{"predicted_price": 6500}`)); err != nil {
		t.Fatalf("valid response rejected: %v", err)
	}
	for _, body := range []string{`{}`, `{"predicted_price": "6500"}`, `not json`} {
		if err := c.ValidateResponse(contract.OpPredict, 200, []byte(body)); err == nil {
			t.Fatalf("expected %s to be rejected", body)
		}
	}
	if err := c.ValidateResponse(contract.OpProcessPayment, 200, []byte(`"ok"`)); err != nil {
		t.Fatalf("payment response has no schema: %v", err)
	}
}

func TestLoadRejectsBrokenDocuments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, err := contract.Load(ctx, nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
	if _, err := contract.Load(ctx, []byte("openapi: 3.0.3\ninfo: {title: x, version: '1'}\npaths: {}\n")); err == nil {
		t.Fatalf("expected error for document without paths")
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := contract.Load(canceled, contract.Raw()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
