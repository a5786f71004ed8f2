package prompt_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-valuation/pkg/auth"
	"github.com/goliatone/go-valuation/pkg/client"
	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/prompt"
	"github.com/goliatone/go-valuation/pkg/screen"
	"github.com/goliatone/go-valuation/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	passwords    []string
	confirm      []bool
	selectIdx    []int
	infoMessages []string
	inputPos     int
	passPos      int
	confirmPos   int
	selectPos    int
}

func (s *stubDriver) Input(_ context.Context, _ prompt.InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", prompt.ErrAborted
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ prompt.InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ prompt.ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ prompt.SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func setup(t *testing.T, driver prompt.PromptDriver) (*prompt.Binding, *screen.Screen, *testsupport.Backend, *bytes.Buffer) {
	t.Helper()

	backend := testsupport.NewBackend(t)
	s, err := screen.New(client.New(client.WithBaseURL(backend.URL())))
	if err != nil {
		t.Fatalf("screen.New: %v", err)
	}
	t.Cleanup(s.Close)

	var out bytes.Buffer
	b, err := prompt.New(prompt.WithPromptDriver(driver), prompt.WithOutput(&out))
	if err != nil {
		t.Fatalf("prompt.New: %v", err)
	}
	return b, s, backend, &out
}

func TestRunApartmentRental(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		selectIdx: []int{1, 0, 0},
		inputs:    []string{"Anfa", "3", "-1", "2", "95", "33.5731", "-7.5898"},
		confirm:   []bool{true, false, true},
	}
	b, s, backend, out := setup(t, driver)

	display, err := b.Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if display.Value != "6,500 MAD" {
		t.Fatalf("unexpected display %+v", display)
	}
	if got := out.String(); got != "Estimated Monthly Rent: 6,500 MAD\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if len(driver.infoMessages) != 1 || !strings.HasPrefix(driver.infoMessages[0], "Invalid Bathrooms") {
		t.Fatalf("expected one bathrooms rejection, got %v", driver.infoMessages)
	}

	want := model.ValuationRequest{
		ListingType:  model.ListingRent,
		City:         model.Casablanca,
		Neighborhood: "Anfa",
		PropertyType: model.Apartment,
		Bedrooms:     3,
		Bathrooms:    2,
		SizeM2:       95,
		HasPool:      1,
		HasGarden:    0,
		IsFurnished:  1,
		Latitude:     33.5731,
		Longitude:    -7.5898,
	}
	requests := backend.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %d", len(requests))
	}
	if diff := cmp.Diff(want, requests[0]); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
	if s.Features().CoordinatesOverridden {
		t.Fatalf("accepting default coordinates must not mark an override")
	}
}

func TestRunLandSkipsInapplicableFields(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		selectIdx: []int{0, 0, 4},
		inputs:    []string{"Sidi Maarouf", "500", "33.5731", "-7.5898"},
	}
	b, s, backend, _ := setup(t, driver)

	if _, err := b.Run(context.Background(), s); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if driver.confirmPos != 0 {
		t.Fatalf("expected no boolean prompts for land, got %d", driver.confirmPos)
	}
	req := backend.Requests()[0]
	if req.PropertyType != model.Land || req.Bedrooms != 0 || req.Bathrooms != 0 || req.IsFurnished != 0 {
		t.Fatalf("unexpected land request %+v", req)
	}
}

func TestRunPropagatesAbort(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{selectIdx: []int{0, 0}}
	b, s, backend, _ := setup(t, driver)

	if _, err := b.Run(context.Background(), s); !errors.Is(err, prompt.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if backend.Calls("/predict") != 0 {
		t.Fatalf("aborted flow must not submit")
	}
}

func TestRunRequiresScreen(t *testing.T) {
	t.Parallel()

	b, err := prompt.New(prompt.WithPromptDriver(&stubDriver{}))
	if err != nil {
		t.Fatalf("prompt.New: %v", err)
	}
	if _, err := b.Run(context.Background(), nil); !errors.Is(err, prompt.ErrNoScreen) {
		t.Fatalf("expected ErrNoScreen, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	backend := testsupport.NewBackend(t)
	provider := auth.NewProvider(client.New(client.WithBaseURL(backend.URL())))
	driver := &stubDriver{inputs: []string{"amina"}, passwords: []string{"secret"}}
	b, err := prompt.New(prompt.WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("prompt.New: %v", err)
	}

	session, err := b.Login(context.Background(), provider)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	want := auth.Session{Token: "token-123", Role: auth.RoleUser, Username: "amina"}
	if diff := cmp.Diff(want, session); diff != "" {
		t.Fatalf("session mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 || !strings.HasSuffix(driver.infoMessages[0], "/dashboard") {
		t.Fatalf("unexpected info %v", driver.infoMessages)
	}
}
