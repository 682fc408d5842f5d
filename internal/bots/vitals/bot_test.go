package vitals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/epa-bienestar/vitals-bots/internal/bots"
	"github.com/epa-bienestar/vitals-bots/internal/platform/fhir"
)

func TestHandleCreatesObservation(t *testing.T) {
	store := &bots.MockStore{}
	bot := NewBot(store, zerolog.Nop())
	bot.now = func() time.Time { return fixedNow }

	err := bot.Handle(context.Background(), bots.Event{
		Params: map[string]string{
			"type":       TypeHeartRate,
			"patient":    "Patient/pt-1",
			"firstValue": "72",
		},
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	created := store.Created()
	if len(created) != 1 {
		t.Fatalf("expected 1 created resource, got %d", len(created))
	}
	obs := created[0]
	if fhir.Str(obs, "resourceType") != "Observation" {
		t.Errorf("expected Observation, got %q", fhir.Str(obs, "resourceType"))
	}
	if ref := fhir.Str(fhir.Map(obs, "subject"), "reference"); ref != "Patient/pt-1" {
		t.Errorf("unexpected subject: %q", ref)
	}
	if got := fhir.Str(obs, "effectiveDateTime"); got != "2025-03-14T12:30:00Z" {
		t.Errorf("unexpected effectiveDateTime: %q", got)
	}
}

func TestHandleUnknownTypeSkipsCreate(t *testing.T) {
	store := &bots.MockStore{}
	bot := NewBot(store, zerolog.Nop())

	err := bot.Handle(context.Background(), bots.Event{
		Params: map[string]string{
			"type":       "shoe size",
			"patient":    "Patient/pt-1",
			"firstValue": "42",
		},
	})
	if err != nil {
		t.Fatalf("unrecognized type should not error: %v", err)
	}
	if len(store.Created()) != 0 {
		t.Error("unrecognized type should not create anything")
	}
}

func TestHandleRequiresPatient(t *testing.T) {
	store := &bots.MockStore{}
	bot := NewBot(store, zerolog.Nop())

	err := bot.Handle(context.Background(), bots.Event{
		Params: map[string]string{"type": TypeWeight, "firstValue": "70"},
	})
	if err == nil {
		t.Fatal("expected error for missing patient param")
	}
	if len(store.Created()) != 0 {
		t.Error("nothing should be created on validation failure")
	}
}

func TestHandlePropagatesCreateError(t *testing.T) {
	storeErr := errors.New("store down")
	store := &bots.MockStore{CreateErr: storeErr}
	bot := NewBot(store, zerolog.Nop())

	err := bot.Handle(context.Background(), bots.Event{
		Params: map[string]string{
			"type":       TypeWeight,
			"patient":    "Patient/pt-1",
			"firstValue": "70",
		},
	})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestDefinition(t *testing.T) {
	def := NewBot(&bots.MockStore{}, zerolog.Nop()).Definition()
	if def.ID != BotID {
		t.Errorf("unexpected id: %q", def.ID)
	}
	if def.Trigger.Type != "manual" {
		t.Errorf("expected manual trigger, got %q", def.Trigger.Type)
	}
	if def.Handler == nil {
		t.Error("definition must carry the handler")
	}
}
