package hypertension

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/epa-bienestar/vitals-bots/internal/bots"
	"github.com/epa-bienestar/vitals-bots/internal/platform/fhir"
	"github.com/epa-bienestar/vitals-bots/pkg/fhirmodels"
)

// BotID identifies the hypertension alert bot in the engine registry.
const BotID = "hypertension-alert"

// Bot is the hypertension alert pipeline: classify the incoming Observation,
// evaluate thresholds, and hand elevated readings to the Notifier. A
// non-blood-pressure or non-elevated observation is a normal no-op, not an
// error.
type Bot struct {
	store    bots.DataStore
	notifier *Notifier
	logger   zerolog.Logger
}

// NewBot creates the hypertension alert bot.
func NewBot(store bots.DataStore, notifier *Notifier, logger zerolog.Logger) *Bot {
	return &Bot{
		store:    store,
		notifier: notifier,
		logger:   logger.With().Str("bot", BotID).Logger(),
	}
}

// Definition returns the registry entry for this bot.
func (b *Bot) Definition() bots.Bot {
	return bots.Bot{
		ID:          BotID,
		Name:        "Hypertension Alert",
		Description: "Watches blood-pressure observations and alerts on hypertensive values",
		Trigger: bots.Trigger{
			Type:         "subscription",
			ResourceType: fhirmodels.ResourceObservation,
			Event:        "create",
		},
		Handler: b,
	}
}

// Handle implements bots.Handler.
func (b *Bot) Handle(ctx context.Context, evt bots.Event) error {
	obs := evt.Resource
	if !IsBloodPressureObservation(obs) {
		return nil
	}

	systolic, diastolic := ExtractBloodPressureValues(obs)
	if !IsElevated(systolic, diastolic) {
		b.logger.Debug().
			Float64("systolic", systolic).
			Float64("diastolic", diastolic).
			Msg("blood pressure within thresholds")
		return nil
	}

	subjectRef := fhir.Str(fhir.Map(obs, "subject"), "reference")
	if subjectRef == "" {
		return fmt.Errorf("hypertension: observation %s has no subject", fhir.Str(obs, "id"))
	}

	patient, err := b.store.ReadReference(ctx, subjectRef)
	if err != nil {
		return fmt.Errorf("hypertension: read patient %s: %w", subjectRef, err)
	}

	b.logger.Info().
		Str("patient", subjectRef).
		Float64("systolic", systolic).
		Float64("diastolic", diastolic).
		Msg("elevated blood pressure detected")

	return b.notifier.Notify(ctx, obs, patient, systolic, diastolic)
}
