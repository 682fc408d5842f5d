package vitals

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/epa-bienestar/vitals-bots/internal/bots"
)

// BotID identifies the measurement mapper bot in the engine registry.
const BotID = "vitals-mapper"

// Bot turns measurement submissions into Observation resources and stores
// them in the clinical data store. It is manually triggered with params:
// type, patient, firstValue and (for blood pressure) secondValue.
type Bot struct {
	store  bots.DataStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewBot creates the measurement mapper bot.
func NewBot(store bots.DataStore, logger zerolog.Logger) *Bot {
	return &Bot{
		store:  store,
		logger: logger.With().Str("bot", BotID).Logger(),
		now:    time.Now,
	}
}

// Definition returns the registry entry for this bot.
func (b *Bot) Definition() bots.Bot {
	return bots.Bot{
		ID:          BotID,
		Name:        "Vitals Measurement Mapper",
		Description: "Maps free-text vital-sign measurements into Observation resources",
		Trigger:     bots.Trigger{Type: "manual"},
		Handler:     b,
	}
}

// Handle implements bots.Handler.
func (b *Bot) Handle(ctx context.Context, evt bots.Event) error {
	measurementType := evt.Params["type"]
	patient := evt.Params["patient"]
	firstValue := evt.Params["firstValue"]
	secondValue := evt.Params["secondValue"]

	if patient == "" {
		return fmt.Errorf("vitals: patient param is required")
	}

	obs := BuildObservation(measurementType, patient, firstValue, secondValue, b.now())
	if len(obs) == 1 {
		// Stub resource: the label was not recognized, nothing to store.
		b.logger.Warn().Str("type", measurementType).Msg("unrecognized measurement type")
		return nil
	}

	created, err := b.store.Create(ctx, obs)
	if err != nil {
		return fmt.Errorf("vitals: create observation: %w", err)
	}

	b.logger.Info().
		Str("observation", fmt.Sprintf("%v", created["id"])).
		Str("type", measurementType).
		Str("patient", patient).
		Msg("observation created")
	return nil
}
