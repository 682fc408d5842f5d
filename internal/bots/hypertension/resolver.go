package hypertension

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/epa-bienestar/vitals-bots/internal/bots"
	"github.com/epa-bienestar/vitals-bots/internal/platform/fhir"
	"github.com/epa-bienestar/vitals-bots/pkg/fhirmodels"
)

// Resolver locates the practitioner(s) responsible for a patient. Lookups
// fail open: a data-store fault during resolution is logged and treated as
// "no practitioner found" so that alerting is never blocked by lookup
// flakiness. (The email send downstream is fail-closed; the asymmetry is a
// deliberate policy, not an accident.)
type Resolver struct {
	store  bots.DataStore
	logger zerolog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(store bots.DataStore, logger zerolog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// FindPrimaryDoctor resolves a single practitioner for the patient: the
// first Practitioner participant of the patient's first active CareTeam,
// falling back to the patient's stored generalPractitioner[0] reference.
// Returns (nil, nil) when neither source yields a practitioner.
func (r *Resolver) FindPrimaryDoctor(ctx context.Context, patient map[string]interface{}) (map[string]interface{}, error) {
	patientRef := fhir.ResourceRef(patient)

	params := url.Values{}
	params.Set("subject", patientRef)
	params.Set("status", "active")

	teams, err := r.store.Search(ctx, fhirmodels.ResourceCareTeam, params)
	if err != nil {
		r.logger.Warn().Err(err).Str("patient", patientRef).Msg("careteam search failed, continuing without practitioner")
		return nil, nil
	}

	if len(teams) > 0 {
		for _, participant := range fhir.Slice(teams[0], "participant") {
			memberRef := fhir.Str(fhir.Map(participant, "member"), "reference")
			if !strings.HasPrefix(memberRef, fhirmodels.ResourcePractitioner+"/") {
				continue
			}
			doctor, err := r.store.ReadReference(ctx, memberRef)
			if err != nil {
				r.logger.Warn().Err(err).Str("practitioner", memberRef).Msg("practitioner read failed, continuing without practitioner")
				return nil, nil
			}
			return doctor, nil
		}
	}

	// Fallback: the patient's stored general practitioner.
	gps := fhir.Slice(patient, "generalPractitioner")
	if len(gps) == 0 {
		return nil, nil
	}
	gpRef := fhir.Str(gps[0], "reference")
	if gpRef == "" {
		return nil, nil
	}
	doctor, err := r.store.ReadReference(ctx, gpRef)
	if err != nil {
		r.logger.Warn().Err(err).Str("practitioner", gpRef).Msg("general practitioner read failed, continuing without practitioner")
		return nil, nil
	}
	return doctor, nil
}

// FindPractitioners resolves every practitioner directly linked to the
// patient. Zero results and lookup failures both yield an empty slice.
func (r *Resolver) FindPractitioners(ctx context.Context, patientID string) []map[string]interface{} {
	params := url.Values{}
	params.Set("patient", patientID)

	practitioners, err := r.store.Search(ctx, fhirmodels.ResourcePractitioner, params)
	if err != nil {
		r.logger.Warn().Err(err).Str("patient", patientID).Msg("practitioner search failed, continuing without practitioners")
		return nil
	}
	return practitioners
}
