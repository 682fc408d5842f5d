// Package hypertension watches blood-pressure Observations for hypertensive
// values and fans out alerts: in-system Communication resources, optional
// practitioner email, and audit logging.
package hypertension

import (
	"github.com/epa-bienestar/vitals-bots/internal/platform/fhir"
	"github.com/epa-bienestar/vitals-bots/pkg/fhirmodels"
)

// Clinical thresholds. A reading is elevated strictly above these bounds;
// exactly 140/90 is not elevated.
const (
	SystolicThreshold  = 140.0
	DiastolicThreshold = 90.0
)

// IsBloodPressureObservation reports whether the observation is a
// blood-pressure panel: its code.coding set contains the LOINC 85354-9
// coding. Missing code or coding yields false, never a panic.
func IsBloodPressureObservation(obs map[string]interface{}) bool {
	return fhir.HasCoding(obs, "code", fhirmodels.SystemLOINC, fhirmodels.LoincBloodPressurePanel)
}

// ExtractBloodPressureValues scans component[] for the systolic (8480-6) and
// diastolic (8462-4) readings, matching each component by its first coding.
// The scan is stable left-to-right with no short-circuit, so with duplicate
// component codes the last one wins. Missing components or values default
// to 0.
func ExtractBloodPressureValues(obs map[string]interface{}) (systolic, diastolic float64) {
	for _, component := range fhir.Slice(obs, "component") {
		codings := fhir.Slice(fhir.Map(component, "code"), "coding")
		if len(codings) == 0 {
			continue
		}
		value := fhir.Num(fhir.Map(component, "valueQuantity"), "value")
		switch fhir.Str(codings[0], "code") {
		case fhirmodels.LoincSystolicBP:
			systolic = value
		case fhirmodels.LoincDiastolicBP:
			diastolic = value
		}
	}
	return systolic, diastolic
}

// IsElevated reports whether either reading exceeds its clinical threshold.
func IsElevated(systolic, diastolic float64) bool {
	return systolic > SystolicThreshold || diastolic > DiastolicThreshold
}
