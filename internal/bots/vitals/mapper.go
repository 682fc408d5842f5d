// Package vitals maps free-text vital-sign measurements into structured
// FHIR Observation resources.
package vitals

import (
	"math"
	"strconv"
	"time"

	"github.com/epa-bienestar/vitals-bots/pkg/fhirmodels"
)

// Recognized measurement type labels.
const (
	TypeBloodPressure   = "blood pressure"
	TypeAxillaryTemp    = "axillary temperature"
	TypeHeight          = "height"
	TypeRespiratoryRate = "respiratory rate"
	TypeHeartRate       = "heart rate"
	TypeWeight          = "weight"
)

type coding struct {
	code    string
	display string
}

// measurementType is one row of the dispatch table: the LOINC coding(s),
// unit, and structure for a recognized measurement label.
type measurementType struct {
	codings      []coding
	unit         string
	twoComponent bool
}

// measurementTypes is the single source of truth for measurement shapes.
// Blood pressure is the only two-component type; its component codings are
// fixed in buildComponents.
var measurementTypes = map[string]measurementType{
	TypeBloodPressure: {
		codings:      []coding{{fhirmodels.LoincBloodPressurePanel, "Blood pressure panel with all children optional"}},
		unit:         "mm[Hg]",
		twoComponent: true,
	},
	TypeAxillaryTemp: {
		codings: []coding{
			{fhirmodels.LoincBodyTemperature, "Body temperature"},
			{fhirmodels.LoincAxillaryTemp, "Body temperature - Axillary"},
		},
		unit: "Cel",
	},
	TypeHeight: {
		codings: []coding{{fhirmodels.LoincBodyHeight, "Body height"}},
		unit:    "cm",
	},
	TypeRespiratoryRate: {
		codings: []coding{{fhirmodels.LoincRespiratoryRate, "Respiratory rate"}},
		unit:    "/min",
	},
	TypeHeartRate: {
		codings: []coding{{fhirmodels.LoincHeartRate, "Heart rate"}},
		unit:    "/min",
	},
	TypeWeight: {
		codings: []coding{{fhirmodels.LoincBodyWeight, "Body weight"}},
		unit:    "kg",
	},
}

// BuildObservation maps a measurement into an Observation resource. For
// blood pressure firstValue is the diastolic reading and secondValue the
// systolic one; all other types use firstValue only. An unrecognized label
// yields the minimal stub {"resourceType": "Observation"}.
//
// Values are parsed as floating point with no range validation; non-numeric
// input propagates as NaN into the resource. The function performs no I/O
// and is deterministic apart from effectiveDateTime, which is the invocation
// time supplied by now.
func BuildObservation(measurementLabel, patientRef, firstValue, secondValue string, now time.Time) map[string]interface{} {
	mt, ok := measurementTypes[measurementLabel]
	if !ok {
		return map[string]interface{}{"resourceType": fhirmodels.ResourceObservation}
	}

	obs := map[string]interface{}{
		"resourceType":      fhirmodels.ResourceObservation,
		"status":            fhirmodels.ObservationStatusFinal,
		"effectiveDateTime": now.UTC().Format(time.RFC3339),
		"subject":           map[string]interface{}{"reference": patientRef},
		"code":              codeableConcept(mt.codings...),
	}

	if mt.twoComponent {
		obs["component"] = buildComponents(firstValue, secondValue, mt.unit)
	} else {
		obs["valueQuantity"] = quantity(firstValue, mt.unit)
	}
	return obs
}

// buildComponents produces the diastolic/systolic component pair for a
// blood-pressure Observation: diastolic from the first value, systolic from
// the second.
func buildComponents(diastolic, systolic, unit string) []interface{} {
	return []interface{}{
		map[string]interface{}{
			"code":          codeableConcept(coding{fhirmodels.LoincDiastolicBP, "Diastolic blood pressure"}),
			"valueQuantity": quantity(diastolic, unit),
		},
		map[string]interface{}{
			"code":          codeableConcept(coding{fhirmodels.LoincSystolicBP, "Systolic blood pressure"}),
			"valueQuantity": quantity(systolic, unit),
		},
	}
}

func codeableConcept(codings ...coding) map[string]interface{} {
	list := make([]interface{}, 0, len(codings))
	for _, c := range codings {
		list = append(list, map[string]interface{}{
			"system":  fhirmodels.SystemLOINC,
			"code":    c.code,
			"display": c.display,
		})
	}
	return map[string]interface{}{"coding": list}
}

func quantity(value, unit string) map[string]interface{} {
	// Out-of-range or non-numeric input propagates as NaN, uncorrected.
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		v = math.NaN()
	}
	return map[string]interface{}{
		"value": v,
		"unit":  unit,
	}
}
