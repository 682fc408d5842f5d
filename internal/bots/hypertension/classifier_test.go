package hypertension

import (
	"testing"

	"github.com/epa-bienestar/vitals-bots/pkg/fhirmodels"
)

func TestIsBloodPressureObservation(t *testing.T) {
	bp := map[string]interface{}{
		"resourceType": "Observation",
		"code": map[string]interface{}{
			"coding": []interface{}{
				map[string]interface{}{"system": fhirmodels.SystemLOINC, "code": fhirmodels.LoincBloodPressurePanel},
			},
		},
	}
	if !IsBloodPressureObservation(bp) {
		t.Error("expected 85354-9 panel to classify as blood pressure")
	}

	heartRate := map[string]interface{}{
		"code": map[string]interface{}{
			"coding": []interface{}{
				map[string]interface{}{"system": fhirmodels.SystemLOINC, "code": fhirmodels.LoincHeartRate},
			},
		},
	}
	if IsBloodPressureObservation(heartRate) {
		t.Error("heart rate should not classify as blood pressure")
	}

	// Malformed shapes classify as false, never panic.
	for name, obs := range map[string]map[string]interface{}{
		"nil":            nil,
		"empty":          {},
		"code not map":   {"code": "85354-9"},
		"coding missing": {"code": map[string]interface{}{}},
		"coding junk":    {"code": map[string]interface{}{"coding": []interface{}{"junk"}}},
	} {
		if IsBloodPressureObservation(obs) {
			t.Errorf("%s: expected false", name)
		}
	}
}

func bpComponent(code string, value float64) map[string]interface{} {
	return map[string]interface{}{
		"code": map[string]interface{}{
			"coding": []interface{}{
				map[string]interface{}{"system": fhirmodels.SystemLOINC, "code": code},
			},
		},
		"valueQuantity": map[string]interface{}{"value": value, "unit": "mm[Hg]"},
	}
}

func TestExtractBloodPressureValues(t *testing.T) {
	obs := map[string]interface{}{
		"component": []interface{}{
			bpComponent(fhirmodels.LoincDiastolicBP, 80),
			bpComponent(fhirmodels.LoincSystolicBP, 120),
		},
	}
	systolic, diastolic := ExtractBloodPressureValues(obs)
	if systolic != 120 || diastolic != 80 {
		t.Errorf("expected 120/80, got %v/%v", systolic, diastolic)
	}
}

func TestExtractBloodPressureValuesDefaults(t *testing.T) {
	systolic, diastolic := ExtractBloodPressureValues(map[string]interface{}{})
	if systolic != 0 || diastolic != 0 {
		t.Errorf("expected 0/0 for missing components, got %v/%v", systolic, diastolic)
	}

	// Component without a value defaults to 0 for that reading.
	obs := map[string]interface{}{
		"component": []interface{}{
			map[string]interface{}{
				"code": map[string]interface{}{
					"coding": []interface{}{map[string]interface{}{"code": fhirmodels.LoincSystolicBP}},
				},
			},
		},
	}
	systolic, diastolic = ExtractBloodPressureValues(obs)
	if systolic != 0 || diastolic != 0 {
		t.Errorf("expected 0/0, got %v/%v", systolic, diastolic)
	}
}

func TestExtractBloodPressureValuesLastMatchWins(t *testing.T) {
	obs := map[string]interface{}{
		"component": []interface{}{
			bpComponent(fhirmodels.LoincSystolicBP, 110),
			bpComponent(fhirmodels.LoincSystolicBP, 150),
			bpComponent(fhirmodels.LoincDiastolicBP, 85),
		},
	}
	systolic, diastolic := ExtractBloodPressureValues(obs)
	if systolic != 150 {
		t.Errorf("expected last systolic component to win, got %v", systolic)
	}
	if diastolic != 85 {
		t.Errorf("expected diastolic 85, got %v", diastolic)
	}
}

func TestIsElevated(t *testing.T) {
	cases := []struct {
		systolic, diastolic float64
		want                bool
	}{
		{120, 80, false},
		{140, 90, false}, // exactly at threshold is not elevated
		{141, 80, true},
		{140.5, 80, true},
		{120, 91, true},
		{141, 91, true},
		{0, 0, false},
	}
	for _, tc := range cases {
		if got := IsElevated(tc.systolic, tc.diastolic); got != tc.want {
			t.Errorf("IsElevated(%v, %v) = %v, want %v", tc.systolic, tc.diastolic, got, tc.want)
		}
	}
}
