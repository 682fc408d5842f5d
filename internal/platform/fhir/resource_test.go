package fhir

import "testing"

func TestAccessorsTolerateMissingShapes(t *testing.T) {
	if Str(nil, "id") != "" {
		t.Error("Str(nil) should be empty")
	}
	if Map(nil, "code") != nil {
		t.Error("Map(nil) should be nil")
	}
	if Slice(nil, "coding") != nil {
		t.Error("Slice(nil) should be nil")
	}
	if Num(nil, "value") != 0 {
		t.Error("Num(nil) should be 0")
	}

	m := map[string]interface{}{
		"id":   42, // wrong type
		"code": "not-a-map",
		"list": "not-a-list",
	}
	if Str(m, "id") != "" {
		t.Error("Str on non-string should be empty")
	}
	if Map(m, "code") != nil {
		t.Error("Map on non-map should be nil")
	}
	if Slice(m, "list") != nil {
		t.Error("Slice on non-list should be nil")
	}
}

func TestSliceSkipsNonObjects(t *testing.T) {
	m := map[string]interface{}{
		"coding": []interface{}{
			map[string]interface{}{"code": "a"},
			"junk",
			map[string]interface{}{"code": "b"},
		},
	}
	got := Slice(m, "coding")
	if len(got) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(got))
	}
}

func TestResourceRef(t *testing.T) {
	res := map[string]interface{}{"resourceType": "Patient", "id": "pt-1"}
	if got := ResourceRef(res); got != "Patient/pt-1" {
		t.Errorf("expected Patient/pt-1, got %q", got)
	}
	if got := ResourceRef(map[string]interface{}{"resourceType": "Patient"}); got != "" {
		t.Errorf("expected empty ref for missing id, got %q", got)
	}
}

func TestHumanName(t *testing.T) {
	patient := map[string]interface{}{
		"resourceType": "Patient",
		"id":           "pt-1",
		"name": []interface{}{
			map[string]interface{}{
				"family": "García",
				"given":  []interface{}{"Ana", "María"},
			},
		},
	}
	if got := HumanName(patient); got != "Ana García" {
		t.Errorf("expected 'Ana García', got %q", got)
	}

	textOnly := map[string]interface{}{
		"id":   "pt-2",
		"name": []interface{}{map[string]interface{}{"text": "Ana García"}},
	}
	if got := HumanName(textOnly); got != "Ana García" {
		t.Errorf("expected text fallback, got %q", got)
	}

	bare := map[string]interface{}{"id": "pt-3"}
	if got := HumanName(bare); got != "pt-3" {
		t.Errorf("expected id fallback, got %q", got)
	}
}

func TestContactEmail(t *testing.T) {
	practitioner := map[string]interface{}{
		"telecom": []interface{}{
			map[string]interface{}{"system": "phone", "use": "work", "value": "555-1234"},
			map[string]interface{}{"system": "email", "use": "home", "value": "home@example.com"},
			map[string]interface{}{"system": "email", "use": "work", "value": "dr@example.com"},
		},
	}
	if got := ContactEmail(practitioner, "email", "work"); got != "dr@example.com" {
		t.Errorf("expected work email, got %q", got)
	}
	if got := ContactEmail(map[string]interface{}{}, "email", "work"); got != "" {
		t.Errorf("expected empty for no telecom, got %q", got)
	}
}

func TestHasCoding(t *testing.T) {
	obs := map[string]interface{}{
		"code": map[string]interface{}{
			"coding": []interface{}{
				map[string]interface{}{"system": "http://loinc.org", "code": "85354-9"},
			},
		},
	}
	if !HasCoding(obs, "code", "http://loinc.org", "85354-9") {
		t.Error("expected coding match")
	}
	if HasCoding(obs, "code", "http://loinc.org", "8480-6") {
		t.Error("expected no match for different code")
	}
	if HasCoding(obs, "code", "http://snomed.info/sct", "85354-9") {
		t.Error("expected no match for different system")
	}
	if HasCoding(map[string]interface{}{}, "code", "http://loinc.org", "85354-9") {
		t.Error("expected no match for missing code")
	}
}
