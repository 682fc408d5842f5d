package hypertension

import (
	"strings"
	"testing"
	"time"
)

func TestRenderAlertEmail(t *testing.T) {
	htmlBody, textBody, err := renderAlertEmail(emailData{
		PatientName:     "Ana García",
		DoctorName:      "Juan López",
		MeasuredAt:      "14/03/2025 09:30",
		Systolic:        165,
		Diastolic:       88,
		SystolicStatus:  "ELEVADA",
		DiastolicStatus: "normal",
	})
	if err != nil {
		t.Fatalf("renderAlertEmail failed: %v", err)
	}
	for _, want := range []string{"Ana García", "Juan López", "14/03/2025 09:30", "165", "ELEVADA"} {
		if !strings.Contains(htmlBody, want) {
			t.Errorf("html body missing %q", want)
		}
		if !strings.Contains(textBody, want) {
			t.Errorf("text body missing %q", want)
		}
	}
}

func TestValueStatus(t *testing.T) {
	if got := valueStatus(141, SystolicThreshold); got != "ELEVADA" {
		t.Errorf("expected ELEVADA, got %q", got)
	}
	if got := valueStatus(140, SystolicThreshold); got != "normal" {
		t.Errorf("threshold value is normal, got %q", got)
	}
}

func TestFormatMeasuredAt(t *testing.T) {
	loc, err := time.LoadLocation(alertTimeZone)
	if err != nil {
		t.Skipf("zone database unavailable: %v", err)
	}
	// UTC-3 in Buenos Aires.
	if got := formatMeasuredAt("2025-03-14T12:30:00Z", loc); got != "14/03/2025 09:30" {
		t.Errorf("unexpected localized time: %q", got)
	}
	// Unparseable input passes through.
	if got := formatMeasuredAt("yesterday", loc); got != "yesterday" {
		t.Errorf("expected passthrough, got %q", got)
	}
}
