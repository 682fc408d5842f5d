package hypertension

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

// Alert timestamps are rendered in the deployment's locale; if the zone
// database is unavailable the raw UTC time is used instead.
const alertTimeZone = "America/Argentina/Buenos_Aires"

type emailData struct {
	PatientName     string
	DoctorName      string
	MeasuredAt      string
	Systolic        float64
	Diastolic       float64
	SystolicStatus  string
	DiastolicStatus string
}

var alertHTMLTemplate = htmltemplate.Must(htmltemplate.New("alert").Parse(`<!DOCTYPE html>
<html>
<body>
<h2>Alerta de presi&oacute;n arterial elevada</h2>
<p>Estimado/a Dr./Dra. {{.DoctorName}}:</p>
<p>El paciente <strong>{{.PatientName}}</strong> registr&oacute; una medici&oacute;n de presi&oacute;n arterial elevada el {{.MeasuredAt}}.</p>
<ul>
<li>Sist&oacute;lica: {{.Systolic}} mm[Hg] ({{.SystolicStatus}})</li>
<li>Diast&oacute;lica: {{.Diastolic}} mm[Hg] ({{.DiastolicStatus}})</li>
</ul>
<p>Por favor revise la historia cl&iacute;nica del paciente a la brevedad.</p>
<p>EPA Bienestar</p>
</body>
</html>
`))

var alertTextTemplate = texttemplate.Must(texttemplate.New("alert").Parse(`Alerta de presion arterial elevada

Estimado/a Dr./Dra. {{.DoctorName}}:

El paciente {{.PatientName}} registro una medicion de presion arterial elevada el {{.MeasuredAt}}.

  Sistolica:  {{.Systolic}} mm[Hg] ({{.SystolicStatus}})
  Diastolica: {{.Diastolic}} mm[Hg] ({{.DiastolicStatus}})

Por favor revise la historia clinica del paciente a la brevedad.

EPA Bienestar
`))

// renderAlertEmail produces the HTML and plain-text bodies for the
// practitioner alert. Both parts are always populated.
func renderAlertEmail(data emailData) (htmlBody, textBody string, err error) {
	var html, text bytes.Buffer
	if err := alertHTMLTemplate.Execute(&html, data); err != nil {
		return "", "", fmt.Errorf("render html body: %w", err)
	}
	if err := alertTextTemplate.Execute(&text, data); err != nil {
		return "", "", fmt.Errorf("render text body: %w", err)
	}
	return html.String(), text.String(), nil
}

func valueStatus(value, threshold float64) string {
	if value > threshold {
		return "ELEVADA"
	}
	return "normal"
}

// formatMeasuredAt renders an Observation effectiveDateTime in the alert
// locale. Unparseable input is passed through untouched.
func formatMeasuredAt(effectiveDateTime string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, effectiveDateTime)
	if err != nil {
		return effectiveDateTime
	}
	return t.In(loc).Format("02/01/2006 15:04")
}
