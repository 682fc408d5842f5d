package hypertension

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/epa-bienestar/vitals-bots/internal/bots"
	"github.com/epa-bienestar/vitals-bots/internal/platform/fhir"
	"github.com/epa-bienestar/vitals-bots/internal/platform/mail"
	"github.com/epa-bienestar/vitals-bots/pkg/fhirmodels"
)

// Resolver strategies.
const (
	StrategyCareTeam = "careteam"
	StrategyDirect   = "direct"
)

// Config selects the alerting behavior. With StrategyCareTeam a single
// practitioner is resolved (CareTeam first, generalPractitioner fallback)
// and, when email is enabled, notified by email with an audit trail. With
// StrategyDirect every practitioner linked to the patient gets an in-system
// Communication; email does not apply.
type Config struct {
	Strategy     string
	EmailEnabled bool
	FromAddress  string
	AdminAddress string
}

// Notifier fans out hypertension alerts. It always writes the
// patient-facing Communication; the practitioner leg depends on Config.
type Notifier struct {
	store    bots.DataStore
	sender   mail.Sender
	resolver *Resolver
	cfg      Config
	logger   zerolog.Logger
	now      func() time.Time
	loc      *time.Location
}

// NewNotifier creates a Notifier. sender may be nil when email is disabled.
func NewNotifier(store bots.DataStore, sender mail.Sender, cfg Config, logger zerolog.Logger) *Notifier {
	loc, err := time.LoadLocation(alertTimeZone)
	if err != nil {
		loc = time.UTC
	}
	return &Notifier{
		store:    store,
		sender:   sender,
		resolver: NewResolver(store, logger),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		loc:      loc,
	}
}

// Notify runs the alert fan-out for an elevated blood-pressure reading.
// The patient Communication and the practitioner email send are
// primary-path writes and their failures propagate; audit logging, the
// email summary Communication, and the admin fallback email are advisory
// and only logged.
func (n *Notifier) Notify(ctx context.Context, obs, patient map[string]interface{}, systolic, diastolic float64) error {
	patientRef := fhir.ResourceRef(patient)
	obsRef := fhir.ResourceRef(obs)

	patientTag := fhirmodels.TagPatientAlert
	if n.cfg.Strategy == StrategyDirect {
		patientTag = fhirmodels.TagAlert
	}

	if _, err := n.store.Create(ctx, n.patientAlert(obsRef, patientRef, patientTag, systolic, diastolic)); err != nil {
		return fmt.Errorf("create patient alert: %w", err)
	}

	if n.cfg.Strategy == StrategyDirect {
		return n.notifyAllPractitioners(ctx, patient, patientRef, systolic, diastolic)
	}
	return n.notifyPrimaryDoctor(ctx, obs, patient, patientRef, systolic, diastolic)
}

// notifyAllPractitioners writes one practitioner-alert Communication per
// resolved practitioner, sequentially. Failures are collected so every
// target gets an attempt; any failure still propagates to the runtime.
func (n *Notifier) notifyAllPractitioners(ctx context.Context, patient map[string]interface{}, patientRef string, systolic, diastolic float64) error {
	practitioners := n.resolver.FindPractitioners(ctx, fhir.Str(patient, "id"))

	var errs []error
	for _, p := range practitioners {
		comm := n.practitionerAlert(patientRef, fhir.ResourceRef(p), systolic, diastolic)
		if _, err := n.store.Create(ctx, comm); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", fhir.ResourceRef(p), err))
		}
	}
	return errors.Join(errs...)
}

// notifyPrimaryDoctor resolves a single practitioner and notifies them by
// email (when enabled), falling back to an advisory admin email when no
// practitioner can be found.
func (n *Notifier) notifyPrimaryDoctor(ctx context.Context, obs, patient map[string]interface{}, patientRef string, systolic, diastolic float64) error {
	doctor, err := n.resolver.FindPrimaryDoctor(ctx, patient)
	if err != nil {
		// FindPrimaryDoctor fails open; an error here is a programming bug.
		return err
	}

	if !n.cfg.EmailEnabled {
		if doctor == nil {
			n.logger.Info().Str("patient", patientRef).Msg("no practitioner resolved, patient alert only")
			return nil
		}
		if _, err := n.store.Create(ctx, n.practitionerAlert(patientRef, fhir.ResourceRef(doctor), systolic, diastolic)); err != nil {
			return fmt.Errorf("create practitioner alert: %w", err)
		}
		return nil
	}

	if doctor == nil {
		n.sendAdminFallback(ctx, patient, systolic, diastolic)
		return nil
	}

	address := fhir.ContactEmail(doctor, fhirmodels.ContactSystemEmail, fhirmodels.ContactUseWork)
	if address == "" {
		n.logger.Warn().
			Str("practitioner", fhir.ResourceRef(doctor)).
			Str("patient", patientRef).
			Msg("practitioner has no work email, alert not sent")
		return nil
	}

	data := emailData{
		PatientName:     fhir.HumanName(patient),
		DoctorName:      fhir.HumanName(doctor),
		MeasuredAt:      formatMeasuredAt(fhir.Str(obs, "effectiveDateTime"), n.loc),
		Systolic:        systolic,
		Diastolic:       diastolic,
		SystolicStatus:  valueStatus(systolic, SystolicThreshold),
		DiastolicStatus: valueStatus(diastolic, DiastolicThreshold),
	}
	htmlBody, textBody, err := renderAlertEmail(data)
	if err != nil {
		return err
	}

	msg := mail.Message{
		From:     n.cfg.FromAddress,
		To:       []string{address},
		CC:       []string{n.cfg.AdminAddress},
		Subject:  fmt.Sprintf("Alerta: presión arterial elevada - %s", data.PatientName),
		HTMLBody: htmlBody,
		TextBody: textBody,
		Tags:     map[string]string{"alert": fhirmodels.TagPatientAlert},
	}

	// Fail-closed: a failed clinical email must surface to the runtime.
	messageID, err := n.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send practitioner email: %w", err)
	}
	n.logger.Info().
		Str("practitioner", fhir.ResourceRef(doctor)).
		Str("message_id", messageID).
		Msg("practitioner alert email sent")

	// Advisory writes: log failures, never propagate.
	if _, err := n.store.Create(ctx, n.auditEvent(patientRef, fhir.ResourceRef(doctor))); err != nil {
		n.logger.Error().Err(err).Msg("create audit event failed")
	}
	if _, err := n.store.Create(ctx, n.emailSummary(patientRef, fhir.ResourceRef(doctor), address)); err != nil {
		n.logger.Error().Err(err).Msg("create email summary communication failed")
	}
	return nil
}

// sendAdminFallback emails the admin address when no practitioner could be
// resolved. This path is advisory: failures are logged, never propagated.
func (n *Notifier) sendAdminFallback(ctx context.Context, patient map[string]interface{}, systolic, diastolic float64) {
	msg := mail.Message{
		From:    n.cfg.FromAddress,
		To:      []string{n.cfg.AdminAddress},
		Subject: "Alerta sin profesional asignado",
		TextBody: fmt.Sprintf(
			"El paciente %s (%s) registro presion arterial elevada (sistolica %.0f mm[Hg], diastolica %.0f mm[Hg]) y no tiene profesional asignado.",
			fhir.HumanName(patient), fhir.ResourceRef(patient), systolic, diastolic),
		Tags: map[string]string{"alert": "admin-fallback"},
	}
	if _, err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Error().Err(err).Str("patient", fhir.ResourceRef(patient)).Msg("admin fallback email failed")
		return
	}
	n.logger.Info().Str("patient", fhir.ResourceRef(patient)).Msg("admin fallback email sent")
}

// ---------------------------------------------------------------------------
// Resource construction
// ---------------------------------------------------------------------------

func (n *Notifier) patientAlert(obsRef, patientRef, tag string, systolic, diastolic float64) map[string]interface{} {
	return map[string]interface{}{
		"resourceType": fhirmodels.ResourceCommunication,
		"meta":         metaTag(tag),
		"status":       fhirmodels.CommunicationStatusCompleted,
		"priority":     fhirmodels.PriorityUrgent,
		"category":     []interface{}{alertCategory()},
		"subject":      fhir.Reference(patientRef),
		"basedOn":      []interface{}{fhir.Reference(obsRef)},
		"sent":         n.now().UTC().Format(time.RFC3339),
		"payload": []interface{}{map[string]interface{}{
			"contentString": fmt.Sprintf(
				"Su medición de presión arterial (sistólica %.0f mm[Hg], diastólica %.0f mm[Hg]) está por encima de los valores recomendados. Un profesional será notificado.",
				systolic, diastolic),
		}},
	}
}

func (n *Notifier) practitionerAlert(patientRef, practitionerRef string, systolic, diastolic float64) map[string]interface{} {
	return map[string]interface{}{
		"resourceType": fhirmodels.ResourceCommunication,
		"meta":         metaTag(fhirmodels.TagPractitionerAlert),
		"status":       fhirmodels.CommunicationStatusCompleted,
		"priority":     fhirmodels.PriorityUrgent,
		"category":     []interface{}{alertCategory()},
		"subject":      fhir.Reference(patientRef),
		"recipient":    []interface{}{fhir.Reference(practitionerRef)},
		"sent":         n.now().UTC().Format(time.RFC3339),
		"payload": []interface{}{map[string]interface{}{
			"contentString": fmt.Sprintf(
				"El paciente %s registró presión arterial elevada (sistólica %.0f mm[Hg], diastólica %.0f mm[Hg]).",
				patientRef, systolic, diastolic),
		}},
	}
}

func (n *Notifier) emailSummary(patientRef, practitionerRef, address string) map[string]interface{} {
	return map[string]interface{}{
		"resourceType": fhirmodels.ResourceCommunication,
		"meta":         metaTag(fhirmodels.TagDoctorEmailSummary),
		"status":       fhirmodels.CommunicationStatusCompleted,
		"priority":     fhirmodels.PriorityUrgent,
		"category":     []interface{}{alertCategory()},
		"subject":      fhir.Reference(patientRef),
		"recipient":    []interface{}{fhir.Reference(practitionerRef)},
		"topic":        map[string]interface{}{"text": "Notificación por correo al profesional"},
		"sent":         n.now().UTC().Format(time.RFC3339),
		"payload": []interface{}{map[string]interface{}{
			"contentString": fmt.Sprintf("Se envió una alerta de hipertensión por correo a %s.", address),
		}},
	}
}

func (n *Notifier) auditEvent(patientRef, practitionerRef string) map[string]interface{} {
	return map[string]interface{}{
		"resourceType": fhirmodels.ResourceAuditEvent,
		"type": map[string]interface{}{
			"system":  fhirmodels.SystemAuditEventType,
			"code":    "transmit",
			"display": "Transmit Record Lifecycle Event",
		},
		"action":   "E",
		"recorded": n.now().UTC().Format(time.RFC3339),
		"outcome":  fhirmodels.AuditOutcomeSuccess,
		"agent": []interface{}{map[string]interface{}{
			"who":       map[string]interface{}{"display": "vitals-bots"},
			"requestor": true,
		}},
		"source": map[string]interface{}{
			"observer": map[string]interface{}{"display": "vitals-bots"},
		},
		"entity": []interface{}{
			map[string]interface{}{"what": fhir.Reference(patientRef)},
			map[string]interface{}{"what": fhir.Reference(practitionerRef)},
		},
	}
}

func alertCategory() map[string]interface{} {
	return map[string]interface{}{
		"coding": []interface{}{map[string]interface{}{
			"system":  fhirmodels.SystemCommunicationCategory,
			"code":    "alert",
			"display": "Alert",
		}},
	}
}

func metaTag(code string) map[string]interface{} {
	return map[string]interface{}{
		"tag": []interface{}{map[string]interface{}{
			"system": fhirmodels.SystemAlertTag,
			"code":   code,
		}},
	}
}
