package fhirmodels

// Common FHIR value set constants used across the application.

// Resource types this service reads or creates.
const (
	ResourceObservation   = "Observation"
	ResourcePatient       = "Patient"
	ResourcePractitioner  = "Practitioner"
	ResourceCareTeam      = "CareTeam"
	ResourceCommunication = "Communication"
	ResourceAuditEvent    = "AuditEvent"
)

// Coding systems.
const (
	SystemLOINC                 = "http://loinc.org"
	SystemUCUM                  = "http://unitsofmeasure.org"
	SystemCommunicationCategory = "http://terminology.hl7.org/CodeSystem/communication-category"
	SystemAuditEventType        = "http://terminology.hl7.org/CodeSystem/audit-event-type"
	SystemAlertTag              = "https://fhir.epa-bienestar.com.ar/tags"
)

// LOINC codes for the supported vital-sign measurements.
const (
	LoincBloodPressurePanel = "85354-9"
	LoincSystolicBP         = "8480-6"
	LoincDiastolicBP        = "8462-4"
	LoincBodyTemperature    = "8310-5"
	LoincAxillaryTemp       = "8331-1"
	LoincBodyHeight         = "8302-2"
	LoincRespiratoryRate    = "9279-1"
	LoincHeartRate          = "8867-4"
	LoincBodyWeight         = "29463-7"
)

// ObservationStatus values per FHIR R4.
const (
	ObservationStatusFinal     = "final"
	ObservationStatusAmended   = "amended"
	ObservationStatusCancelled = "cancelled"
)

// CommunicationStatus values per FHIR R4. Alert Communications are
// fire-and-forget logs, so they are always written as completed.
const (
	CommunicationStatusCompleted  = "completed"
	CommunicationStatusInProgress = "in-progress"
)

// Request priority codes.
const (
	PriorityRoutine = "routine"
	PriorityUrgent  = "urgent"
	PriorityStat    = "stat"
)

// meta.tag codes that classify alert Communications for downstream queries.
const (
	TagPatientAlert       = "hta-patient-alert"
	TagAlert              = "hta-alert"
	TagPractitionerAlert  = "practitioner-alert"
	TagDoctorEmailSummary = "doctor-email-notification"
)

// ContactPoint system/use codes used when resolving practitioner emails.
const (
	ContactSystemEmail = "email"
	ContactUseWork     = "work"
)

// AuditEvent outcome codes per FHIR R4 (0 = success, 4 = minor failure,
// 8 = serious failure, 12 = major failure).
const (
	AuditOutcomeSuccess      = "0"
	AuditOutcomeMinorFailure = "4"
)
