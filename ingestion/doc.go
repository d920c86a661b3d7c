// Package ingestion loads patients and trials into storage.
//
// Patients arrive as FHIR bundles (as produced by Synthea). The Pipeline turns
// a bundle's Condition and MedicationRequest resources into a PatientProfile,
// runs entity extraction over the narrative summary and upserts the patient.
// Bundles can be ingested one at a time or concurrently on a worker pool.
//
// Trials arrive through the admin upload flow; incomplete items are skipped.
package ingestion
