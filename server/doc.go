// Package server exposes the matching service over a small JSON HTTP API.
//
// Routes:
//
//	POST /api/patients_upload      ingest a FHIR bundle
//	GET  /api/patients_index       list recent patients
//	GET  /api/patient_detail       patient profile and latest matches
//	POST /api/trials_match         match one patient
//	POST /api/trials_match_batch   match several patients
//	POST /api/trials_upload        upload trials (admin token when configured)
//
// Errors are returned as {"error": {"message": ..., "status": ...}}.
package server
