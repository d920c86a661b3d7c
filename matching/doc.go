// Package matching runs the end-to-end trial matching pipeline for patients.
//
// An Orchestrator looks up a patient profile, selects candidate trials,
// parses each distinct trial's eligibility criteria once per run, scores the
// patient against the scoreable trials and appends the ranked result to the
// match log.
//
// Each run owns its criteria cache. Batch runs execute patients concurrently
// on a worker pool; a failure for one patient is reported in that patient's
// BatchResult and does not stop the others.
package matching
