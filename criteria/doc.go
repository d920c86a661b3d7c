// Package criteria turns free-text trial eligibility descriptions into
// structured inclusion and exclusion statements.
//
// A Parser issues a single completion request per trial and reads the first
// JSON object out of the generated text. Parsing never fails the caller for
// bad model output: malformed or missing JSON degrades to empty criteria,
// which downstream scoring treats as unscoreable. A failed or timed out
// completion call is an external service failure and is returned.
package criteria
