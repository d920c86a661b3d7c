// Package scoring computes how well a patient summary satisfies a trial's
// parsed eligibility criteria.
//
// Scores are exclusion-first: any exclusion statement semantically close to
// the patient disqualifies the trial. Otherwise each inclusion statement close
// enough to the patient earns an equal share of 100 points.
//
// CachedEmbedder memoizes embeddings by text for batch runs, where the same
// criteria statements are embedded once per patient.
package scoring
