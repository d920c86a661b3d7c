// Package trials selects the candidate trials for a matching run.
//
// Trials uploaded through the admin flow take precedence. When none are
// stored, trials come from the bulk reference dataset: two pipe-delimited
// tables (studies and eligibilities) joined on the trial id.
package trials
