package ai

// EntityTypes lists the biomedical entity groups recognized by extractors.
// Completion-backed extractors include them in the prompt; token-classification
// models report them as entity groups.
var EntityTypes = []string{
	"Age",
	"Biological_structure",
	"Clinical_event",
	"Diagnostic_procedure",
	"Disease_disorder",
	"Dosage",
	"Family_history",
	"Lab_value",
	"Medication",
	"Sex",
	"Sign_symptom",
	"Therapeutic_procedure",
}

// DefaultMaxNewTokens bounds completion length for criteria parsing.
const DefaultMaxNewTokens = 512
