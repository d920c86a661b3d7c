package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidatePatientRecord(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		record  *PatientRecord
		wantErr error
	}{
		{
			name:    "valid record",
			record:  &PatientRecord{PatientID: "p-1", CreatedAt: validTime, Profile: &PatientProfile{}},
			wantErr: nil,
		},
		{
			name:    "valid record with nil profile",
			record:  &PatientRecord{PatientID: "p-1", CreatedAt: validTime},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidPatient,
		},
		{
			name:    "blank patient id",
			record:  &PatientRecord{PatientID: "   ", CreatedAt: validTime},
			wantErr: ErrEmptyPatientID,
		},
		{
			name:    "future timestamp",
			record:  &PatientRecord{PatientID: "p-1", CreatedAt: futureTime},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePatientRecord(tt.record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePatientRecord() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePatientRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTrial(t *testing.T) {
	tests := []struct {
		name    string
		trial   *Trial
		wantErr error
	}{
		{
			name:    "valid trial",
			trial:   &Trial{NCTID: "NCT1", BriefTitle: "Study", Criteria: "Inclusion: adults"},
			wantErr: nil,
		},
		{
			name:    "nil trial",
			trial:   nil,
			wantErr: ErrInvalidTrial,
		},
		{
			name:    "missing nct id",
			trial:   &Trial{BriefTitle: "Study", Criteria: "x"},
			wantErr: ErrEmptyNCTID,
		},
		{
			name:    "missing title",
			trial:   &Trial{NCTID: "NCT1", Criteria: "x"},
			wantErr: ErrEmptyBriefTitle,
		},
		{
			name:    "missing criteria",
			trial:   &Trial{NCTID: "NCT1", BriefTitle: "Study"},
			wantErr: ErrEmptyCriteria,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTrial(tt.trial)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTrial() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTrial() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMatchRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *MatchRecord
		wantErr error
	}{
		{
			name:    "valid empty run",
			record:  &MatchRecord{PatientID: "p-1", Mode: MatchModeDemo},
			wantErr: nil,
		},
		{
			name: "valid run with results",
			record: &MatchRecord{PatientID: "p-1", Mode: MatchModeRandom, Trials: []MatchResult{
				{NCTID: "NCT1", Title: "A", Score: 100},
			}},
			wantErr: nil,
		},
		{
			name:    "unknown mode",
			record:  &MatchRecord{PatientID: "p-1", Mode: "sometimes"},
			wantErr: ErrInvalidMatchMode,
		},
		{
			name: "score above range",
			record: &MatchRecord{PatientID: "p-1", Mode: MatchModeDemo, Trials: []MatchResult{
				{NCTID: "NCT1", Score: 100.5},
			}},
			wantErr: ErrScoreOutOfRange,
		},
		{
			name:    "blank patient",
			record:  &MatchRecord{Mode: MatchModeDemo},
			wantErr: ErrEmptyPatientID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMatchRecord(tt.record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateMatchRecord() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMatchRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseMatchMode(t *testing.T) {
	tests := []struct {
		input   string
		want    MatchMode
		wantErr bool
	}{
		{input: "", want: MatchModeDemo},
		{input: "demo", want: MatchModeDemo},
		{input: " Random ", want: MatchModeRandom},
		{input: "all", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMatchMode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMatchMode) {
					t.Errorf("ParseMatchMode(%q) error = %v, want ErrInvalidMatchMode", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseMatchMode(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
			}
		})
	}
}
