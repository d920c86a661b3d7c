package storage

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/trialmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("patient-123")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalPatientRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name   string
		record *core.PatientRecord
	}{
		{
			name:   "record without profile",
			record: &core.PatientRecord{PatientID: "p-1", CreatedAt: now},
		},
		{
			name: "record with empty profile",
			record: &core.PatientRecord{
				PatientID: "p-2",
				CreatedAt: now,
				Profile:   &core.PatientProfile{},
			},
		},
		{
			name: "full profile",
			record: &core.PatientRecord{
				PatientID: "p-3",
				CreatedAt: now,
				Profile: &core.PatientProfile{
					Conditions:  []string{"Hypertension", "Type 2 diabetes"},
					Medications: []string{"Metformin"},
					TextSummary: "Patient has a condition of Hypertension. Patient is prescribed Metformin.",
					NEREntities: []string{"Hypertension", "Metformin"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalPatientRecord(tt.record)
			decoded, err := UnmarshalPatientRecord(data)
			require.NoError(t, err)

			assert.Equal(t, tt.record.PatientID, decoded.PatientID)
			assert.True(t, tt.record.CreatedAt.Equal(decoded.CreatedAt))
			if tt.record.Profile == nil {
				assert.Nil(t, decoded.Profile)
				return
			}
			require.NotNil(t, decoded.Profile)
			assert.Equal(t, tt.record.Profile.TextSummary, decoded.Profile.TextSummary)
			if len(tt.record.Profile.Conditions) == 0 {
				assert.Empty(t, decoded.Profile.Conditions)
			} else {
				assert.Equal(t, tt.record.Profile.Conditions, decoded.Profile.Conditions)
			}
			if len(tt.record.Profile.NEREntities) == 0 {
				assert.Empty(t, decoded.Profile.NEREntities)
			} else {
				assert.Equal(t, tt.record.Profile.NEREntities, decoded.Profile.NEREntities)
			}
		})
	}
}

func TestMarshalUnmarshalTrial(t *testing.T) {
	trial := &core.Trial{
		NCTID:         "NCT05943132",
		BriefTitle:    "A Study of Something",
		Criteria:      "Inclusion Criteria:\n- Adults\nExclusion Criteria:\n- Pregnancy",
		OverallStatus: "RECRUITING",
	}

	decoded, err := UnmarshalTrial(MarshalTrial(trial))
	require.NoError(t, err)
	assert.Equal(t, trial, decoded)
}

func TestMarshalUnmarshalMatchRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	record := &core.MatchRecord{
		Id:        99,
		PatientID: "p-1",
		Mode:      core.MatchModeDemo,
		CreatedAt: now,
		Trials: []core.MatchResult{
			{NCTID: "NCT1", Title: "One", Score: 100},
			{NCTID: "NCT2", Title: "Two", Score: 33.33},
		},
	}

	decoded, err := UnmarshalMatchRecord(MarshalMatchRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record.Id, decoded.Id)
	assert.Equal(t, record.Mode, decoded.Mode)
	assert.True(t, record.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, record.Trials, decoded.Trials)
}

func TestUnmarshalPatientRecord_EmptyListsStayEmpty(t *testing.T) {
	data := MarshalPatientRecord(&core.PatientRecord{
		PatientID: "p-empty",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		Profile:   &core.PatientProfile{TextSummary: "No findings."},
	})

	decoded, err := UnmarshalPatientRecord(data)
	require.NoError(t, err)
	require.NotNil(t, decoded.Profile)
	assert.NotNil(t, decoded.Profile.Conditions)
	assert.NotNil(t, decoded.Profile.Medications)
	assert.NotNil(t, decoded.Profile.NEREntities)
	assert.Equal(t, time.UTC, decoded.CreatedAt.Location())

	out, err := json.Marshal(decoded.Profile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"conditions":[],"medications":[],"text_summary":"No findings.","ner_entities":[]}`, string(out))
}

func TestUnmarshalMatchRecord_EmptyTrialsStayEmpty(t *testing.T) {
	data := MarshalMatchRecord(&core.MatchRecord{
		Id:        3,
		PatientID: "p-1",
		Mode:      core.MatchModeDemo,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	})

	decoded, err := UnmarshalMatchRecord(data)
	require.NoError(t, err)
	assert.NotNil(t, decoded.Trials)
	assert.Empty(t, decoded.Trials)
	assert.Equal(t, time.UTC, decoded.CreatedAt.Location())

	out, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"trials":[]`)
}

func TestUnmarshal_Truncated(t *testing.T) {
	data := MarshalMatchRecord(&core.MatchRecord{
		PatientID: "p-1",
		Mode:      core.MatchModeRandom,
		Trials:    []core.MatchResult{{NCTID: "NCT1", Title: "One", Score: 50}},
	})

	_, err := UnmarshalMatchRecord(data[:len(data)-3])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSerializationFailed))
}
