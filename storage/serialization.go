// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/poiesic/trialmatch/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalPatientRecord serializes a PatientRecord to bytes.
func MarshalPatientRecord(record *core.PatientRecord) []byte {
	buf := make([]byte, core.PatientRecordMUS.Size(*record))
	core.PatientRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalPatientRecord deserializes a PatientRecord from bytes. CreatedAt comes back in UTC.
func UnmarshalPatientRecord(data []byte) (*core.PatientRecord, error) {
	record, _, err := core.PatientRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return &record, nil
}

// MarshalTrial serializes a Trial to bytes.
func MarshalTrial(trial *core.Trial) []byte {
	buf := make([]byte, core.TrialMUS.Size(*trial))
	core.TrialMUS.Marshal(*trial, buf)
	return buf
}

// UnmarshalTrial deserializes a Trial from bytes.
func UnmarshalTrial(data []byte) (*core.Trial, error) {
	trial, _, err := core.TrialMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &trial, nil
}

// MarshalMatchRecord serializes a MatchRecord to bytes.
func MarshalMatchRecord(record *core.MatchRecord) []byte {
	buf := make([]byte, core.MatchRecordMUS.Size(*record))
	core.MatchRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalMatchRecord deserializes a MatchRecord from bytes.
func UnmarshalMatchRecord(data []byte) (*core.MatchRecord, error) {
	record, _, err := core.MatchRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return &record, nil
}
