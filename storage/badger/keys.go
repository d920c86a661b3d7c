package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/trialmatch/core"
)

// Key prefixes for different data types
const (
	patientRecordPrefix     = "patrec"
	patientRecordDatePrefix = "patrecd"
	trialRecordPrefix       = "trirec"
	matchRecordPrefix       = "matrec"
	matchRecordPatientIndex = "matrecp"
	matchRecordIDSeq        = "matrecseq"
)

// makePatientKey generates a key for a patient record by patient id.
func makePatientKey(patientID string) []byte {
	return []byte(patientRecordPrefix + ":" + patientID)
}

// makePatientDateKey generates a composite key for the patient date index.
// Format: prefix:timestamp:hash(patientID)
func makePatientDateKey(createdAt time.Time, patientID string) []byte {
	prefix := []byte(patientRecordDatePrefix + ":")
	buf := make([]byte, len(prefix)+16) // 8 bytes for timestamp + 8 bytes for patient hash
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(patientID)))
	return buf
}

// makeTrialKey generates a key for a trial by NCT id.
func makeTrialKey(nctID string) []byte {
	return []byte(trialRecordPrefix + ":" + nctID)
}

// makeMatchRecordKey generates a key for a match record by ID.
func makeMatchRecordKey(id core.ID) []byte {
	prefix := []byte(matchRecordPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialMatchPatientKey generates the per-patient prefix of the match index.
// Format: prefix:hash(patientID)
func makePartialMatchPatientKey(patientID string) []byte {
	prefix := []byte(matchRecordPatientIndex + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(patientID)))
	return buf
}

// makeMatchPatientKey generates a composite key for the per-patient match index.
// Format: prefix:hash(patientID):timestamp:id
func makeMatchPatientKey(patientID string, createdAt time.Time, id core.ID) []byte {
	partial := makePartialMatchPatientKey(patientID)
	buf := make([]byte, len(partial)+16)
	offset := copy(buf, partial)
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// seekLast returns a key that sorts after every key starting with prefix,
// for positioning reverse iterators.
func seekLast(prefix []byte) []byte {
	buf := make([]byte, len(prefix)+17)
	copy(buf, prefix)
	for i := len(prefix); i < len(buf); i++ {
		buf[i] = 0xFF
	}
	return buf
}
