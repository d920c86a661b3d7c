package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/ingestion"
)

type patientUploadRequest struct {
	Patient   json.RawMessage `json:"patient"`
	PatientID string          `json:"patient_id"`
}

type patientUploadResponse struct {
	PatientID string               `json:"patient_id"`
	Profile   *core.PatientProfile `json:"profile"`
}

func (s *Server) uploadPatient(w http.ResponseWriter, r *http.Request) {
	var req patientUploadRequest
	if err := decodeBody(w, r, &req); err != nil || !isJSONObject(req.Patient) {
		writeError(w, "`patient` must be a JSON object.", http.StatusBadRequest)
		return
	}

	record, err := s.svc.IngestPatient(r.Context(), req.PatientID, req.Patient)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, patientUploadResponse{PatientID: record.PatientID, Profile: record.Profile})
}

type patientSummary struct {
	PatientID  string    `json:"patient_id"`
	CreatedAt  time.Time `json:"created_at"`
	Conditions []string  `json:"conditions"`
}

func (s *Server) listPatients(w http.ResponseWriter, r *http.Request) {
	limit := DefaultPatientListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, "limit must be a positive integer.", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := s.svc.ListPatients(r.Context(), limit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	patients := make([]patientSummary, len(records))
	for i, record := range records {
		conditions := []string{}
		if record.Profile != nil {
			all := record.Profile.Conditions
			conditions = append(conditions, all[:min(4, len(all))]...)
		}
		patients[i] = patientSummary{
			PatientID:  record.PatientID,
			CreatedAt:  record.CreatedAt,
			Conditions: conditions,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"patients": patients})
}

type patientDetailResponse struct {
	PatientID     string               `json:"patient_id"`
	CreatedAt     time.Time            `json:"created_at"`
	Profile       *core.PatientProfile `json:"profile"`
	LatestMatches *core.MatchRecord    `json:"latest_matches"`
}

func (s *Server) patientDetail(w http.ResponseWriter, r *http.Request) {
	patientID := r.URL.Query().Get("patient_id")
	if patientID == "" {
		writeError(w, "patient_id query parameter is required.", http.StatusBadRequest)
		return
	}

	record, latest, err := s.svc.PatientDetail(r.Context(), patientID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	profile := record.Profile
	if profile == nil {
		profile = &core.PatientProfile{}
	}
	writeJSON(w, http.StatusOK, patientDetailResponse{
		PatientID:     record.PatientID,
		CreatedAt:     record.CreatedAt,
		Profile:       profile,
		LatestMatches: latest,
	})
}

type matchRequest struct {
	PatientID string `json:"patient_id"`
	Mode      string `json:"mode"`
	NumTrials *int   `json:"num_trials"`
}

type matchResponse struct {
	PatientID string             `json:"patient_id"`
	Mode      core.MatchMode     `json:"mode"`
	CreatedAt time.Time          `json:"created_at"`
	Trials    []core.MatchResult `json:"trials"`
}

func newMatchResponse(record *core.MatchRecord) matchResponse {
	trials := record.Trials
	if trials == nil {
		trials = []core.MatchResult{}
	}
	return matchResponse{
		PatientID: record.PatientID,
		Mode:      record.Mode,
		CreatedAt: record.CreatedAt,
		Trials:    trials,
	}
}

func (s *Server) matchTrials(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, "request body must be a JSON object.", http.StatusBadRequest)
		return
	}
	if req.PatientID == "" {
		writeError(w, "patient_id is required.", http.StatusBadRequest)
		return
	}
	mode, ok := parseMode(w, req.Mode)
	if !ok {
		return
	}

	record, err := s.svc.RunMatching(r.Context(), req.PatientID, mode, numTrials(req.NumTrials))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMatchResponse(record))
}

type batchRequest struct {
	PatientIDs []any  `json:"patient_ids"`
	Mode       string `json:"mode"`
	NumTrials  *int   `json:"num_trials"`
}

type batchItem struct {
	matchResponse
	Error string `json:"error,omitempty"`
}

// MarshalJSON emits either the match fields or {patient_id, error}.
func (b batchItem) MarshalJSON() ([]byte, error) {
	if b.Error != "" {
		return json.Marshal(struct {
			PatientID string `json:"patient_id"`
			Error     string `json:"error"`
		}{b.PatientID, b.Error})
	}
	return json.Marshal(b.matchResponse)
}

func (s *Server) matchTrialsBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(w, r, &req); err != nil || len(req.PatientIDs) == 0 {
		writeError(w, "patient_ids must be a non-empty list.", http.StatusBadRequest)
		return
	}
	mode, ok := parseMode(w, req.Mode)
	if !ok {
		return
	}

	ids := make([]string, len(req.PatientIDs))
	for i, id := range req.PatientIDs {
		ids[i] = fmt.Sprint(id)
	}

	results := s.svc.RunBatch(r.Context(), ids, mode, numTrials(req.NumTrials))
	items := make([]batchItem, len(results))
	for i, res := range results {
		if res.Err != nil {
			items[i] = batchItem{matchResponse: matchResponse{PatientID: res.PatientID}, Error: res.Err.Error()}
			continue
		}
		items[i] = batchItem{matchResponse: newMatchResponse(res.Record)}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": items})
}

type trialsUploadRequest struct {
	Trials []json.RawMessage `json:"trials"`
}

func (s *Server) uploadTrials(w http.ResponseWriter, r *http.Request) {
	var req trialsUploadRequest
	if err := decodeBody(w, r, &req); err != nil || len(req.Trials) == 0 {
		writeError(w, "`trials` must be a non-empty list.", http.StatusBadRequest)
		return
	}

	items := make([]ingestion.TrialUpload, 0, len(req.Trials))
	for _, raw := range req.Trials {
		var item ingestion.TrialUpload
		if !isJSONObject(raw) || json.Unmarshal(raw, &item) != nil {
			continue
		}
		items = append(items, item)
	}

	n, err := s.svc.UploadTrials(r.Context(), items)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"upserted": n})
}

func parseMode(w http.ResponseWriter, raw string) (core.MatchMode, bool) {
	mode, err := core.ParseMatchMode(raw)
	if err != nil {
		writeError(w, "mode must be 'demo' or 'random'.", http.StatusBadRequest)
		return "", false
	}
	return mode, true
}

// numTrials treats a missing count as 0, which selects the service default.
func numTrials(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
