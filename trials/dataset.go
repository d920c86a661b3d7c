package trials

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/trialmatch/core"
)

// Dataset file names inside the dataset directory.
const (
	StudiesFile       = "studies_subset.txt"
	EligibilitiesFile = "eligibilities_subset.txt"
)

// Study is one row of the studies table.
type Study struct {
	NCTID         string
	BriefTitle    string
	OverallStatus string
}

// Eligibility is one row of the eligibilities table.
type Eligibility struct {
	NCTID    string
	Criteria string
}

// Dataset reads the bulk reference tables from a directory.
// Tables are re-read on every call so replaced files are picked up.
type Dataset struct {
	dir string
}

// NewDataset returns a Dataset rooted at dir.
func NewDataset(dir string) *Dataset {
	return &Dataset{dir: dir}
}

// Dir returns the dataset directory.
func (d *Dataset) Dir() string {
	return d.dir
}

// Studies reads the studies table.
func (d *Dataset) Studies() ([]Study, error) {
	var studies []Study
	err := readTable(filepath.Join(d.dir, StudiesFile),
		[]string{"nct_id", "brief_title", "overall_status"},
		func(row []string) {
			studies = append(studies, Study{NCTID: row[0], BriefTitle: row[1], OverallStatus: row[2]})
		})
	return studies, err
}

// Eligibilities reads the eligibilities table.
func (d *Dataset) Eligibilities() ([]Eligibility, error) {
	var rows []Eligibility
	err := readTable(filepath.Join(d.dir, EligibilitiesFile),
		[]string{"nct_id", "criteria"},
		func(row []string) {
			rows = append(rows, Eligibility{NCTID: row[0], Criteria: row[1]})
		})
	return rows, err
}

// readTable streams a pipe-delimited table with a header row, calling emit with
// the requested columns of each row. Rows that fail to parse or are too short
// are skipped.
func readTable(path string, columns []string, emit func(row []string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '|'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("%w: reading header of %s: %w", ErrDatasetUnavailable, filepath.Base(path), err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	positions := make([]int, len(columns))
	for i, col := range columns {
		pos, ok := index[col]
		if !ok {
			return fmt.Errorf("%w: %s in %s", ErrMissingColumn, col, filepath.Base(path))
		}
		positions[i] = pos
	}

	out := make([]string, len(columns))
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: reading %s: %w", ErrDatasetUnavailable, filepath.Base(path), err)
		}
		ok := true
		for i, pos := range positions {
			if pos >= len(record) {
				ok = false
				break
			}
			out[i] = strings.TrimSpace(record[pos])
		}
		if !ok || out[0] == "" {
			continue
		}
		emit(out)
	}
}

// join pairs each study with every eligibility row sharing its id, in study
// order. Studies without eligibility rows are dropped.
func join(studies []Study, eligibilities []Eligibility) []*core.Trial {
	byID := make(map[string][]string, len(eligibilities))
	for _, e := range eligibilities {
		byID[e.NCTID] = append(byID[e.NCTID], e.Criteria)
	}

	var trials []*core.Trial
	for _, s := range studies {
		for _, criteria := range byID[s.NCTID] {
			trials = append(trials, &core.Trial{
				NCTID:         s.NCTID,
				BriefTitle:    s.BriefTitle,
				Criteria:      criteria,
				OverallStatus: s.OverallStatus,
			})
		}
	}
	return trials
}
