package trials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStudies = `nct_id|brief_title|overall_status|phase
NCT05943132|Diabetes Prevention Study|RECRUITING|PHASE3
NCT06241142|Asthma Control Trial|COMPLETED|PHASE2
NCT00000001|Old Hypertension Study|COMPLETED|PHASE4
NCT00000002|Heart Failure Registry|NOT_YET_RECRUITING|NA
NCT00000003|Orphan Study|RECRUITING|NA
`

const testEligibilities = `id|nct_id|criteria
1|NCT05943132|"Inclusion Criteria: adults with prediabetes"
2|NCT06241142|Inclusion Criteria: moderate asthma
3|NCT00000001|Inclusion Criteria: hypertension
4|NCT00000002|Inclusion Criteria: heart failure
5|NCT00000002|Exclusion Criteria: dialysis
`

func writeDataset(t *testing.T, studies, eligibilities string) string {
	t.Helper()
	dir := t.TempDir()
	if studies != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, StudiesFile), []byte(studies), 0o644))
	}
	if eligibilities != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, EligibilitiesFile), []byte(eligibilities), 0o644))
	}
	return dir
}

func TestDataset_Studies(t *testing.T) {
	dir := writeDataset(t, testStudies, testEligibilities)
	ds := NewDataset(dir)

	studies, err := ds.Studies()
	require.NoError(t, err)
	require.Len(t, studies, 5)
	assert.Equal(t, Study{NCTID: "NCT05943132", BriefTitle: "Diabetes Prevention Study", OverallStatus: "RECRUITING"}, studies[0])
}

func TestDataset_Eligibilities(t *testing.T) {
	dir := writeDataset(t, testStudies, testEligibilities)
	ds := NewDataset(dir)

	rows, err := ds.Eligibilities()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Inclusion Criteria: adults with prediabetes", rows[0].Criteria)
	assert.Equal(t, "NCT00000002", rows[4].NCTID)
}

func TestDataset_SkipsShortRows(t *testing.T) {
	dir := writeDataset(t, "nct_id|brief_title|overall_status\nNCT1|Only title\nNCT2|Full|RECRUITING\n", "")
	studies, err := NewDataset(dir).Studies()
	require.NoError(t, err)
	require.Len(t, studies, 1)
	assert.Equal(t, "NCT2", studies[0].NCTID)
}

func TestDataset_MissingFile(t *testing.T) {
	_, err := NewDataset(t.TempDir()).Studies()
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
}

func TestDataset_MissingColumn(t *testing.T) {
	dir := writeDataset(t, "nct_id|title\nNCT1|x\n", "")
	_, err := NewDataset(dir).Studies()
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestJoin(t *testing.T) {
	studies := []Study{
		{NCTID: "A", BriefTitle: "Study A"},
		{NCTID: "B", BriefTitle: "Study B"},
		{NCTID: "C", BriefTitle: "Study C"},
	}
	eligibilities := []Eligibility{
		{NCTID: "C", Criteria: "c1"},
		{NCTID: "A", Criteria: "a1"},
		{NCTID: "C", Criteria: "c2"},
	}

	trials := join(studies, eligibilities)
	require.Len(t, trials, 3)
	assert.Equal(t, "A", trials[0].NCTID)
	assert.Equal(t, "c1", trials[1].Criteria)
	assert.Equal(t, "c2", trials[2].Criteria)
	assert.Equal(t, "Study C", trials[2].BriefTitle)
}
