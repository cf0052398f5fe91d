package classify

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfinder/internal/job"
)

func sampleResults() Results {
	return Results{
		{Posting: job.Posting{Title: "a", Company: "Acme"}, Score: 71.99},
		{Posting: job.Posting{Title: "b", Company: "Initech"}, Score: 90},
		{Posting: job.Posting{Title: "c", Company: "Acme"}, Score: 72},
		{Posting: job.Posting{Title: "d", Company: "Hooli"}, Score: 90},
	}
}

func titles(rs Results) []string {
	out := make([]string, 0, rs.Len())
	for _, r := range rs {
		out = append(out, r.Posting.Title)
	}
	return out
}

func TestResultsSortByScore(t *testing.T) {
	t.Parallel()

	rs := sampleResults()
	rs.SortByScore()

	assert.Equal(t, []string{"b", "d", "c", "a"}, titles(rs), "descending, ties keep input order")
}

func TestResultsAboveScore(t *testing.T) {
	t.Parallel()

	rs := sampleResults()

	assert.Equal(t, []string{"b", "c", "d"}, titles(rs.AboveScore(72)), "threshold is inclusive")
	assert.Empty(t, rs.AboveScore(100.01))
	assert.Len(t, rs.AboveScore(0), 4)
}

func TestResultsTop(t *testing.T) {
	t.Parallel()

	rs := sampleResults()

	assert.Equal(t, []string{"a", "b"}, titles(rs.Top(2)))
	assert.Len(t, rs.Top(100), 4)
	assert.Empty(t, rs.Top(0))
	assert.Empty(t, rs.Top(-3))
}

func TestResultsDumpToTmpFile(t *testing.T) {
	t.Parallel()

	rs := sampleResults()

	name, err := rs.DumpToTmpFile()
	require.NoError(t, err)
	defer os.Remove(name)

	data, err := os.ReadFile(name)
	require.NoError(t, err)

	var decoded Results
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 4)
	assert.Equal(t, "Initech", decoded[1].Posting.Company)
	assert.InDelta(t, 90.0, decoded[1].Score, 1e-9)
}

func TestResultsReportByCompany(t *testing.T) {
	t.Parallel()

	rs := sampleResults()
	rs[0].Sponsorship = SponsorshipYes
	report := rs.ReportByCompany()

	require.Len(t, report, 3)
	assert.Len(t, report["Acme"], 2)
	assert.Len(t, report["Initech"], 1)
	assert.Equal(t, "confirmed-yes", report["Acme"][0]["sponsorship"])
	assert.Equal(t, "71.99", report["Acme"][0]["score"])
}
