package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/prisma-bulk/runtime/bulk"
)

func TestReportRows(t *testing.T) {
	reports := []bulk.Report{
		{
			CommitID:     "0f8e2d4c-1111-2222-3333-444455556666",
			Stage:        bulk.StageCommitted,
			Tables:       []string{"users", "posts"},
			RowsInserted: 3,
			Chunks:       2,
			Updates:      1,
			Duration:     1234 * time.Microsecond,
		},
		{
			CommitID: "abc",
			Stage:    bulk.StageRolledBack,
			FailedAt: bulk.StageKeysAllocated,
			Err:      errors.New("boom"),
		},
	}

	rows := ReportRows(reports)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"0f8e2d4c", "users,posts", "3", "2", "1", "1ms", "ok"}, rows[0])
	assert.Equal(t, "abc", rows[1][0])
	assert.Equal(t, "failed at "+bulk.StageKeysAllocated.String(), rows[1][6])
	assert.Len(t, ReportHeaders, len(rows[0]))
}

func TestSeedSummaryMarkdown(t *testing.T) {
	s := SeedSummary{
		Table:    "users",
		File:     "users.csv",
		Read:     5,
		Rejected: 1,
		Elapsed:  2 * time.Second,
		Reports: []bulk.Report{
			{Stage: bulk.StageCommitted, RowsInserted: 4, Chunks: 2, KeysAllocated: 4},
			{Stage: bulk.StageRolledBack, FailedAt: bulk.StageKeysAllocated, Err: errors.New("boom")},
		},
	}

	md := s.Markdown()
	assert.Contains(t, md, "# Seeded `users`")
	assert.Contains(t, md, "| rows read | 5 |")
	assert.Contains(t, md, "| rows inserted | 4 |")
	assert.Contains(t, md, "| commits | 2 |")
	assert.Contains(t, md, "1 commit(s) failed")
}

func TestPrintersWriteToOutput(t *testing.T) {
	var buf bytes.Buffer
	old := Output
	Output = &buf
	t.Cleanup(func() { Output = old })
	DisableColor()

	PrintSuccess("seeded %d rows", 3)
	PrintKeyValue("Provider", "sqlite")
	require.NoError(t, PrintTable([]string{"A", "B"}, [][]string{{"1", "2"}}))

	out := buf.String()
	assert.Contains(t, out, "seeded 3 rows")
	assert.Contains(t, out, "Provider:")
	assert.Contains(t, out, "sqlite")
	assert.Contains(t, out, "A")
}
