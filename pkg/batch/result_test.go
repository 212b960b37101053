package batch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/graft/pkg/batch"
)

func sampleResult() batch.Result {
	return batch.Result{
		Spec:          "validate-on-save",
		Total:         4,
		ModifiedCount: 2,
		Files: []batch.FileResult{
			{Path: "a.py", Status: batch.StatusModified, BytesWritten: 120},
			{Path: "b.py", Status: batch.StatusUnchanged},
			{Path: "c.py", Status: batch.StatusMissing},
			{Path: "a.py", Status: batch.StatusModified, BytesWritten: 80},
		},
	}
}

func TestResult_PerFileLastOccurrenceWins(t *testing.T) {
	t.Parallel()

	res := sampleResult()
	res.Files[3].Status = batch.StatusUnchanged

	assert.Equal(t, map[string]batch.Status{
		"a.py": batch.StatusUnchanged,
		"b.py": batch.StatusUnchanged,
		"c.py": batch.StatusMissing,
	}, res.PerFile())
}

func TestResult_Status(t *testing.T) {
	t.Parallel()

	res := sampleResult()

	status, ok := res.Status("c.py")
	assert.True(t, ok)
	assert.Equal(t, batch.StatusMissing, status)

	_, ok = res.Status("z.py")
	assert.False(t, ok)
}

func TestResult_CountsAndFailure(t *testing.T) {
	t.Parallel()

	res := sampleResult()

	assert.Equal(t, 2, res.Count(batch.StatusModified))
	assert.Equal(t, 1, res.Count(batch.StatusMissing))
	assert.Zero(t, res.Count(batch.StatusError))
	assert.True(t, res.Failed())
	assert.Equal(t, int64(200), res.BytesWritten())

	res.Files = res.Files[:2]
	assert.False(t, res.Failed())
}
