package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r1, err := s.RecordRun(ctx, Run{Service: "s3", InputHash: "in1", OutputHash: "out1", Outputs: []string{"s3/endpoints.go"}, GeneratorVersion: "0.1.0"})
	require.NoError(t, err)
	assert.NotEmpty(t, r1.ID)
	assert.Equal(t, int64(1), r1.Seq)

	r2, err := s.RecordRun(ctx, Run{Service: "sqs", InputHash: "in2", OutputHash: "out2"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), r2.Seq)
	assert.NotEqual(t, r1.ID, r2.ID)
	assert.Equal(t, []string{}, r2.Outputs)
}

func TestLastRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.LastRun(ctx, "s3")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = s.RecordRun(ctx, Run{Service: "s3", InputHash: "old", OutputHash: "o"})
	require.NoError(t, err)
	_, err = s.RecordRun(ctx, Run{Service: "sqs", InputHash: "other", OutputHash: "o"})
	require.NoError(t, err)
	want, err := s.RecordRun(ctx, Run{Service: "s3", InputHash: "new", OutputHash: "o", OptionsHash: "opts", Outputs: []string{"x.go"}})
	require.NoError(t, err)

	got, err := s.LastRun(ctx, "s3")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs, err := s.Runs(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	for _, svc := range []string{"a", "b", "a"} {
		_, err := s.RecordRun(ctx, Run{Service: svc, InputHash: "h", OutputHash: "o"})
		require.NoError(t, err)
	}

	all, err := s.Runs(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, r := range all {
		assert.Equal(t, int64(i+1), r.Seq)
	}

	onlyA, err := s.Runs(ctx, "a")
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, int64(1), onlyA[0].Seq)
	assert.Equal(t, int64(3), onlyA[1].Seq)
}
