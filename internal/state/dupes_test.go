package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDuplicateSet(t *testing.T) {
	set := NewDuplicateSet(805, 801)
	require.True(t, set.Has(805))
	require.False(t, set.Has(806))

	set.Add(806)
	set.Add(806)
	require.Equal(t, 3, set.Len())
	require.Equal(t, []int{801, 805, 806}, set.IDs())
}

func TestSeedFromRecordFiles(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "data", "jobs_raw.json")
	legacy := filepath.Join(dir, "jobs_raw.json")

	require.Equal(t, 0, SeedFromRecordFiles(primary, legacy).Len())

	require.NoError(t, os.WriteFile(legacy, []byte(`[{"job_id": 700}, {"title": "no id"}, {"job_id": 701}]`), 0600))
	require.Equal(t, []int{700, 701}, SeedFromRecordFiles(primary, legacy).IDs())

	require.NoError(t, os.MkdirAll(filepath.Dir(primary), 0755))
	require.NoError(t, os.WriteFile(primary, []byte(`[]`), 0600))
	require.Equal(t, []int{700, 701}, SeedFromRecordFiles(primary, legacy).IDs(), "an empty file is skipped")

	require.NoError(t, os.WriteFile(primary, []byte(`[{"job_id": 805}]`), 0600))
	require.Equal(t, []int{805}, SeedFromRecordFiles(primary, legacy).IDs())

	require.NoError(t, os.WriteFile(primary, []byte(`{broken`), 0600))
	require.Equal(t, []int{700, 701}, SeedFromRecordFiles(primary, legacy).IDs(), "an unreadable file is skipped")
}
