package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tabviz/internal/dataset"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore(3)
	require.NoError(t, s.Open(":memory:"))
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New([]dataset.Column{
		{Name: "n", Kind: dataset.KindInteger, Width: 8, Values: []dataset.Value{
			dataset.Int(1), dataset.Missing(), dataset.Int(3),
		}},
		{Name: "s", Kind: dataset.KindText, Values: []dataset.Value{
			dataset.Text("a"), dataset.Text("b"), dataset.Text("c"),
		}},
	})
	require.NoError(t, err)
	return ds
}

func TestDatasetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ds := testDataset(t)

	require.NoError(t, s.SaveDataset("sess", ds, "data.csv"))

	got, filename, err := s.Dataset("sess")
	require.NoError(t, err)
	assert.Equal(t, "data.csv", filename)
	assert.Equal(t, ds.Names(), got.Names())
	assert.Equal(t, ds.RowCount(), got.RowCount())
	for i, want := range ds.Columns() {
		have := got.Columns()[i]
		assert.Equal(t, want.Kind, have.Kind)
		assert.Equal(t, want.Width, have.Width)
		assert.Equal(t, want.Values, have.Values)
	}
}

func TestSaveDatasetReplaces(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveDataset("sess", testDataset(t), "first.csv"))

	second, err := dataset.New([]dataset.Column{
		{Name: "only", Kind: dataset.KindText, Values: []dataset.Value{dataset.Text("x")}},
	})
	require.NoError(t, err)
	require.NoError(t, s.SaveDataset("sess", second, "second.csv"))

	got, filename, err := s.Dataset("sess")
	require.NoError(t, err)
	assert.Equal(t, "second.csv", filename)
	assert.Equal(t, []string{"only"}, got.Names())
}

func TestDatasetIsolatedPerSession(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveDataset("alpha", testDataset(t), "alpha.csv"))

	_, _, err := s.Dataset("beta")
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestClearDataset(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SaveDataset("sess", testDataset(t), "data.csv"))
	require.NoError(t, s.ClearDataset("sess"))

	_, _, err := s.Dataset("sess")
	assert.ErrorIs(t, err, ErrNoDataset)

	// Clearing an absent dataset is not an error.
	assert.NoError(t, s.ClearDataset("sess"))
}

func TestUploadsMostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddUpload(&UploadRecord{
			SessionID:  "sess",
			Filename:   fmt.Sprintf("file%d.csv", i),
			RowCount:   10 * (i + 1),
			UploadedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recs, err := s.Uploads("sess")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "file2.csv", recs[0].Filename)
	assert.Equal(t, "file0.csv", recs[2].Filename)
	assert.NotEmpty(t, recs[0].ID)
}

func TestUploadHistoryCap(t *testing.T) {
	s := openTestStore(t) // cap of 3
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.AddUpload(&UploadRecord{
			SessionID:  "sess",
			Filename:   fmt.Sprintf("file%d.csv", i),
			UploadedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recs, err := s.Uploads("sess")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "file4.csv", recs[0].Filename)
	assert.Equal(t, "file2.csv", recs[2].Filename)
}

func TestUploadHistoryCapSameTimestamp(t *testing.T) {
	s := openTestStore(t) // cap of 3
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Rapid uploads can share a timestamp; the cap must still evict the
	// oldest inserts, never the one just added.
	for i := 0; i < 5; i++ {
		require.NoError(t, s.AddUpload(&UploadRecord{
			SessionID:  "sess",
			Filename:   fmt.Sprintf("file%d.csv", i),
			UploadedAt: at,
		}))
	}

	recs, err := s.Uploads("sess")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "file4.csv", recs[0].Filename)
	assert.Equal(t, "file3.csv", recs[1].Filename)
	assert.Equal(t, "file2.csv", recs[2].Filename)
}

func TestAddUploadDedupesByFilename(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.AddUpload(&UploadRecord{
		SessionID: "sess", Filename: "same.csv", RowCount: 1, UploadedAt: base,
	}))
	require.NoError(t, s.AddUpload(&UploadRecord{
		SessionID: "sess", Filename: "other.csv", RowCount: 2, UploadedAt: base.Add(time.Minute),
	}))
	require.NoError(t, s.AddUpload(&UploadRecord{
		SessionID: "sess", Filename: "same.csv", RowCount: 3, UploadedAt: base.Add(2 * time.Minute),
	}))

	recs, err := s.Uploads("sess")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "same.csv", recs[0].Filename)
	assert.Equal(t, 3, recs[0].RowCount)
	assert.Equal(t, "other.csv", recs[1].Filename)
}

func TestUploadsIsolatedPerSession(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.AddUpload(&UploadRecord{SessionID: "alpha", Filename: "a.csv"}))

	recs, err := s.Uploads("beta")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSaveDatasetFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO session_datasets").
		WillReturnError(fmt.Errorf("disk I/O error"))

	s := NewSQLiteStore(10)
	s.db = db

	err = s.SaveDataset("sess", testDataset(t), "data.csv")
	assert.ErrorContains(t, err, "failed to save dataset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddUploadRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM uploads").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO uploads").
		WillReturnError(fmt.Errorf("constraint violation"))
	mock.ExpectRollback()

	s := NewSQLiteStore(10)
	s.db = db

	err = s.AddUpload(&UploadRecord{SessionID: "sess", Filename: "a.csv"})
	assert.ErrorContains(t, err, "failed to insert upload")
	assert.NoError(t, mock.ExpectationsWereMet())
}
