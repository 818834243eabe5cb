package services

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/clubops/pointsledger/internal/common"
	"github.com/clubops/pointsledger/internal/logging"
	"github.com/clubops/pointsledger/internal/server/repositories/repomanager"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubFetcher struct {
	body io.ReadCloser
	err  error
}

func (f *stubFetcher) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

func newImportWithMock(t *testing.T) (*ImportService, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	rm, err := repomanager.NewPostgresRepositoryManager()
	require.NoError(t, err)

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewImportService(db, rm, &stubFetcher{}, logger), mock, db
}

func TestResolveColumns_AliasVariants(t *testing.T) {
	tests := []struct {
		name      string
		header    []string
		wantFirst int
		wantLast  int
	}{
		{name: "canonical", header: []string{"First Name", "Last Name"}, wantFirst: 0, wantLast: 1},
		{name: "short forms", header: []string{"first", "last"}, wantFirst: 0, wantLast: 1},
		{name: "abbreviations", header: []string{"FName", "LName"}, wantFirst: 0, wantLast: 1},
		{name: "surname", header: []string{"first-name", "Surname"}, wantFirst: 0, wantLast: 1},
		{name: "family name with noise columns", header: []string{"Email", "Family Name", "FIRSTNAME"}, wantFirst: 2, wantLast: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last, err := resolveColumns(tt.header)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFirst, first)
			assert.Equal(t, tt.wantLast, last)
		})
	}
}

func TestResolveColumns_MissingReportsHeader(t *testing.T) {
	_, _, err := resolveColumns([]string{"Email", "Phone"})
	require.ErrorIs(t, err, common.ErrMissingColumns)
	assert.Contains(t, err.Error(), "Email, Phone")
}

func TestImportRows_FirstWinsOnDuplicates(t *testing.T) {
	svc, mock, db := newImportWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+members`).
		WithArgs("A B").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT\s+INTO\s+members`).
		WithArgs("A B").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectExec(`INSERT\s+INTO\s+members`).
		WithArgs("C D").
		WillReturnResult(sqlmock.NewResult(2, 1))

	rows := [][]string{
		{"First Name", "Last Name"},
		{"A", "B"},
		{"A", "B"},
		{"C", "D"},
	}

	got, err := svc.ImportRows(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"A B", "C D"}, got.Added)
	assert.Equal(t, []string{"A B"}, got.Skipped)
}

func TestImportRows_SkipsBlankCells(t *testing.T) {
	svc, mock, db := newImportWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+members`).
		WithArgs("C D").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rows := [][]string{
		{"first", "last"},
		{"  ", "B"},
		{"A", ""},
		{"C", "D"},
	}

	got, err := svc.ImportRows(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"C D"}, got.Added)
	assert.Empty(t, got.Skipped)
}

func TestImportRows_TrimsCellsAndShortRows(t *testing.T) {
	svc, mock, db := newImportWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+members`).
		WithArgs("A B").
		WillReturnResult(sqlmock.NewResult(1, 1))

	rows := [][]string{
		{"first", "last"},
		{" A ", " B "},
		{"only-first"}, // row shorter than the last-name column
	}

	got, err := svc.ImportRows(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"A B"}, got.Added)
}

func TestImportRows_EmptyTable(t *testing.T) {
	svc, _, db := newImportWithMock(t)
	defer db.Close()

	_, err := svc.ImportRows(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrMissingColumns)
}

func TestImportFile_RejectsUnknownExtension(t *testing.T) {
	svc, _, db := newImportWithMock(t)
	defer db.Close()

	_, err := svc.ImportFile(context.Background(), strings.NewReader("x"), "roster.pdf")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestImportFile_CSV(t *testing.T) {
	svc, mock, db := newImportWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+members`).
		WithArgs("A B").
		WillReturnResult(sqlmock.NewResult(1, 1))

	body := "First Name,Last Name\nA,B\n"
	got, err := svc.ImportFile(context.Background(), strings.NewReader(body), "roster.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"A B"}, got.Added)
}

func TestImportFile_XLSX(t *testing.T) {
	svc, mock, db := newImportWithMock(t)
	defer db.Close()

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]string{"First Name", "Last Name"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]string{"A", "B"}))

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	mock.ExpectExec(`INSERT\s+INTO\s+members`).
		WithArgs("A B").
		WillReturnResult(sqlmock.NewResult(1, 1))

	got, err := svc.ImportFile(context.Background(), &buf, "roster.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"A B"}, got.Added)
}

func TestImportFromObjectStore_UsesFetcher(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rm, err := repomanager.NewPostgresRepositoryManager()
	require.NoError(t, err)

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	fetcher := &stubFetcher{body: io.NopCloser(strings.NewReader("first,last\nA,B\n"))}
	svc := NewImportService(db, rm, fetcher, logger)

	mock.ExpectExec(`INSERT\s+INTO\s+members`).
		WithArgs("A B").
		WillReturnResult(sqlmock.NewResult(1, 1))

	got, err := svc.ImportFromObjectStore(context.Background(), "uploads/2026/roster.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"A B"}, got.Added)
}
