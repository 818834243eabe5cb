package services

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/clubops/pointsledger/internal/common"
	"github.com/clubops/pointsledger/internal/logging"
	"github.com/clubops/pointsledger/internal/server/repositories/repomanager"
	"github.com/xuri/excelize/v2"
)

// TableFetcher retrieves a staged import file by storage key. The
// S3-compatible object store implements it; tests substitute a stub.
type TableFetcher interface {
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)
}

type ImportService struct {
	db      *sql.DB
	rm      repomanager.RepositoryManager
	fetcher TableFetcher
	logger  logging.Logger
}

func NewImportService(db *sql.DB, rm repomanager.RepositoryManager, fetcher TableFetcher, logger logging.Logger) *ImportService {
	return &ImportService{
		db:      db,
		rm:      rm,
		fetcher: fetcher,
		logger:  logger.With("module", "import"),
	}
}

// ImportResult reports the outcome of one import batch. Both slices
// preserve row encounter order.
type ImportResult struct {
	Added   []string
	Skipped []string
}

// Accepted header variants for the two logical columns. Cells are
// normalized before matching, so "First name", "first-name" and "FNAME"
// all resolve.
var (
	firstNameAliases = map[string]struct{}{
		"firstname": {}, "first": {}, "fname": {},
	}
	lastNameAliases = map[string]struct{}{
		"lastname": {}, "last": {}, "lname": {}, "surname": {}, "familyname": {},
	}
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// normalizeHeaderCell lower-cases a header cell and strips every
// non-alphanumeric character.
func normalizeHeaderCell(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}

// resolveColumns locates the first-name and last-name columns in the
// header row. The returned error carries the detected header verbatim for
// diagnostics.
func resolveColumns(header []string) (firstIdx, lastIdx int, err error) {
	firstIdx, lastIdx = -1, -1

	for i, cell := range header {
		key := normalizeHeaderCell(cell)
		if _, ok := firstNameAliases[key]; ok && firstIdx < 0 {
			firstIdx = i
		}
		if _, ok := lastNameAliases[key]; ok && lastIdx < 0 {
			lastIdx = i
		}
	}

	if firstIdx < 0 || lastIdx < 0 {
		return 0, 0, fmt.Errorf("%w: detected header: %s",
			common.ErrMissingColumns, strings.Join(header, ", "))
	}

	return firstIdx, lastIdx, nil
}

// ImportRows runs the bulk-import pipeline over an already-decoded table.
// The first row is the header; data rows are processed in source order.
// A row is skipped silently when either name cell is blank after trimming;
// a composed name that already exists (including one created earlier in
// the same batch: first occurrence wins) is recorded in Skipped. New
// members start at 0 points with an empty history.
func (s *ImportService) ImportRows(ctx context.Context, rows [][]string) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: table is empty", common.ErrMissingColumns)
	}

	firstIdx, lastIdx, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	repo := s.rm.Members(s.db)
	result := &ImportResult{}

	for _, row := range rows[1:] {
		var first, last string
		if firstIdx < len(row) {
			first = strings.TrimSpace(row[firstIdx])
		}
		if lastIdx < len(row) {
			last = strings.TrimSpace(row[lastIdx])
		}
		if first == "" || last == "" {
			continue
		}

		name, err := common.NormalizeName(first + " " + last)
		if err != nil {
			// A composed name violating the length rule is dropped like a
			// blank row rather than aborting the whole batch.
			continue
		}

		_, err = repo.Create(ctx, name)
		switch {
		case err == nil:
			result.Added = append(result.Added, name)
		case errors.Is(err, common.ErrAlreadyExists):
			result.Skipped = append(result.Skipped, name)
		default:
			return nil, err
		}
	}

	s.logger.Info(ctx, "import finished", "added", len(result.Added), "skipped", len(result.Skipped))
	return result, nil
}

// ImportFile decodes an uploaded spreadsheet and runs the pipeline over
// it. File type is decided by extension: .xlsx and .csv are accepted,
// anything else fails with common.ErrInvalidInput before parsing.
func (s *ImportService) ImportFile(ctx context.Context, r io.Reader, filename string) (*ImportResult, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = decodeXLSX(r)
	case ".csv":
		rows, err = decodeCSV(r)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", common.ErrInvalidInput, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	return s.ImportRows(ctx, rows)
}

// ImportFromObjectStore fetches a staged upload by storage key and imports
// it. The key keeps the original filename as its last segment, which
// decides the decoder.
func (s *ImportService) ImportFromObjectStore(ctx context.Context, key string) (*ImportResult, error) {
	body, err := s.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetching import file: %w", err)
	}
	defer body.Close()

	return s.ImportFile(ctx, body, key)
}

// decodeXLSX reads the first sheet of a workbook into string rows.
func decodeXLSX(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable xlsx file", common.ErrInvalidInput)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", common.ErrInvalidInput)
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet: %w", err)
	}
	return rows, nil
}

func decodeCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable csv file", common.ErrInvalidInput)
	}
	return rows, nil
}
