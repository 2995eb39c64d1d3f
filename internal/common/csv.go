// Package common provides CSV export and import of expenses.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"

	"github.com/gocarina/gocsv"
)

// DefaultDelimiter separates CSV fields unless overridden.
const DefaultDelimiter = ','

// ImportRow is one line of an expense import file. Amount stays textual so
// that a malformed row can be reported rather than failing the whole file.
type ImportRow struct {
	UserID   string `csv:"user_id"`
	Amount   string `csv:"amount"`
	Category string `csv:"category"`
	RawText  string `csv:"raw_text"`
	Date     string `csv:"date"`
}

// ReadCSVFile reads CSV data into a slice of structs using gocsv.
// TCSVRow is the struct type that maps to the CSV columns.
func ReadCSVFile[TCSVRow any](filePath string, logger logging.Logger) ([]TCSVRow, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	logger.WithField("file", filePath).Debug("Reading CSV file")

	file, err := os.Open(filePath) // #nosec G304 -- path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	var rows []TCSVRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	logger.WithField(logging.FieldCount, len(rows)).Debug("Successfully read CSV data")
	return rows, nil
}

// WriteExpensesCSV writes expenses with a header row to w.
func WriteExpensesCSV(w io.Writer, expenses []models.Expense, delim rune) error {
	if expenses == nil {
		return fmt.Errorf("cannot write nil expenses to CSV")
	}
	if delim == 0 {
		delim = DefaultDelimiter
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delim
	if err := gocsv.MarshalCSV(expenses, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteExpensesToFile writes expenses to csvFile, creating parent
// directories as needed.
func WriteExpensesToFile(expenses []models.Expense, csvFile string, delim rune, logger logging.Logger) error {
	if logger == nil {
		logger = logging.GetLogger()
	}

	if err := os.MkdirAll(filepath.Dir(csvFile), 0o750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	file, err := os.Create(csvFile) // #nosec G304 -- path comes from the operator
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteExpensesCSV(file, expenses, delim); err != nil {
		return err
	}

	logger.WithFields(
		logging.Field{Key: "file", Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(expenses)},
	).Info("Successfully wrote expenses to CSV file")
	return nil
}
