package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// TestCase is one explicit row of a dataset's test.csv.
type TestCase struct {
	Text  string
	Label string
}

type CSVReader struct {
	filename string
}

func NewCSVReader(filename string) *CSVReader {
	return &CSVReader{filename: filename}
}

// LoadTestCases reads two-column rows; rows of any other width are skipped.
// A missing file yields no cases.
func (cr *CSVReader) LoadTestCases() ([]TestCase, error) {
	file, err := os.Open(cr.filename)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("no test cases found", "path", cr.filename)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open test cases: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var cases []TestCase
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", cr.filename, err)
		}
		if len(record) != 2 {
			continue
		}
		cases = append(cases, TestCase{
			Text:  strings.TrimSpace(record[0]),
			Label: strings.TrimSpace(record[1]),
		})
	}

	return cases, nil
}
