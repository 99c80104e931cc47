package extractor

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelExtractor produces one content unit per row of the first sheet,
// joining the row's cell values with a single space.
type ExcelExtractor struct{}

func (e *ExcelExtractor) Extract(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	units := make([]string, 0, len(rows))
	for _, row := range rows {
		units = append(units, strings.Join(row, " "))
	}

	return dropEmpty(units), nil
}
