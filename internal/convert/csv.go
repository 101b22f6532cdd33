package convert

import (
	"encoding/csv"
	"fmt"

	"github.com/arjoma/scheinfirmen-at/internal/domain/models"
)

// UTF8BOM keeps legacy spreadsheet tools (Excel) from misreading the file as
// a locale 8-bit encoding. The verifier strips this exact prefix when reading
// the CSV artifact back.
const UTF8BOM = "\uFEFF"

// WriteCSV writes the batch as a UTF-8 CSV file with BOM.
//
// Layout:
//   - line 1: "# Stand: YYYY-MM-DD HH:MM:SS" comment
//   - line 2: German header row
//   - lines 3+: one record per line, comma-delimited, quoted only when needed;
//     absent optional fields become empty strings
//
// Returns the number of data rows written, always len(batch.Records).
func WriteCSV(batch *models.Batch, path string) (int, error) {
	f, err := createOutput(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintf(f, "%s# Stand: %s %s\n", UTF8BOM, batch.StandDatum, batch.StandZeit); err != nil {
		return 0, fmt.Errorf("write comment: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeaders); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(csvHeaders))
	for _, rec := range batch.Records {
		for i, v := range recordValues(rec) {
			if v == nil {
				row[i] = ""
			} else {
				row[i] = *v
			}
		}
		if err := w.Write(row); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", path, err)
	}

	return len(batch.Records), nil
}
