// Package convert serializes a parsed batch into the three published output
// formats: CSV (BOM + comment + German header), JSONL (metadata line + one
// compact object per record) and XML (attributes, name as element text).
//
// The three formats deliberately encode absent optional fields differently —
// empty string in CSV, explicit null in JSONL, omitted attribute in XML.
// Each convention is what a well-formed consumer of that format expects, and
// the verify package reads the artifacts back using exactly these rules.
package convert

import (
	"os"
	"path/filepath"

	"github.com/arjoma/scheinfirmen-at/internal/domain/models"
)

// csvHeaders are the human-readable German column names of the CSV output.
var csvHeaders = []string{
	"Name",
	"Anschrift",
	"Veröffentlichung",
	"Rechtskräftig",
	"Seit",
	"Geburts-Datum",
	"Firmenbuch-Nr",
	"UID-Nr.",
	"Kennziffer des UR",
}

// recordValues returns the record's fields in output order, nil for absent
// optional fields. All serializers share this positional table.
func recordValues(rec models.Record) []*string {
	return []*string{
		&rec.Name,
		&rec.Anschrift,
		&rec.Veroeffentlicht,
		&rec.Rechtskraeftig,
		rec.Seit,
		rec.Geburtsdatum,
		rec.Fbnr,
		rec.UID,
		rec.Kennziffer,
	}
}

// createOutput makes the parent directory (recursively, if missing) and opens
// the destination file for writing.
func createOutput(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
