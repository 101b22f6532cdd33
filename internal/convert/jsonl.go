package convert

import (
	"encoding/json"
	"fmt"

	"github.com/arjoma/scheinfirmen-at/internal/domain/models"
	"github.com/arjoma/scheinfirmen-at/internal/download"
	"github.com/arjoma/scheinfirmen-at/internal/schema"
)

// jsonRecord fixes the key order of one JSONL line. Absent optional fields
// serialize as explicit null, never omitted, so every line carries all 9 keys.
type jsonRecord struct {
	Name            string  `json:"name"`
	Anschrift       string  `json:"anschrift"`
	Veroeffentlicht string  `json:"veroeffentlicht"`
	Rechtskraeftig  string  `json:"rechtskraeftig"`
	Seit            *string `json:"seit"`
	Geburtsdatum    *string `json:"geburtsdatum"`
	Fbnr            *string `json:"fbnr"`
	UID             *string `json:"uid"`
	Kennziffer      *string `json:"kennziffer"`
}

type jsonMetadata struct {
	Schema   string       `json:"$schema"`
	Metadata jsonMetaBody `json:"_metadata"`
}

type jsonMetaBody struct {
	Stand  string `json:"stand"` // date and time joined with "T"
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// WriteJSONL writes the batch as UTF-8 JSON Lines (no BOM).
//
// Layout:
//   - line 1: metadata object with schema reference, reporting timestamp,
//     source URL and record count
//   - lines 2+: exactly one compact object per record
//
// Returns the number of data rows written, always len(batch.Records).
func WriteJSONL(batch *models.Batch, path string) (int, error) {
	f, err := createOutput(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)

	meta := jsonMetadata{
		Schema: schema.JSONSchemaURI,
		Metadata: jsonMetaBody{
			Stand:  batch.StandDatum + "T" + batch.StandZeit,
			Source: download.BMFURL,
			Count:  batch.RawRowCount,
		},
	}
	if err := enc.Encode(meta); err != nil {
		return 0, fmt.Errorf("write metadata: %w", err)
	}

	for _, rec := range batch.Records {
		obj := jsonRecord{
			Name:            rec.Name,
			Anschrift:       rec.Anschrift,
			Veroeffentlicht: rec.Veroeffentlicht,
			Rechtskraeftig:  rec.Rechtskraeftig,
			Seit:            rec.Seit,
			Geburtsdatum:    rec.Geburtsdatum,
			Fbnr:            rec.Fbnr,
			UID:             rec.UID,
			Kennziffer:      rec.Kennziffer,
		}
		if err := enc.Encode(obj); err != nil {
			return 0, fmt.Errorf("write record: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", path, err)
	}

	return len(batch.Records), nil
}
