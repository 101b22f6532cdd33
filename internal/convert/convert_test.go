package convert

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arjoma/scheinfirmen-at/internal/domain/models"
)

func strPtr(s string) *string { return &s }

func testBatch() *models.Batch {
	return &models.Batch{
		Records: []models.Record{
			{
				Name:            "Alpha Bau & Co GmbH",
				Anschrift:       "1100 Wien, Teststraße 1",
				Veroeffentlicht: "2026-02-10",
				Rechtskraeftig:  "2026-02-01",
				Seit:            strPtr("2026-01-15"),
				Fbnr:            strPtr("123456a"),
				UID:             strPtr("ATU12345678"),
				Kennziffer:      strPtr("R123A4567"),
			},
			{
				// Optional fields entirely absent.
				Name:            "Beta, Gamma KG",
				Anschrift:       "4020 Linz, Hafenweg 2",
				Veroeffentlicht: "2026-02-09",
				Rechtskraeftig:  "2026-02-02",
			},
		},
		StandDatum:  "2026-02-10",
		StandZeit:   "09:51:32",
		RawRowCount: 2,
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "scheinfirmen.csv")
	n, err := WriteCSV(testBatch(), path)
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows written, got %d", n)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("missing UTF-8 BOM")
	}

	lines := strings.Split(strings.TrimRight(string(raw[3:]), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected comment + header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "# Stand: 2026-02-10 09:51:32" {
		t.Fatalf("unexpected comment line: %q", lines[0])
	}
	if lines[1] != "Name,Anschrift,Veröffentlichung,Rechtskräftig,Seit,Geburts-Datum,Firmenbuch-Nr,UID-Nr.,Kennziffer des UR" {
		t.Fatalf("unexpected header line: %q", lines[1])
	}
	// Comma in the name forces quoting; absent optional fields are empty.
	if lines[3] != `"Beta, Gamma KG","4020 Linz, Hafenweg 2",2026-02-09,2026-02-02,,,,,` {
		t.Fatalf("unexpected data row: %q", lines[3])
	}
}

func TestWriteJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheinfirmen.jsonl")
	n, err := WriteJSONL(testBatch(), path)
	if err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows written, got %d", n)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("JSONL must not carry a BOM")
	}

	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected metadata + 2 records, got %d lines", len(lines))
	}

	var meta jsonMetadata
	if err := json.Unmarshal([]byte(lines[0]), &meta); err != nil {
		t.Fatalf("metadata line: %v", err)
	}
	if meta.Metadata.Stand != "2026-02-10T09:51:32" {
		t.Fatalf("unexpected stand: %q", meta.Metadata.Stand)
	}
	if meta.Metadata.Count != 2 {
		t.Fatalf("unexpected count: %d", meta.Metadata.Count)
	}
	if meta.Schema == "" || meta.Metadata.Source == "" {
		t.Fatal("metadata must carry schema reference and source URL")
	}

	// Ampersand stays literal: HTML escaping is off.
	if !strings.Contains(lines[1], `"Alpha Bau & Co GmbH"`) {
		t.Fatalf("name must not be HTML-escaped: %q", lines[1])
	}

	// Absent optional fields are explicit nulls, never omitted keys.
	var second map[string]any
	if err := json.Unmarshal([]byte(lines[2]), &second); err != nil {
		t.Fatalf("record line: %v", err)
	}
	for _, key := range []string{"seit", "geburtsdatum", "fbnr", "uid", "kennziffer"} {
		v, present := second[key]
		if !present {
			t.Fatalf("key %q missing, expected explicit null", key)
		}
		if v != nil {
			t.Fatalf("key %q: expected null, got %v", key, v)
		}
	}
}

func TestWriteXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheinfirmen.xml")
	n, err := WriteXML(testBatch(), path)
	if err != nil {
		t.Fatalf("WriteXML: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 records written, got %d", n)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	doc := string(raw)

	if !strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Fatal("missing XML declaration")
	}
	for _, want := range []string{
		`stand="2026-02-10"`,
		`zeit="09:51:32"`,
		`anzahl="2"`,
		`xsi:noNamespaceSchemaLocation=`,
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("root element missing %s", want)
		}
	}

	// Name is element text, escaped per XML rules.
	if !strings.Contains(doc, "Alpha Bau &amp; Co GmbH</scheinfirma>") {
		t.Fatal("name must be element text")
	}

	// Absent optional fields: attribute omitted, not written empty.
	for _, line := range strings.Split(doc, "\n") {
		if !strings.Contains(line, "Beta, Gamma KG") {
			continue
		}
		for _, attr := range []string{"seit=", "geburtsdatum=", "fbnr=", "uid=", "kennziffer="} {
			if strings.Contains(line, attr) {
				t.Fatalf("absent field must be omitted, found %s in %q", attr, line)
			}
		}
		return
	}
	t.Fatal("second record not found in output")
}

func TestWriters_Idempotent(t *testing.T) {
	dir := t.TempDir()
	batch := testBatch()

	writers := map[string]func(*models.Batch, string) (int, error){
		"csv":   WriteCSV,
		"jsonl": WriteJSONL,
		"xml":   WriteXML,
	}
	for name, write := range writers {
		t.Run(name, func(t *testing.T) {
			first := filepath.Join(dir, "a."+name)
			second := filepath.Join(dir, "b."+name)
			if _, err := write(batch, first); err != nil {
				t.Fatalf("first write: %v", err)
			}
			if _, err := write(batch, second); err != nil {
				t.Fatalf("second write: %v", err)
			}
			a, _ := os.ReadFile(first)
			b, _ := os.ReadFile(second)
			if !bytes.Equal(a, b) {
				t.Fatal("repeated serialization must be byte-identical")
			}
		})
	}
}

func TestWriteEmptyBatch(t *testing.T) {
	batch := &models.Batch{StandDatum: "2026-02-10", StandZeit: "09:51:32"}
	dir := t.TempDir()

	if n, err := WriteCSV(batch, filepath.Join(dir, "e.csv")); err != nil || n != 0 {
		t.Fatalf("csv: n=%d err=%v", n, err)
	}
	if n, err := WriteJSONL(batch, filepath.Join(dir, "e.jsonl")); err != nil || n != 0 {
		t.Fatalf("jsonl: n=%d err=%v", n, err)
	}
	if n, err := WriteXML(batch, filepath.Join(dir, "e.xml")); err != nil || n != 0 {
		t.Fatalf("xml: n=%d err=%v", n, err)
	}
}
