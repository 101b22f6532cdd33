// Package verify re-reads the produced artifacts and asserts they encode the
// same record set. It shares no parsing code with the serializers: each
// format is read back independently with that format's own conventions.
package verify

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/arjoma/scheinfirmen-at/internal/convert"
)

// Paths names the three artifacts under verification.
type Paths struct {
	CSV   string
	JSONL string
	XML   string
}

// formatNames holds the per-format first/last record names for the spot-check.
type formatNames struct {
	count int
	first string
	last  string
}

// Verify re-reads all three artifacts and returns every inconsistency found
// as an error string; an empty slice means pass. All checks always run — the
// verifier never aborts early.
//
// Checks:
//  1. per-format data record count == expectedCount
//  2. spot-check: first and last record names agree across formats (skipped
//     unless every format yielded at least 2 records)
func Verify(paths Paths, expectedCount int) []string {
	var errs []string

	formats := []struct {
		label string
		read  func(string) (formatNames, error)
		path  string
	}{
		{"CSV", readCSV, paths.CSV},
		{"JSONL", readJSONL, paths.JSONL},
		{"XML", readXML, paths.XML},
	}

	results := make([]formatNames, len(formats))
	readable := true
	for i, f := range formats {
		names, err := f.read(f.path)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", f.label, err))
			readable = false
			continue
		}
		results[i] = names
		if names.count != expectedCount {
			errs = append(errs, fmt.Sprintf("%s: expected %d records, found %d", f.label, expectedCount, names.count))
		}
	}

	// Spot-check needs at least 2 records per format to distinguish
	// first from last.
	if readable && results[0].count >= 2 && results[1].count >= 2 && results[2].count >= 2 {
		checks := []struct {
			label string
			pick  func(formatNames) string
		}{
			{"first", func(n formatNames) string { return n.first }},
			{"last", func(n formatNames) string { return n.last }},
		}
		for _, c := range checks {
			csvName, jsonlName, xmlName := c.pick(results[0]), c.pick(results[1]), c.pick(results[2])
			if csvName != jsonlName || csvName != xmlName {
				errs = append(errs, fmt.Sprintf(
					"%s record name mismatch across formats: CSV=%q JSONL=%q XML=%q",
					c.label, csvName, jsonlName, xmlName))
			}
		}
	}

	return errs
}

// readCSV counts data rows of the CSV artifact, skipping the BOM, '#' comment
// lines and the header row.
func readCSV(path string) (formatNames, error) {
	var out formatNames

	raw, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	text := strings.TrimPrefix(string(raw), convert.UTF8BOM)

	var dataLines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		dataLines = append(dataLines, line)
	}

	r := csv.NewReader(strings.NewReader(strings.Join(dataLines, "\n")))
	rows, err := r.ReadAll()
	if err != nil {
		return out, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return out, fmt.Errorf("missing header row")
	}

	nameIdx := -1
	for i, h := range rows[0] {
		if h == "Name" {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return out, fmt.Errorf("header row has no Name column")
	}

	data := rows[1:]
	out.count = len(data)
	if len(data) > 0 {
		out.first = data[0][nameIdx]
		out.last = data[len(data)-1][nameIdx]
	}
	return out, nil
}

// readJSONL counts record lines of the JSONL artifact, skipping blank lines
// and the metadata object (identified by its _metadata key).
func readJSONL(path string) (formatNames, error) {
	var out formatNames

	f, err := os.Open(path)
	if err != nil {
		return out, err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return out, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if _, isMeta := obj["_metadata"]; isMeta {
			continue
		}
		name, _ := obj["name"].(string)
		if out.count == 0 {
			out.first = name
		}
		out.last = name
		out.count++
	}
	if err := scanner.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// readXML counts <scheinfirma> elements of the XML artifact; the record name
// is the element's text content.
func readXML(path string) (formatNames, error) {
	var out formatNames

	raw, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}

	var doc struct {
		Records []struct {
			Name string `xml:",chardata"`
		} `xml:"scheinfirma"`
	}
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return out, fmt.Errorf("parse xml: %w", err)
	}

	out.count = len(doc.Records)
	if out.count > 0 {
		out.first = strings.TrimSpace(doc.Records[0].Name)
		out.last = strings.TrimSpace(doc.Records[out.count-1].Name)
	}
	return out, nil
}
