package parser

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/arjoma/scheinfirmen-at/internal/domain/models"
)

// expectedHeaders enforces strict column ordering for the BMF Scheinfirmen
// extract. If the header doesn't match EXACTLY (order + count), parsing must fail.
var expectedHeaders = []string{
	"Name",
	"Anschrift",
	"Veröffentlichung",
	"Rechtskraft Bescheid",
	"Zeitpunkt als Scheinunternehmen",
	"Geburts-Datum",
	"Firmenbuch-Nr",
	"UID-Nr.",
	"Kennziffer des UR",
}

// reStand matches the footer line carrying the reporting timestamp,
// e.g. "Stand:  10.02.2026 09:51:32".
var reStand = regexp.MustCompile(`^Stand:\s+(\d{2}\.\d{2}\.\d{4})\s+(\d{2}:\d{2}:\d{2})\s*$`)

// FormatError reports a structural problem in the raw extract: a malformed
// header, a wrong field count on a data line, an unparsable date, or a
// missing Stand footer. Line is 1-based; 0 means the problem is not tied to
// a single line.
type FormatError struct {
	Line    int
	Message string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func formatErrf(line int, format string, args ...any) *FormatError {
	return &FormatError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// Parse converts the raw BMF extract into a Batch.
//
// Steps:
//  1. Decode from ISO-8859-1 (the BMF serves Latin-1, not UTF-8).
//  2. Normalize line endings (CRLF/CR -> LF).
//  3. Validate the header line against expectedHeaders.
//  4. Split each data row on '~', clean fields, convert dates to ISO 8601.
//  5. Extract the "Stand:" reporting timestamp from the footer.
//
// Parsing is all-or-nothing: the first offending line aborts the whole parse
// with a *FormatError; nothing already parsed is returned.
func Parse(raw []byte) (*models.Batch, error) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		// Every byte maps to a character in Latin-1; this is unreachable in
		// practice but the decoder API still returns an error.
		return nil, formatErrf(0, "decode ISO-8859-1: %v", err)
	}

	text := strings.ReplaceAll(string(decoded), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")

	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, formatErrf(0, "empty input: no header line found")
	}

	if err := checkHeader(lines[0]); err != nil {
		return nil, err
	}

	batch := &models.Batch{}
	standFound := false

	for i, line := range lines[1:] {
		lineNo := i + 2 // 1-based, header was line 1
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}

		// Footer line with the reporting timestamp is not a data row.
		if m := reStand.FindStringSubmatch(stripped); m != nil {
			d, err := convertDate(m[1])
			if err != nil {
				return nil, formatErrf(lineNo, "invalid Stand date: %v", err)
			}
			batch.StandDatum = d
			batch.StandZeit = m[2]
			standFound = true
			continue
		}

		rec, err := parseRow(lineNo, line)
		if err != nil {
			return nil, err
		}
		batch.Records = append(batch.Records, rec)
	}

	if !standFound {
		return nil, formatErrf(0, "Stand: timestamp line not found in input")
	}

	batch.RawRowCount = len(batch.Records)
	return batch, nil
}

// checkHeader compares the first line against expectedHeaders, field by field
// after trimming surrounding whitespace. Any deviation in count, spelling or
// order fails the parse.
func checkHeader(line string) error {
	actual := strings.Split(line, "~")
	for i := range actual {
		actual[i] = strings.TrimSpace(actual[i])
	}
	if len(actual) != len(expectedHeaders) {
		return formatErrf(1, "unexpected headers: expected %q, got %q", expectedHeaders, actual)
	}
	for i, h := range actual {
		if h != expectedHeaders[i] {
			return formatErrf(1, "unexpected headers: expected %q, got %q", expectedHeaders, actual)
		}
	}
	return nil
}

// parseRow converts one data line (1-based lineNo) into a Record.
//
// The BMF format emits a trailing tilde on rows with an empty Kennziffer,
// producing 10 parts when split; the trailing empty part is dropped. Any
// other field count fails the parse.
func parseRow(lineNo int, line string) (models.Record, error) {
	var rec models.Record

	fields := strings.Split(line, "~")
	if len(fields) == 10 && fields[9] == "" {
		fields = fields[:9]
	}
	if len(fields) != 9 {
		return rec, formatErrf(lineNo, "expected 9 fields, got %d: %q", len(fields), line)
	}

	veroeffentlicht, err := convertDate(cleanField(fields[2]))
	if err != nil {
		return rec, formatErrf(lineNo, "Veröffentlichung: %v", err)
	}
	rechtskraeftig, err := convertDate(cleanField(fields[3]))
	if err != nil {
		return rec, formatErrf(lineNo, "Rechtskraft Bescheid: %v", err)
	}
	seit, err := optDate(fields[4])
	if err != nil {
		return rec, formatErrf(lineNo, "Zeitpunkt als Scheinunternehmen: %v", err)
	}
	geburtsdatum, err := optDate(fields[5])
	if err != nil {
		return rec, formatErrf(lineNo, "Geburts-Datum: %v", err)
	}

	rec = models.Record{
		Name:            cleanField(fields[0]),
		Anschrift:       cleanField(fields[1]),
		Veroeffentlicht: veroeffentlicht,
		Rechtskraeftig:  rechtskraeftig,
		Seit:            seit,
		Geburtsdatum:    geburtsdatum,
		Fbnr:            optField(fields[6]),
		UID:             optField(fields[7]),
		Kennziffer:      cleanKennziffer(fields[8]),
	}
	return rec, nil
}

// convertDate converts DD.MM.YYYY to YYYY-MM-DD. time.Parse rejects day/month
// overflow (e.g. 32.01.2026), so impossible dates fail instead of clamping.
func convertDate(s string) (string, error) {
	d, err := time.Parse("02.01.2006", strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date (expected DD.MM.YYYY): %q", s)
	}
	return d.Format("2006-01-02"), nil
}

// cleanField unescapes HTML entities and strips surrounding whitespace.
func cleanField(v string) string {
	return strings.TrimSpace(html.UnescapeString(v))
}

// optField maps an empty cleaned value to nil.
func optField(v string) *string {
	cleaned := cleanField(v)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// optDate is optField plus date conversion for present values.
func optDate(v string) (*string, error) {
	cleaned := cleanField(v)
	if cleaned == "" {
		return nil, nil
	}
	d, err := convertDate(cleaned)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// cleanKennziffer additionally strips one layer of surrounding literal quotes:
// the source wraps some Kennziffer values in escaped quotes which survive the
// entity unescape as plain '"' characters.
func cleanKennziffer(v string) *string {
	cleaned := strings.TrimSpace(html.UnescapeString(v))
	cleaned = strings.TrimSpace(strings.Trim(cleaned, `"`))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
