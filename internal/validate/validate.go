package validate

import (
	"fmt"
	"regexp"

	"github.com/arjoma/scheinfirmen-at/internal/domain/models"
)

var (
	reISODate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reUID        = regexp.MustCompile(`^ATU\d{8}$`)
	reFirmenbuch = regexp.MustCompile(`^\d{5,6}[A-Za-z]$`)

	// DefaultKennzifferPattern is the best guess for the Unternehmensregister
	// reference code. BMF data is known to deviate from it, which is why a
	// mismatch is only ever a warning and the pattern can be overridden.
	DefaultKennzifferPattern = regexp.MustCompile(`^R\d{3}[A-Z]\d{3,4}[A-Z0-9]?$`)
)

// Finding is a single validation issue, fatal or advisory.
type Finding struct {
	Row     int // 1-based row number; 0 for batch-level findings
	Field   string
	Value   *string
	Message string
}

func (f Finding) String() string {
	value := "<nil>"
	if f.Value != nil {
		value = fmt.Sprintf("%q", *f.Value)
	}
	return fmt.Sprintf("row %d [%s]: %s (value=%s)", f.Row, f.Field, f.Message, value)
}

// Report collects all findings of one validation pass. Errors block the
// pipeline; warnings are informational only.
type Report struct {
	Errors   []Finding
	Warnings []Finding
}

// OK reports whether the batch may proceed to serialization.
func (r Report) OK() bool { return len(r.Errors) == 0 }

// Options tunes the validation pass.
type Options struct {
	// MinRows is the floor guarding against a truncated or empty fetch.
	MinRows int
	// KennzifferPattern overrides DefaultKennzifferPattern when non-nil.
	KennzifferPattern *regexp.Regexp
}

// Validate checks every record of the batch against the domain rules and
// returns all findings in one pass. It never fails and never short-circuits:
// the report always covers the whole batch.
func Validate(batch *models.Batch, opts Options) Report {
	var report Report

	kennziffer := opts.KennzifferPattern
	if kennziffer == nil {
		kennziffer = DefaultKennzifferPattern
	}

	if len(batch.Records) < opts.MinRows {
		count := fmt.Sprintf("%d", len(batch.Records))
		report.Errors = append(report.Errors, Finding{
			Row:     0,
			Field:   "row_count",
			Value:   &count,
			Message: fmt.Sprintf("too few records: %d < %d", len(batch.Records), opts.MinRows),
		})
	}

	for i, rec := range batch.Records {
		row := i + 1
		errs, warns := validateRecord(row, rec, kennziffer)
		report.Errors = append(report.Errors, errs...)
		report.Warnings = append(report.Warnings, warns...)
	}

	return report
}

func validateRecord(row int, rec models.Record, kennziffer *regexp.Regexp) (errs, warns []Finding) {
	err := func(field string, value *string, msg string) {
		errs = append(errs, Finding{Row: row, Field: field, Value: value, Message: msg})
	}

	if rec.Name == "" {
		err("name", &rec.Name, "Name must not be empty")
	}
	if rec.Anschrift == "" {
		err("anschrift", &rec.Anschrift, "Anschrift must not be empty")
	}

	// Required dates: the parser already converted them, but any upstream
	// format drift must still be caught here before serialization.
	requiredDates := []struct {
		field string
		value string
	}{
		{"veroeffentlicht", rec.Veroeffentlicht},
		{"rechtskraeftig", rec.Rechtskraeftig},
	}
	for _, d := range requiredDates {
		if !reISODate.MatchString(d.value) {
			v := d.value
			err(d.field, &v, fmt.Sprintf("expected ISO date YYYY-MM-DD, got %q", d.value))
		}
	}

	optionalDates := []struct {
		field string
		value *string
	}{
		{"seit", rec.Seit},
		{"geburtsdatum", rec.Geburtsdatum},
	}
	for _, d := range optionalDates {
		if d.value != nil && !reISODate.MatchString(*d.value) {
			err(d.field, d.value, fmt.Sprintf("expected ISO date YYYY-MM-DD, got %q", *d.value))
		}
	}

	if rec.UID != nil && !reUID.MatchString(*rec.UID) {
		err("uid", rec.UID, "expected format ATU followed by 8 digits")
	}
	if rec.Fbnr != nil && !reFirmenbuch.MatchString(*rec.Fbnr) {
		err("fbnr", rec.Fbnr, "expected 5-6 digits followed by a letter")
	}

	// Kennziffer mismatches are a known BMF data quality issue; warn only.
	if rec.Kennziffer != nil && !kennziffer.MatchString(*rec.Kennziffer) {
		warns = append(warns, Finding{
			Row:     row,
			Field:   "kennziffer",
			Value:   rec.Kennziffer,
			Message: "unexpected Kennziffer format (expected R + digits + letter pattern)",
		})
	}

	return errs, warns
}
