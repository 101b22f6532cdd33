package models

// Record represents a single entry of the BMF Scheinfirmen list: a company
// or a natural person that has been designated a shell enterprise by decree.
//
// Required dates are stored as ISO 8601 strings (YYYY-MM-DD) after the parser
// converted them from the source's DD.MM.YYYY form. Optional fields are nil
// when the source cell was empty; there are no sentinel strings.
//
// Column order in the source file:
//  1. Name
//  2. Anschrift
//  3. Veröffentlichung
//  4. Rechtskraft Bescheid
//  5. Zeitpunkt als Scheinunternehmen
//  6. Geburts-Datum
//  7. Firmenbuch-Nr
//  8. UID-Nr.
//  9. Kennziffer des UR
type Record struct {
	Name            string  // company or person name
	Anschrift       string  // free-form address
	Veroeffentlicht string  // publication date, ISO 8601
	Rechtskraeftig  string  // date the decree became legally binding, ISO 8601
	Seit            *string // designated a shell company since, ISO 8601
	Geburtsdatum    *string // birth date, natural persons only, ISO 8601
	Fbnr            *string // Firmenbuchnummer, 5-6 digits + letter
	UID             *string // UID-Nummer, ATU + 8 digits
	Kennziffer      *string // Unternehmensregister reference code
}

// Batch is the result of parsing one BMF extract. Records keep source order;
// every output format echoes that order. A Batch is created once by the parser
// and never mutated afterwards.
type Batch struct {
	Records     []Record
	StandDatum  string // reporting date from the "Stand:" footer, ISO 8601
	StandZeit   string // reporting time from the "Stand:" footer, HH:MM:SS
	RawRowCount int    // number of data rows found in the source
}

// MonthlyCount is one row of the monthly additions statistic: how many
// entries were published in a calendar month, plus the running total.
type MonthlyCount struct {
	Month     string // e.g. "2026-02"
	Additions int
	Total     int
}
