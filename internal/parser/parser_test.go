package parser

import (
	"errors"
	"strings"
	"testing"
)

const validHeader = "Name~Anschrift~Veröffentlichung~Rechtskraft Bescheid~Zeitpunkt als Scheinunternehmen~Geburts-Datum~Firmenbuch-Nr~UID-Nr.~Kennziffer des UR"

const standLine = "Stand:  10.02.2026 09:51:32"

// row builds a 9-field data line plus the trailing tilde the BMF format
// emits when the Kennziffer is empty.
func row(fields ...string) string {
	return strings.Join(fields, "~")
}

var fullRow = row(
	"Alpha Bau GmbH",
	"1100 Wien, Teststraße 1",
	"10.02.2026",
	"01.02.2026",
	"15.01.2026",
	"01.03.1980",
	"123456a",
	"ATU12345678",
	"R123A4567",
) + "~" // trailing empty 10th field

func latin1(s string) []byte {
	// Byte-wise truncation maps U+0000..U+00FF to their Latin-1 bytes, which
	// is exactly the encoding under test.
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, byte(r))
	}
	return out
}

func TestParse_FullRow(t *testing.T) {
	raw := latin1(validHeader + "\r\n" + fullRow + "\r\n" + standLine + "\r\n")

	batch, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.RawRowCount != 1 || len(batch.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(batch.Records))
	}
	if batch.StandDatum != "2026-02-10" || batch.StandZeit != "09:51:32" {
		t.Fatalf("unexpected Stand: %s %s", batch.StandDatum, batch.StandZeit)
	}

	rec := batch.Records[0]
	if rec.Name != "Alpha Bau GmbH" {
		t.Fatalf("name: %q", rec.Name)
	}
	if rec.Anschrift != "1100 Wien, Teststraße 1" {
		t.Fatalf("anschrift: %q", rec.Anschrift)
	}
	if rec.Veroeffentlicht != "2026-02-10" || rec.Rechtskraeftig != "2026-02-01" {
		t.Fatalf("dates: %q %q", rec.Veroeffentlicht, rec.Rechtskraeftig)
	}
	if rec.Seit == nil || *rec.Seit != "2026-01-15" {
		t.Fatalf("seit: %v", rec.Seit)
	}
	if rec.Geburtsdatum == nil || *rec.Geburtsdatum != "1980-03-01" {
		t.Fatalf("geburtsdatum: %v", rec.Geburtsdatum)
	}
	if rec.Fbnr == nil || *rec.Fbnr != "123456a" {
		t.Fatalf("fbnr: %v", rec.Fbnr)
	}
	if rec.UID == nil || *rec.UID != "ATU12345678" {
		t.Fatalf("uid: %v", rec.UID)
	}
	if rec.Kennziffer == nil || *rec.Kennziffer != "R123A4567" {
		t.Fatalf("kennziffer: %v", rec.Kennziffer)
	}
}

func TestParse_TableDriven(t *testing.T) {
	minimalRow := row("Beta GmbH", "4020 Linz, Hafenstraße 2", "05.01.2026", "01.01.2026", "", "", "", "", "")

	cases := []struct {
		name    string
		content string
		wantErr string // substring of the expected error; empty = success
		records int
	}{
		{
			name:    "minimal row with empty optionals",
			content: validHeader + "\n" + minimalRow + "\n" + standLine + "\n",
			records: 1,
		},
		{
			name:    "blank lines skipped",
			content: validHeader + "\n\n" + minimalRow + "\n\n" + standLine + "\n\n",
			records: 1,
		},
		{
			name:    "zero data rows with footer",
			content: validHeader + "\n" + standLine + "\n",
			records: 0,
		},
		{
			name:    "misspelled header field",
			content: strings.Replace(validHeader, "Name", "Nome", 1) + "\n" + minimalRow + "\n" + standLine + "\n",
			wantErr: "unexpected headers",
		},
		{
			name:    "missing header column",
			content: "Name~Anschrift\n" + minimalRow + "\n" + standLine + "\n",
			wantErr: "unexpected headers",
		},
		{
			name:    "wrong field count",
			content: validHeader + "\n" + "only~three~fields" + "\n" + standLine + "\n",
			wantErr: "expected 9 fields, got 3",
		},
		{
			name:    "eleven fields",
			content: validHeader + "\n" + minimalRow + "~x~y" + "\n" + standLine + "\n",
			wantErr: "expected 9 fields, got 11",
		},
		{
			name:    "missing Stand footer",
			content: validHeader + "\n" + minimalRow + "\n",
			wantErr: "Stand: timestamp line not found",
		},
		{
			name:    "day overflow rejected",
			content: validHeader + "\n" + row("X", "Y", "32.01.2026", "01.01.2026", "", "", "", "", "") + "\n" + standLine + "\n",
			wantErr: "invalid date",
		},
		{
			name:    "month overflow rejected",
			content: validHeader + "\n" + row("X", "Y", "01.13.2026", "01.01.2026", "", "", "", "", "") + "\n" + standLine + "\n",
			wantErr: "invalid date",
		},
		{
			name:    "invalid optional date still fails",
			content: validHeader + "\n" + row("X", "Y", "01.01.2026", "01.01.2026", "99.99.9999", "", "", "", "") + "\n" + standLine + "\n",
			wantErr: "invalid date",
		},
		{
			name:    "empty input",
			content: "",
			wantErr: "empty input",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			batch, err := Parse(latin1(tc.content))
			if tc.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tc.wantErr)
				}
				var fe *FormatError
				if !errors.As(err, &fe) {
					t.Fatalf("expected *FormatError, got %T", err)
				}
				if !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("error %q does not contain %q", err.Error(), tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(batch.Records) != tc.records {
				t.Fatalf("expected %d records, got %d", tc.records, len(batch.Records))
			}
		})
	}
}

func TestParse_AllOrNothing(t *testing.T) {
	good := row("Good GmbH", "Wien", "01.01.2026", "02.01.2026", "", "", "", "", "")
	bad := row("Bad GmbH", "Graz", "not-a-date", "02.01.2026", "", "", "", "", "")
	raw := latin1(validHeader + "\n" + good + "\n" + bad + "\n" + standLine + "\n")

	batch, err := Parse(raw)
	if err == nil {
		t.Fatalf("expected error, got batch with %d records", len(batch.Records))
	}
	if batch != nil {
		t.Fatalf("failed parse must not return partial results")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("error should name line 3: %v", err)
	}
}

func TestParse_Latin1Decoding(t *testing.T) {
	// "Müller" with ü as the single Latin-1 byte 0xFC.
	name := append([]byte("M"), 0xFC)
	name = append(name, []byte("ller KG")...)
	line := append(name, []byte("~Wien~01.01.2026~02.01.2026~~~~~~")...)

	raw := append(latin1(validHeader+"\n"), line...)
	raw = append(raw, latin1("\n"+standLine+"\n")...)

	batch, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Records[0].Name != "Müller KG" {
		t.Fatalf("expected Latin-1 decoded name, got %q", batch.Records[0].Name)
	}
}

func TestParse_FieldCleaning(t *testing.T) {
	line := row(
		"  M&uuml;ller &amp; Co  ",
		" Wien ",
		" 01.01.2026 ",
		"02.01.2026",
		"",
		"",
		"",
		"",
		"&quot;R123A4567&quot;",
	)
	raw := latin1(validHeader + "\n" + line + "\n" + standLine + "\n")

	batch, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := batch.Records[0]
	if rec.Name != "Müller & Co" {
		t.Fatalf("expected HTML entities unescaped and trimmed, got %q", rec.Name)
	}
	if rec.Kennziffer == nil || *rec.Kennziffer != "R123A4567" {
		t.Fatalf("expected quotes stripped from Kennziffer, got %v", rec.Kennziffer)
	}
}

func TestParse_TrailingTildeHandling(t *testing.T) {
	// A populated 10th field is not the empty-Kennziffer artifact and must fail.
	line := row("X", "Y", "01.01.2026", "02.01.2026", "", "", "", "", "R123A4567") + "~extra"
	raw := latin1(validHeader + "\n" + line + "\n" + standLine + "\n")

	_, err := Parse(raw)
	if err == nil || !strings.Contains(err.Error(), "expected 9 fields, got 10") {
		t.Fatalf("expected field count error, got %v", err)
	}
}

func TestFormatError_Error(t *testing.T) {
	if got := (&FormatError{Line: 7, Message: "boom"}).Error(); got != "line 7: boom" {
		t.Fatalf("got %q", got)
	}
	if got := (&FormatError{Message: "boom"}).Error(); got != "boom" {
		t.Fatalf("got %q", got)
	}
}
