package convert

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/arjoma/scheinfirmen-at/internal/domain/models"
	"github.com/arjoma/scheinfirmen-at/internal/download"
	"github.com/arjoma/scheinfirmen-at/internal/schema"
)

// xmlRecord is one <scheinfirma> element: the name as text content, every
// other present field as an attribute. Absent optional fields are omitted
// entirely, not written as empty attributes.
type xmlRecord struct {
	XMLName         xml.Name `xml:"scheinfirma"`
	Anschrift       string   `xml:"anschrift,attr"`
	Veroeffentlicht string   `xml:"veroeffentlicht,attr"`
	Rechtskraeftig  string   `xml:"rechtskraeftig,attr"`
	Seit            *string  `xml:"seit,attr,omitempty"`
	Geburtsdatum    *string  `xml:"geburtsdatum,attr,omitempty"`
	Fbnr            *string  `xml:"fbnr,attr,omitempty"`
	UID             *string  `xml:"uid,attr,omitempty"`
	Kennziffer      *string  `xml:"kennziffer,attr,omitempty"`
	Name            string   `xml:",chardata"`
}

type xmlRoot struct {
	XMLName   xml.Name    `xml:"scheinfirmen"`
	XsiNS     string      `xml:"xmlns:xsi,attr"`
	SchemaLoc string      `xml:"xsi:noNamespaceSchemaLocation,attr"`
	Stand     string      `xml:"stand,attr"`
	Zeit      string      `xml:"zeit,attr"`
	Quelle    string      `xml:"quelle,attr"`
	Anzahl    string      `xml:"anzahl,attr"`
	Records   []xmlRecord `xml:"scheinfirma"`
}

// WriteXML writes the batch as an indented UTF-8 XML document with a standard
// declaration. The root element carries the reporting date and time, the
// source URL and the record count as attributes.
//
// Returns the number of records written, always len(batch.Records).
func WriteXML(batch *models.Batch, path string) (int, error) {
	root := xmlRoot{
		XsiNS:     "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLoc: schema.XSDURI,
		Stand:     batch.StandDatum,
		Zeit:      batch.StandZeit,
		Quelle:    download.BMFURL,
		Anzahl:    strconv.Itoa(batch.RawRowCount),
		Records:   make([]xmlRecord, 0, len(batch.Records)),
	}

	for _, rec := range batch.Records {
		root.Records = append(root.Records, xmlRecord{
			Anschrift:       rec.Anschrift,
			Veroeffentlicht: rec.Veroeffentlicht,
			Rechtskraeftig:  rec.Rechtskraeftig,
			Seit:            rec.Seit,
			Geburtsdatum:    rec.Geburtsdatum,
			Fbnr:            rec.Fbnr,
			UID:             rec.UID,
			Kennziffer:      rec.Kennziffer,
			Name:            rec.Name,
		})
	}

	out, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal xml: %w", err)
	}

	f, err := createOutput(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(xml.Header); err != nil {
		return 0, fmt.Errorf("write declaration: %w", err)
	}
	if _, err := f.Write(append(out, '\n')); err != nil {
		return 0, fmt.Errorf("write document: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", path, err)
	}

	return len(batch.Records), nil
}
