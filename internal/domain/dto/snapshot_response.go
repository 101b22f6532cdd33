package dto

import "github.com/arjoma/scheinfirmen-at/internal/domain/models"

// RecordResponse is one Scheinfirma entry as served by the API. Optional
// fields serialize as explicit null, matching the JSONL artifact convention.
type RecordResponse struct {
	Name            string  `json:"name" example:"Muster Bau GmbH"`
	Anschrift       string  `json:"anschrift" example:"1100 Wien, Musterstraße 1"`
	Veroeffentlicht string  `json:"veroeffentlicht" example:"2026-02-10"`
	Rechtskraeftig  string  `json:"rechtskraeftig" example:"2026-02-01"`
	Seit            *string `json:"seit"`
	Geburtsdatum    *string `json:"geburtsdatum"`
	Fbnr            *string `json:"fbnr" example:"123456a"`
	UID             *string `json:"uid" example:"ATU12345678"`
	Kennziffer      *string `json:"kennziffer"`
}

// RecordListResponse is the paginated record listing of the latest snapshot.
type RecordListResponse struct {
	Stand   string           `json:"stand" example:"2026-02-10"` // Stand of the snapshot served
	Total   int              `json:"total" example:"412"`        // total records in the snapshot
	Records []RecordResponse `json:"records"`
}

// MonthlyStatsResponse is the monthly additions statistic of the latest snapshot.
type MonthlyStatsResponse struct {
	Stand  string              `json:"stand" example:"2026-02-10"`
	Months []MonthlyCountEntry `json:"months"`
}

// MonthlyCountEntry is one month bucket of the statistic.
type MonthlyCountEntry struct {
	Month     string `json:"month" example:"2026-02"`
	Additions int    `json:"additions" example:"12"`
	Total     int    `json:"total" example:"412"`
}

// NewRecordResponse maps a domain record to its API shape.
func NewRecordResponse(rec models.Record) RecordResponse {
	return RecordResponse{
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
}
