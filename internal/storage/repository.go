package storage

import (
	"database/sql"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/arjoma/scheinfirmen-at/internal/domain/models"
)

// SnapshotRepository defines the DB operations for archived snapshots.
// One snapshot is the full record set of one Stand (reporting timestamp).
type SnapshotRepository interface {
	InsertRecordsBatch(stand string, records []models.Record) error
	HasSnapshotForStand(stand string) (bool, error)
	UpsertSnapshotLog(stand, zeit string, rowCount int) error
	DeleteRecordsByStand(stand string) error
	LatestStand() (string, error)
	CountRecords(stand string) (int, error)
	ListRecords(stand string, limit, offset int) ([]models.Record, error)
	MonthlyAdditions(stand string) ([]models.MonthlyCount, error)
	RecentAdditions(stand string, days int) ([]models.Record, error)
}

type snapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// InsertRecordsBatch inserts all records of one snapshot in a single
// transaction using COPY.
func (r *snapshotRepository) InsertRecordsBatch(stand string, records []models.Record) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	// Small optimization for bulk load
	if _, err := tx.Exec(`SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare(pq.CopyIn(
		"scheinfirmen",
		"stand",
		"name",
		"anschrift",
		"veroeffentlicht",
		"rechtskraeftig",
		"seit",
		"geburtsdatum",
		"fbnr",
		"uid",
		"kennziffer",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	// nil optional fields become SQL NULLs
	toNull := func(s *string) interface{} {
		if s == nil {
			return nil
		}
		return *s
	}

	for _, rec := range records {
		if _, err := stmt.Exec(
			stand,
			rec.Name,
			rec.Anschrift,
			rec.Veroeffentlicht,
			rec.Rechtskraeftig,
			toNull(rec.Seit),
			toNull(rec.Geburtsdatum),
			toNull(rec.Fbnr),
			toNull(rec.UID),
			toNull(rec.Kennziffer),
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.Exec(); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// HasSnapshotForStand checks if a snapshot was already archived for a Stand.
func (r *snapshotRepository) HasSnapshotForStand(stand string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM snapshot_log WHERE stand = $1)`, stand).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertSnapshotLog records (or updates) the archive entry for a Stand.
func (r *snapshotRepository) UpsertSnapshotLog(stand, zeit string, rowCount int) error {
	_, err := r.db.Exec(`
		INSERT INTO snapshot_log (stand, zeit, row_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (stand)
		DO UPDATE SET zeit = EXCLUDED.zeit,
					  row_count = EXCLUDED.row_count,
					  archived_at = NOW()
	`, stand, zeit, rowCount)
	return err
}

// DeleteRecordsByStand removes all archived records of one snapshot.
func (r *snapshotRepository) DeleteRecordsByStand(stand string) error {
	_, err := r.db.Exec(`DELETE FROM scheinfirmen WHERE stand = $1`, stand)
	return err
}

// LatestStand returns the most recent archived Stand date, or "" when the
// archive is empty.
func (r *snapshotRepository) LatestStand() (string, error) {
	var stand string
	err := r.db.QueryRow(`SELECT stand FROM snapshot_log ORDER BY stand DESC LIMIT 1`).Scan(&stand)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return stand, nil
}

// CountRecords returns the number of records archived for a Stand.
func (r *snapshotRepository) CountRecords(stand string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM scheinfirmen WHERE stand = $1`, stand).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

const recordColumns = `name, anschrift, veroeffentlicht, rechtskraeftig, seit, geburtsdatum, fbnr, uid, kennziffer`

// ListRecords returns a page of archived records in source order.
func (r *snapshotRepository) ListRecords(stand string, limit, offset int) ([]models.Record, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM scheinfirmen
		WHERE stand = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`, recordColumns)

	rows, err := r.db.Query(query, stand, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows)
}

// MonthlyAdditions groups a snapshot's records by publication month with a
// cumulative running total, oldest month first.
func (r *snapshotRepository) MonthlyAdditions(stand string) ([]models.MonthlyCount, error) {
	rows, err := r.db.Query(`
		SELECT to_char(veroeffentlicht::date, 'YYYY-MM') AS month, COUNT(*) AS additions
		FROM scheinfirmen
		WHERE stand = $1
		GROUP BY month
		ORDER BY month
	`, stand)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.MonthlyCount
	total := 0
	for rows.Next() {
		var mc models.MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.Additions); err != nil {
			return nil, err
		}
		total += mc.Additions
		mc.Total = total
		out = append(out, mc)
	}
	return out, rows.Err()
}

// RecentAdditions returns records published within the last `days` days of a
// snapshot, sorted alphabetically by name.
func (r *snapshotRepository) RecentAdditions(stand string, days int) ([]models.Record, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM scheinfirmen
		WHERE stand = $1
		  AND veroeffentlicht::date > NOW() - make_interval(days => $2)
		ORDER BY name
	`, recordColumns)

	rows, err := r.db.Query(query, stand, days)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]models.Record, error) {
	var out []models.Record
	for rows.Next() {
		var rec models.Record
		var seit, geburtsdatum, fbnr, uid, kennziffer sql.NullString
		if err := rows.Scan(
			&rec.Name,
			&rec.Anschrift,
			&rec.Veroeffentlicht,
			&rec.Rechtskraeftig,
			&seit,
			&geburtsdatum,
			&fbnr,
			&uid,
			&kennziffer,
		); err != nil {
			return nil, err
		}
		rec.Seit = fromNull(seit)
		rec.Geburtsdatum = fromNull(geburtsdatum)
		rec.Fbnr = fromNull(fbnr)
		rec.UID = fromNull(uid)
		rec.Kennziffer = fromNull(kennziffer)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func fromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
