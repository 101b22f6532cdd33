// Package stats generates a Markdown statistics report from the JSONL
// artifact: monthly additions by publication date plus the entries added in
// the last 30 days.
package stats

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arjoma/scheinfirmen-at/internal/domain/models"
)

// recordInfo is the minimal per-record view the report needs.
type recordInfo struct {
	Name            string
	Anschrift       string
	UID             *string
	Veroeffentlicht *time.Time
}

// readJSONL loads the JSONL artifact: records, the reporting timestamp from
// the metadata line, and the total count. Records with an unparsable
// publication date keep a nil date and are excluded from date-based buckets.
func readJSONL(path string) ([]recordInfo, string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", 0, err
	}
	defer func() { _ = f.Close() }()

	var records []recordInfo
	stand := "?"
	total := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var meta struct {
			Metadata *struct {
				Stand string `json:"stand"`
				Count int    `json:"count"`
			} `json:"_metadata"`
		}
		if err := json.Unmarshal([]byte(line), &meta); err != nil {
			return nil, "", 0, fmt.Errorf("parse %s: %w", path, err)
		}
		if meta.Metadata != nil {
			stand = meta.Metadata.Stand
			total = meta.Metadata.Count
			continue
		}

		var obj struct {
			Name            string  `json:"name"`
			Anschrift       string  `json:"anschrift"`
			UID             *string `json:"uid"`
			Veroeffentlicht string  `json:"veroeffentlicht"`
		}
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return nil, "", 0, fmt.Errorf("parse %s: %w", path, err)
		}

		info := recordInfo{Name: obj.Name, Anschrift: obj.Anschrift, UID: obj.UID}
		if d, err := time.Parse("2006-01-02", obj.Veroeffentlicht); err == nil {
			info.Veroeffentlicht = &d
		}
		records = append(records, info)
	}
	if err := scanner.Err(); err != nil {
		return nil, "", 0, err
	}

	if total == 0 {
		total = len(records)
	}
	return records, stand, total, nil
}

// monthlyCounts buckets records by calendar month of the publication date and
// computes cumulative totals, oldest month first.
func monthlyCounts(records []recordInfo) []models.MonthlyCount {
	buckets := map[string]int{}
	for _, rec := range records {
		if rec.Veroeffentlicht == nil {
			continue
		}
		buckets[rec.Veroeffentlicht.Format("2006-01")]++
	}
	if len(buckets) == 0 {
		return nil
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	rows := make([]models.MonthlyCount, 0, len(months))
	cumulative := 0
	for _, m := range months {
		cumulative += buckets[m]
		rows = append(rows, models.MonthlyCount{Month: m, Additions: buckets[m], Total: cumulative})
	}
	return rows
}

// recentAdditions returns records published within the last `days` days,
// sorted alphabetically by name.
func recentAdditions(records []recordInfo, days int, today time.Time) []recordInfo {
	cutoff := today.AddDate(0, 0, -days)

	var recent []recordInfo
	for _, rec := range records {
		if rec.Veroeffentlicht != nil && rec.Veroeffentlicht.After(cutoff) {
			recent = append(recent, rec)
		}
	}
	sort.Slice(recent, func(i, j int) bool { return recent[i].Name < recent[j].Name })
	return recent
}

// render builds the Markdown report: totals, a mermaid progression chart
// (when at least two months of data exist), and the recent additions table.
func render(monthly []models.MonthlyCount, recent []recordInfo, stand string, total int) string {
	var b strings.Builder

	firstMonth := "—"
	if len(monthly) > 0 {
		firstMonth = monthly[0].Month
	}
	fmt.Fprintf(&b, "# Scheinfirmen Österreich — Statistik\n\n")
	fmt.Fprintf(&b, "> Stand: %s | Gesamt: %d | Erster Eintrag: %s\n\n", stand, total, firstMonth)

	if len(monthly) >= 2 {
		b.WriteString("## Verlauf\n\n")

		// Numeric year range on the x-axis avoids mermaid rendering
		// artefacts with many categorical entries.
		firstYear := monthly[0].Month[:4]
		lastYear := monthly[len(monthly)-1].Month[:4]

		totals := make([]string, len(monthly))
		yMax := 0
		for i, row := range monthly {
			totals[i] = fmt.Sprintf("%d", row.Total)
			if row.Total > yMax {
				yMax = row.Total
			}
		}

		b.WriteString("```mermaid\n")
		b.WriteString("---\nconfig:\n  themeVariables:\n    xyChart:\n      plotColorPalette: \"#111111\"\n---\n")
		b.WriteString("xychart-beta\n")
		b.WriteString("    title \"Scheinfirmen: Gesamtanzahl\"\n")
		fmt.Fprintf(&b, "    x-axis \"Jahr\" %s --> %s\n", firstYear, lastYear)
		fmt.Fprintf(&b, "    y-axis \"Anzahl\" 0 --> %d\n", yMax+50)
		fmt.Fprintf(&b, "    line [%s]\n", strings.Join(totals, ", "))
		b.WriteString("```\n\n")
	}

	b.WriteString("## Neueste Scheinfirmen (letzte 30 Tage)\n\n")
	if len(recent) > 0 {
		b.WriteString("| Name | UID | Anschrift |\n")
		b.WriteString("|------|-----|-----------|\n")
		for _, rec := range recent {
			uid := ""
			if rec.UID != nil {
				uid = *rec.UID
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", rec.Name, uid, rec.Anschrift)
		}
		fmt.Fprintf(&b, "\n*%d Einträge hinzugefügt.*\n", len(recent))
	} else {
		b.WriteString("*Keine neuen Einträge in den letzten 30 Tagen.*\n")
	}

	return b.String()
}

// Generate reads the JSONL artifact and writes the Markdown report to
// outPath. An empty artifact yields no report and no error.
func Generate(jsonlPath, outPath string) error {
	records, stand, total, err := readJSONL(jsonlPath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	monthly := monthlyCounts(records)
	recent := recentAdditions(records, 30, time.Now())

	md := render(monthly, recent, stand, total)

	if dir := filepath.Dir(outPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(outPath, []byte(md), 0o644)
}
