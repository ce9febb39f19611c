package athena

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/gsod-etl-service/internal/domain"
)

// The two canonical consumer queries over the transformed table. Dates are
// rendered as DATE literals; column names are fixed by the output schema,
// the table name is quoted since it comes from config or flags.

// DateRangeQuery selects station readings inside a report_date range.
func DateRangeQuery(table string, from, to domain.Date) string {
	return fmt.Sprintf(
		`SELECT station, name, report_date, temp, max, min, prcp
FROM %s
WHERE report_date BETWEEN DATE '%s' AND DATE '%s'
ORDER BY report_date, station`,
		quoteIdent(table), from, to)
}

// DailyAveragesQuery aggregates mean temperature and precipitation per
// report_date inside a range, hottest days first.
func DailyAveragesQuery(table string, from, to domain.Date) string {
	return fmt.Sprintf(
		`SELECT report_date, AVG(temp) AS avg_temp, AVG(prcp) AS avg_prcp
FROM %s
WHERE report_date BETWEEN DATE '%s' AND DATE '%s'
GROUP BY report_date
ORDER BY avg_temp DESC`,
		quoteIdent(table), from, to)
}

// quoteIdent double-quotes a table name so reserved words survive as
// identifiers. A qualified database.table name quotes each part on its own.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
