// Package export renders the wordbook for download.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/kotoba/internal/models"
)

// CSVHeader is the fixed export header row.
const CSVHeader = `Word,Reading,Definition (CN),Definition (JP),Example (JP),Example (CN),Date Added`

// utf8BOM lets spreadsheet applications detect the encoding of CJK text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WordbookCSV renders the collection as CSV, newest first: a leading UTF-8
// BOM, the fixed header, then one row per entry. Every field is enclosed in
// double quotes with internal quotes doubled — unconditionally, not only
// when the field needs it, which is why this does not go through
// encoding/csv.
func WordbookCSV(wb models.Wordbook) []byte {
	var sb strings.Builder
	sb.Write(utf8BOM)
	sb.WriteString(CSVHeader)
	sb.WriteString("\r\n")

	for i := range wb {
		item := &wb[i]
		fields := []string{
			item.Word,
			item.Reading,
			item.DefinitionCN,
			item.DefinitionJP,
			item.ExampleJP,
			item.ExampleCN,
			item.AddedAt().Format("2006-01-02"),
		}
		for j, f := range fields {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(quoteField(f))
		}
		sb.WriteString("\r\n")
	}

	return []byte(sb.String())
}

// quoteField encloses a field in double quotes, doubling internal quotes.
func quoteField(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Filename returns the dated download name for an export.
func Filename(now time.Time) string {
	return fmt.Sprintf("wordbook-%s.csv", now.Format("2006-01-02"))
}
