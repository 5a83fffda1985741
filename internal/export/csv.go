package export

import (
	"strings"

	"github.com/frsc-ops/edashboard/internal/types"
)

// CSV renders the rows as delimited text. Every value is double-quoted with
// embedded quotes doubled, rows are separated by "\n" and there is no header
// row.
func CSV(reports []types.Report, columns types.ExportColumns, offences OffenceCodes) string {
	rows := Rows(reports, columns, offences)

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, v := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(v, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return b.String()
}
