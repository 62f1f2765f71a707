package export

import (
	"bytes"
	"fmt"
	"strings"
)

// CSV formatting shared by every export: all fields quoted, CRLF line
// endings, UTF-8 BOM so spreadsheet imports pick the right encoding.

func quoteAll(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatQty(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func newCSVBuffer(header []string) *bytes.Buffer {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF}) // UTF-8 BOM
	writeRow(&buf, header)
	return &buf
}

func writeRow(buf *bytes.Buffer, fields []string) {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = quoteAll(f)
	}
	buf.WriteString(strings.Join(quoted, ",") + "\r\n")
}
