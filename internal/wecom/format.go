package wecom

import (
	"fmt"
	"strings"

	"github.com/sungwon/commit-notifier/internal/changelog"
)

// FormatRecords renders records as the text block delivered to WeCom.
// Downstream readers depend on this layout; keep it byte-for-byte stable.
func FormatRecords(label string, records []changelog.ChangeRecord) string {
	lines := make([]string, 0, 1+4*len(records))
	lines = append(lines, fmt.Sprintf("=== %s 最近的Git提交 ===\n", label))

	for i, r := range records {
		lines = append(lines,
			fmt.Sprintf("[%d]", i+1),
			"作者: "+r.Author,
			"时间: "+r.Timestamp,
			"内容: "+r.Summary+"\n",
		)
	}
	return strings.Join(lines, "\n")
}
