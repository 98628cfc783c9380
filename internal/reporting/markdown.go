package reporting

import (
	"fmt"
	"strings"
	"time"
)

// maxMarkdownRows caps the holder table in the Markdown view. The full table
// goes to CSV; the Markdown report is for reading.
const maxMarkdownRows = 50

// RenderMarkdown renders the report as a Markdown document.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Holder Concentration Report\n\n")
	sb.WriteString(fmt.Sprintf("Token: `%s` (%s)\n\n", r.Token, r.Chain))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Supply summary
	sb.WriteString("## Supply\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Supply | %.6f |\n", r.TotalSupply))
	sb.WriteString(fmt.Sprintf("| Locked Supply | %.6f |\n", r.LockedSupply))
	sb.WriteString(fmt.Sprintf("| Circulating Supply | %.6f |\n", r.CirculatingSupply))
	sb.WriteString(fmt.Sprintf("| Holders Analyzed | %d |\n", r.HolderCount))
	sb.WriteString("\n")

	// Concentration
	sb.WriteString("## Concentration\n\n")
	sb.WriteString("| Cut | Cumulative Share |\n")
	sb.WriteString("|-----|------------------|\n")
	for _, cut := range r.TopN {
		sb.WriteString(fmt.Sprintf("| Top %d | %.2f%% |\n", cut.N, cut.CumulativeSharePct))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("HHI: %.2f\n\n", r.HHI))
	sb.WriteString(fmt.Sprintf("Flagged holders (share > %.2f%%): %d\n\n",
		r.WhaleThreshold*100, r.FlaggedCount))

	// Holder table
	sb.WriteString("## Top Holders\n\n")
	if len(r.Rows) > 0 {
		sb.WriteString("| Rank | Address | Entity | Category | Share | Flagged |\n")
		sb.WriteString("|------|---------|--------|----------|-------|--------|\n")
		for _, row := range r.Rows {
			if row.Rank > maxMarkdownRows {
				sb.WriteString(fmt.Sprintf("\n_%d more holders in the CSV export._\n", len(r.Rows)-maxMarkdownRows))
				break
			}
			entity := row.EntityName
			if entity == "" {
				entity = row.EntityLabel
			}
			flagged := ""
			if row.Flagged {
				flagged = "YES"
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %.4f%% | %s |\n",
				row.Rank, row.Address, entity, row.Category, row.SharePct, flagged))
		}
	} else {
		sb.WriteString("No holders analyzed.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
