package reporting

import (
	"fmt"
	"strings"

	"token-holder-lab/internal/domain"
)

// RenderHolderCSV renders the full ranked holder table as CSV.
func RenderHolderCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("rank,address,entity_name,entity_label,category,balance,share_pct,flagged,market_maker\n")

	for _, row := range r.Rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s,%.6f,%.6f,%t,%t\n",
			row.Rank,
			csvField(row.Address),
			csvField(row.EntityName),
			csvField(row.EntityLabel),
			row.Category,
			row.Balance,
			row.SharePct,
			row.Flagged,
			row.MarketMaker,
		))
	}

	return sb.String()
}

// RenderFilteredCSV renders only the rows an analyst reviews by hand:
// flagged whales and unclassified holders.
func RenderFilteredCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("rank,address,entity_name,entity_label,category,balance,share_pct,flagged\n")

	for _, row := range r.Rows {
		if !row.Flagged && row.Category != string(domain.CategoryUnclassified) {
			continue
		}
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s,%.6f,%.6f,%t\n",
			row.Rank,
			csvField(row.Address),
			csvField(row.EntityName),
			csvField(row.EntityLabel),
			row.Category,
			row.Balance,
			row.SharePct,
			row.Flagged,
		))
	}

	return sb.String()
}

// csvField quotes a field when it contains a comma or quote.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
