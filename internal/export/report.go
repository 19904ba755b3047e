package export

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Kaczor4444/kompas-seniora/internal/model"
)

// AnomalyReport renders an aligned review table of the records flagged
// by validation, capped at top rows (0 = all). Returns "" when nothing
// is flagged.
func AnomalyReport(records []model.CostRecord, top int) string {
	var flagged []model.CostRecord
	for _, r := range records {
		if r.ValidationStatus == model.StatusAnomalyRange || r.ValidationStatus == model.StatusAnomalyStatistical {
			flagged = append(flagged, r)
		}
	}
	if len(flagged) == 0 {
		return ""
	}
	if top > 0 && len(flagged) > top {
		flagged = flagged[:top]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "records needing manual review (%d shown):\n", len(flagged))

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REGION\tFACILITY\tCARE TYPE\tPRICE\tSTATUS")
	for _, r := range flagged {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n",
			r.Region, r.FacilityName, r.CareType, r.Price, r.ValidationStatus)
	}
	tw.Flush()
	return b.String()
}
