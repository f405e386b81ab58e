package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/patent-scout/internal/scorer"
)

// FormatReport renders a human-readable summary of a run.
func FormatReport(res *Result) string {
	var b strings.Builder
	s := res.Stats

	b.WriteString("# Patent Scout Run Report\n\n")

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Bottlenecks extracted: %d (%d unique)\n", s.Extracted, s.Unique)
	fmt.Fprintf(&b, "- Opportunities: %d\n", s.Opportunities)
	fmt.Fprintf(&b, "- Token usage: %d input, %d output\n", s.TokenUsage.InputTokens, s.TokenUsage.OutputTokens)
	fmt.Fprintf(&b, "- Estimated cost: $%.4f\n", s.TokenUsage.Cost)
	fmt.Fprintf(&b, "- Duration: %dms\n\n", s.DurationMs)

	b.WriteString("## Drops\n")
	fmt.Fprintf(&b, "- Patented (no white space): %d\n", s.DroppedPatented)
	fmt.Fprintf(&b, "- No companies: %d\n", s.DroppedNoCompany)
	fmt.Fprintf(&b, "- Capability mismatch: %d\n", s.DroppedCapability)
	fmt.Fprintf(&b, "- Skipped: %d\n\n", s.Skipped)

	b.WriteString("## Opportunities\n")
	if len(res.Opportunities) == 0 {
		b.WriteString("No opportunities found.\n")
		return b.String()
	}
	for i, o := range res.Opportunities {
		fmt.Fprintf(&b, "%d. **%s** %s (%.2f)\n", i+1, o.Title(), scorer.Label(o.Priority), o.Priority)
		fmt.Fprintf(&b, "   - Process: %s\n", o.Bottleneck.Process)
		fmt.Fprintf(&b, "   - Problem: %s\n", o.Bottleneck.Description)
		fmt.Fprintf(&b, "   - Source: %s\n", o.Bottleneck.Source)
		fmt.Fprintf(&b, "   - Patents: %d total, %d relevant\n", o.Landscape.TotalPatents, o.Landscape.RelevantPatents)

		names := make([]string, len(o.Companies))
		for j, c := range o.Companies {
			names[j] = c.Name
		}
		fmt.Fprintf(&b, "   - Companies: %s\n", strings.Join(names, ", "))
		if o.Capability != nil {
			fmt.Fprintf(&b, "   - Capability: %s (feasibility %.0f, commercial %.0f)\n",
				o.Capability.CapabilityName, o.Capability.TechnicalFeasibility, o.Capability.CommercialPotential)
		}
	}
	return b.String()
}
