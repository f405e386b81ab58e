package brief

import (
	"fmt"
	"strings"

	"github.com/sells-group/patent-scout/internal/catalog"
	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/scorer"
)

// Template renders a brief from the opportunity record alone. It is used
// when the oracle is unavailable and always returns the same text for the
// same input.
func Template(opp model.Opportunity, caps catalog.Capabilities) string {
	tech := technology(caps)
	bn := opp.Bottleneck
	label := scorer.Label(opp.Priority)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", opp.Title())

	section(&b, 0)
	fmt.Fprintf(&b, "A %s bottleneck in %s has no %s patent coverage in the searched landscape. ",
		bn.Process, bn.Industry, tech)
	fmt.Fprintf(&b, "%d candidate partner companies were identified. ", len(opp.Companies))
	fmt.Fprintf(&b, "Priority: %s (%.2f).\n\n", label, opp.Priority)

	section(&b, 1)
	fmt.Fprintf(&b, "- Industry: %s\n- Process: %s\n- Problem: %s\n", bn.Industry, bn.Process, bn.Description)
	if bn.Source != "" {
		fmt.Fprintf(&b, "- Reported by: %s\n", bn.Source)
	}
	b.WriteString("\n")

	section(&b, 2)
	if m := opp.Capability; m != nil && m.CapabilityName != "" {
		fmt.Fprintf(&b, "- Capability: %s\n", m.CapabilityName)
		if m.ExpectedImprovement != "" {
			fmt.Fprintf(&b, "- Expected improvement: %s\n", m.ExpectedImprovement)
		}
		fmt.Fprintf(&b, "- Technical feasibility: %.1f/10\n- Commercial potential: %.1f/10\n", m.TechnicalFeasibility, m.CommercialPotential)
		for _, r := range m.Risks {
			fmt.Fprintf(&b, "- Risk: %s\n", r)
		}
	} else if caps.Empty() {
		fmt.Fprintf(&b, "No capability assessment is available. Review the problem against current %s capabilities.\n", tech)
	} else {
		b.WriteString("Candidate capabilities:\n\n")
		b.WriteString(caps.Format())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	section(&b, 3)
	b.WriteString(formatLandscape(opp.Landscape))
	b.WriteString("\n")
	if opp.Landscape.Query != "" {
		fmt.Fprintf(&b, "Search query: %s\n", opp.Landscape.Query)
	}
	b.WriteString("\n")

	section(&b, 4)
	if len(opp.Companies) == 0 {
		b.WriteString("No target companies identified.\n")
	} else {
		b.WriteString(formatCompanies(opp.Companies))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	section(&b, 5)
	b.WriteString("- Phase 1: Lab validation\n- Phase 2: Pilot design\n- Phase 3: Commercial demo\n\n")

	section(&b, 6)
	b.WriteString("- Should we pursue?\n- Patent first?\n- Which companies to approach?\n- Resource allocation?\n")
	return b.String()
}

func section(b *strings.Builder, i int) {
	fmt.Fprintf(b, "## %d. %s\n\n", i+1, sections[i])
}
