package brief

import (
	"fmt"
	"strings"

	"github.com/sells-group/patent-scout/internal/catalog"
	"github.com/sells-group/patent-scout/internal/model"
)

// Section headings shared by the oracle prompt and the template.
var sections = []string{
	"EXECUTIVE SUMMARY",
	"INDUSTRIAL PAIN POINT",
	"YOUR PLASMA SOLUTION",
	"PATENT LANDSCAPE ANALYSIS",
	"COMMERCIAL OPPORTUNITY",
	"TECHNICAL DEVELOPMENT PLAN",
	"DISCUSSION QUESTIONS",
}

func technology(caps catalog.Capabilities) string {
	if caps.Technology != "" {
		return caps.Technology
	}
	return "plasma"
}

func systemPrompt(caps catalog.Capabilities) string {
	return fmt.Sprintf("You are an IP and commercialization strategist for a %s physics researcher.", technology(caps))
}

func userPrompt(opp model.Opportunity, caps catalog.Capabilities) string {
	var b strings.Builder
	fmt.Fprintf(&b, "OPPORTUNITY DETECTED:\nIndustry: %s\nProcess: %s\nProblem: %s\n\n",
		opp.Bottleneck.Industry, opp.Bottleneck.Process, opp.Bottleneck.Description)
	fmt.Fprintf(&b, "PATENT LANDSCAPE:\n%s\n\n", formatLandscape(opp.Landscape))
	fmt.Fprintf(&b, "TARGET COMPANIES:\n%s\n\n", formatCompanies(opp.Companies))
	fmt.Fprintf(&b, "RESEARCHER CAPABILITIES:\n%s\n\n", caps.Format())
	if m := opp.Capability; m != nil && m.CapabilityName != "" {
		fmt.Fprintf(&b, "MATCHED CAPABILITY:\n%s (feasibility %.1f/10, commercial potential %.1f/10)\n\n",
			m.CapabilityName, m.TechnicalFeasibility, m.CommercialPotential)
	}

	b.WriteString(`Generate comprehensive discussion brief (2000-3000 words) with:

1. EXECUTIVE SUMMARY (3-4 sentences)
   - The opportunity
   - Market size
   - Priority level

2. INDUSTRIAL PAIN POINT
   - Current process details
   - Quantitative limitations (time, cost, yield)
   - Why it matters

3. YOUR PLASMA SOLUTION
   - Which capability applies
   - How plasma solves it
   - Expected performance improvement (quantitative)
   - Technical feasibility

4. PATENT LANDSCAPE ANALYSIS
   - Prior art summary
   - White space identified
   - Your novel contributions
   - Freedom to operate status
   - IP strategy recommendation

5. COMMERCIAL OPPORTUNITY
   - Market size and growth
   - Target company analysis (top 3)
   - Partnership vs licensing strategy
   - Revenue potential

6. TECHNICAL DEVELOPMENT PLAN
   - Phase 1: Lab validation (timeline)
   - Phase 2: Pilot design
   - Phase 3: Commercial demo
   - Resource requirements

7. DISCUSSION QUESTIONS
   - Should we pursue?
   - Patent first?
   - Which companies to approach?
   - Resource allocation?

Be quantitative, specific, and commercially focused.
Use markdown formatting with ## headers.
`)
	return b.String()
}

func formatLandscape(l model.PatentLandscape) string {
	return fmt.Sprintf("Total patents: %d\nWhite space: %t", l.TotalPatents, l.WhiteSpace)
}

func formatCompanies(companies []model.Company) string {
	if len(companies) > promptCompanies {
		companies = companies[:promptCompanies]
	}
	lines := make([]string, 0, len(companies))
	for _, c := range companies {
		desc := c.Description
		if desc == "" {
			desc = "N/A"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", c.Name, desc))
	}
	return strings.Join(lines, "\n")
}
