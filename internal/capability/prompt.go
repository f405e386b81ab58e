package capability

import (
	"fmt"
	"strings"

	"github.com/sells-group/patent-scout/internal/catalog"
	"github.com/sells-group/patent-scout/internal/model"
)

const verdictSchema = `{
  "type": "object",
  "required": ["plasma_applicable", "technical_feasibility", "commercial_potential"],
  "properties": {
    "plasma_applicable": {"type": "boolean"},
    "applicable_capability": {"type": ["string", "null"]},
    "expected_improvement": {"type": ["string", "null"]},
    "technical_feasibility": {"type": "number"},
    "commercial_potential": {"type": "number"},
    "risks": {"type": ["array", "null"], "items": {"type": "string"}},
    "recommendation": {"type": ["string", "null"]}
  }
}`

// verdict is the oracle's JSON answer.
type verdict struct {
	Applicable           bool     `json:"plasma_applicable"`
	Capability           string   `json:"applicable_capability"`
	ExpectedImprovement  string   `json:"expected_improvement"`
	TechnicalFeasibility float64  `json:"technical_feasibility"`
	CommercialPotential  float64  `json:"commercial_potential"`
	Risks                []string `json:"risks"`
	Recommendation       string   `json:"recommendation"`
}

func systemPrompt(caps catalog.Capabilities) string {
	tech := caps.Technology
	if tech == "" {
		tech = "plasma"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You assess industrial process bottlenecks for %s solution potential", tech)
	if caps.Owner != "" {
		fmt.Fprintf(&b, " on behalf of %s", caps.Owner)
	}
	b.WriteString(".\n\nCAPABILITIES AVAILABLE:\n")
	b.WriteString(caps.Format())
	if len(caps.CurrentFocus) > 0 {
		b.WriteString("\n\nCURRENT FOCUS:\n- ")
		b.WriteString(strings.Join(caps.CurrentFocus, "\n- "))
	}
	return b.String()
}

func userPrompt(b model.Bottleneck) string {
	return fmt.Sprintf(`Analyze this industrial bottleneck.

BOTTLENECK:
Industry: %s
Process: %s
Problem: %s

ANALYSIS REQUIRED:
1. Could one of the capabilities solve this bottleneck?
2. Which specific capability would apply?
3. Expected improvement (quantitative if possible)
4. Technical feasibility (0-10 scale)
5. Commercial potential (0-10 scale)
6. Key technical risks

Return only JSON:
{
  "plasma_applicable": boolean,
  "applicable_capability": "string",
  "expected_improvement": "string with numbers",
  "technical_feasibility": number,
  "commercial_potential": number,
  "risks": ["risk1", "risk2"],
  "recommendation": "string"
}`, b.Industry, b.Process, b.Description)
}

// cleanJSON strips markdown fences and isolates the outermost JSON object.
func cleanJSON(text string) (string, bool) {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func clampScore(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 10:
		return 10
	default:
		return v
	}
}
