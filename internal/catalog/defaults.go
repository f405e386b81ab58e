package catalog

import "github.com/sells-group/patent-scout/internal/model"

// DefaultIndustries returns the reference catalog the scanner shipped with.
// Each call returns fresh slices and maps.
func DefaultIndustries() Industries {
	return Industries{
		Version: "2024.1",
		Tracked: []string{"battery", "lithium", "recycling", "mining", "refining", "separation"},
		Sources: []TextSource{
			{Name: "doe-critical-materials-reports", URL: "https://www.energy.gov/cmm/critical-materials-reports", Label: "DOE/IEA Report"},
			{Name: "doe-eere-critical-materials", URL: "https://www.energy.gov/eere/critical-materials", Label: "DOE/IEA Report"},
			{Name: "iea-critical-minerals-outlook", URL: "https://www.iea.org/reports/critical-minerals-outlook-2023", Label: "DOE/IEA Report"},
			{Name: "usgs-mineral-commodity-summaries", URL: "https://www.usgs.gov/centers/nmic/mineral-commodity-summaries", Label: "USGS"},
		},
		BottleneckKeywords: []string{
			"energy-intensive",
			"inefficient",
			"slow process",
			"high cost",
			"low yield",
			"separation challenge",
			"requires high temperature",
			"long processing time",
			"environmental impact",
			"safety concerns",
			"bottleneck",
			"limitation",
			"challenge",
		},
		IndustryTags: []string{"battery", "lithium", "recycling", "mining", "refining", "separation"},
		ProcessTags:  []string{"recycling", "extraction", "refining", "separation", "smelting", "leaching", "calcination", "purification"},
		KnownCompanies: map[string][]model.Company{
			"battery": {
				{Name: "Northvolt", Source: model.CompanySourceWebSearch, Description: "Battery manufacturing and recycling"},
				{Name: "6K Energy", Source: model.CompanySourceWebSearch, Description: "Battery materials"},
				{Name: "Redwood Materials", Source: model.CompanySourceWebSearch, Description: "Battery recycling"},
			},
			"lithium": {
				{Name: "Livent", Source: model.CompanySourceWebSearch, Description: "Lithium production"},
				{Name: "Albemarle", Source: model.CompanySourceWebSearch, Description: "Lithium chemicals"},
				{Name: "SQM", Source: model.CompanySourceWebSearch, Description: "Lithium from brines"},
			},
			"recycling": {
				{Name: "Li-Cycle", Source: model.CompanySourceWebSearch, Description: "Lithium-ion battery recycling"},
				{Name: "Ascend Elements", Source: model.CompanySourceWebSearch, Description: "Battery material recycling"},
			},
		},
	}
}
