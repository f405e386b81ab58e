package model

// CompanySource names the feed a company was discovered through.
type CompanySource string

const (
	CompanySourceLinkedIn  CompanySource = "LinkedIn"
	CompanySourceWebSearch CompanySource = "WebSearch"
)

// MaxCompanies caps the companies attached to one opportunity.
const MaxCompanies = 10

// Company is a candidate partner or licensee. Name is the identity: it is
// compared case-sensitively and the first record seen wins.
type Company struct {
	Name        string        `json:"name" yaml:"name"`
	Source      CompanySource `json:"source" yaml:"source"`
	Description string        `json:"description,omitempty" yaml:"description"`
}
