// Package catalog loads the versioned reference data the pipeline runs
// against: keyword sets, tracked industries, report sources, seed companies,
// and the capability catalog. Catalogs are read once and then only shared
// by value or read-only reference.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/internal/resilience"
)

// TextSource is a public report page scanned for bottleneck language.
type TextSource struct {
	Name  string `yaml:"name" json:"name"`
	URL   string `yaml:"url" json:"url"`
	Label string `yaml:"label" json:"label"`
}

// Industries is the industry catalog: what to scan, how to tag it, and who
// is already known to operate in each industry.
type Industries struct {
	Version            string                     `yaml:"version"`
	Tracked            []string                   `yaml:"industries"`
	Sources            []TextSource               `yaml:"sources"`
	BottleneckKeywords []string                   `yaml:"bottleneck_keywords"`
	IndustryTags       []string                   `yaml:"industry_tags"`
	ProcessTags        []string                   `yaml:"process_tags"`
	KnownCompanies     map[string][]model.Company `yaml:"known_companies"`
}

// Capability is one entry of the technology owner's capability catalog.
type Capability struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Capabilities is the capability catalog used as matching criteria.
type Capabilities struct {
	Owner        string       `yaml:"owner"`
	Technology   string       `yaml:"technology"`
	Capabilities []Capability `yaml:"unique_capabilities"`
	CurrentFocus []string     `yaml:"current_focus"`
}

// Format renders the catalog as the "- name: description" list used in
// oracle prompts.
func (c Capabilities) Format() string {
	lines := make([]string, 0, len(c.Capabilities))
	for _, cap := range c.Capabilities {
		lines = append(lines, fmt.Sprintf("- %s: %s", cap.Name, cap.Description))
	}
	return strings.Join(lines, "\n")
}

// Empty reports whether the catalog lists no capabilities.
func (c Capabilities) Empty() bool {
	return len(c.Capabilities) == 0
}

// SeedKeys returns the known-company keys in sorted order so lookups do not
// depend on map iteration.
func (ind Industries) SeedKeys() []string {
	keys := make([]string, 0, len(ind.KnownCompanies))
	for k := range ind.KnownCompanies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadIndustries reads the industry catalog from path. Lists left out of the
// file fall back to DefaultIndustries. A missing file is reported as
// ErrConfigurationMissing.
func LoadIndustries(path string) (*Industries, error) {
	data, err := readCatalog(path, "industry catalog")
	if err != nil {
		return nil, err
	}

	var ind Industries
	if err := yaml.Unmarshal(data, &ind); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse industry catalog %s", path)
	}
	ind.fillDefaults()
	if err := ind.Validate(); err != nil {
		return nil, err
	}
	return &ind, nil
}

// LoadCapabilities reads the capability catalog from path.
func LoadCapabilities(path string) (*Capabilities, error) {
	data, err := readCatalog(path, "capability catalog")
	if err != nil {
		return nil, err
	}

	var caps Capabilities
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse capability catalog %s", path)
	}
	if caps.Empty() {
		return nil, eris.Wrapf(resilience.ConfigurationMissing("capability catalog"), "catalog: %s lists no capabilities", path)
	}
	return &caps, nil
}

func readCatalog(path, what string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, eris.Wrap(resilience.ConfigurationMissing(what), "catalog: no path configured")
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrapf(resilience.ConfigurationMissing(what), "catalog: %s not found", path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}
	return data, nil
}

// Validate checks the invariants the extractor relies on.
func (ind Industries) Validate() error {
	var errs []string
	if len(ind.BottleneckKeywords) == 0 {
		errs = append(errs, "bottleneck_keywords is empty")
	}
	if len(ind.IndustryTags) == 0 {
		errs = append(errs, "industry_tags is empty")
	}
	for i, tag := range ind.IndustryTags {
		if strings.TrimSpace(tag) == "" {
			errs = append(errs, fmt.Sprintf("industry_tags[%d] is blank", i))
		}
	}
	for key, companies := range ind.KnownCompanies {
		for i, c := range companies {
			if strings.TrimSpace(c.Name) == "" {
				errs = append(errs, fmt.Sprintf("known_companies.%s[%d] has no name", key, i))
			}
		}
	}
	if len(errs) > 0 {
		return eris.Errorf("catalog: industry catalog invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (ind *Industries) fillDefaults() {
	def := DefaultIndustries()
	if len(ind.Tracked) == 0 {
		ind.Tracked = def.Tracked
	}
	if len(ind.Sources) == 0 {
		ind.Sources = def.Sources
	}
	if len(ind.BottleneckKeywords) == 0 {
		ind.BottleneckKeywords = def.BottleneckKeywords
	}
	if len(ind.IndustryTags) == 0 {
		ind.IndustryTags = def.IndustryTags
	}
	if len(ind.ProcessTags) == 0 {
		ind.ProcessTags = def.ProcessTags
	}
	if ind.KnownCompanies == nil {
		ind.KnownCompanies = def.KnownCompanies
	}
	for key, companies := range ind.KnownCompanies {
		for i := range companies {
			if companies[i].Source == "" {
				companies[i].Source = model.CompanySourceWebSearch
			}
		}
		ind.KnownCompanies[key] = companies
	}
}
