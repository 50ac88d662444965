// Package sections holds the catalog of extractable sections per SEC
// filing type, using the item codes the extraction API understands.
package sections

import (
	"errors"
	"fmt"
	"strings"
)

type FilingType string

const (
	FilingType10K FilingType = "10-K"
	FilingType10Q FilingType = "10-Q"
	FilingType8K  FilingType = "8-K"
)

var ErrUnknownFilingType = errors.New("unknown filing type")
var ErrUnknownSection = errors.New("unknown section")

type Section struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

var catalog = map[FilingType][]Section{
	FilingType10K: {
		{ID: "1", Description: "Business"},
		{ID: "1A", Description: "Risk Factors"},
		{ID: "1B", Description: "Unresolved Staff Comments"},
		{ID: "2", Description: "Properties"},
		{ID: "3", Description: "Legal Proceedings"},
		{ID: "4", Description: "Mine Safety Disclosures"},
		{ID: "5", Description: "Market for Registrant's Common Equity"},
		{ID: "6", Description: "Selected Financial Data"},
		{ID: "7", Description: "Management's Discussion and Analysis"},
		{ID: "7A", Description: "Quantitative and Qualitative Disclosures About Market Risk"},
		{ID: "8", Description: "Financial Statements and Supplementary Data"},
		{ID: "9", Description: "Changes in and Disagreements with Accountants"},
		{ID: "9A", Description: "Controls and Procedures"},
		{ID: "9B", Description: "Other Information"},
		{ID: "10", Description: "Directors, Executive Officers and Corporate Governance"},
		{ID: "11", Description: "Executive Compensation"},
		{ID: "12", Description: "Security Ownership of Certain Beneficial Owners"},
		{ID: "13", Description: "Certain Relationships and Related Transactions"},
		{ID: "14", Description: "Principal Accountant Fees and Services"},
		{ID: "15", Description: "Exhibits and Financial Statement Schedules"},
	},
	FilingType10Q: {
		{ID: "part1item1", Description: "Financial Statements"},
		{ID: "part1item2", Description: "Management's Discussion and Analysis"},
		{ID: "part1item3", Description: "Quantitative and Qualitative Disclosures About Market Risk"},
		{ID: "part1item4", Description: "Controls and Procedures"},
		{ID: "part2item1", Description: "Legal Proceedings"},
		{ID: "part2item1a", Description: "Risk Factors"},
		{ID: "part2item2", Description: "Unregistered Sales of Equity Securities"},
		{ID: "part2item3", Description: "Defaults Upon Senior Securities"},
		{ID: "part2item4", Description: "Mine Safety Disclosures"},
		{ID: "part2item5", Description: "Other Information"},
		{ID: "part2item6", Description: "Exhibits"},
	},
	FilingType8K: {
		{ID: "1-1", Description: "Entry into a Material Definitive Agreement"},
		{ID: "1-2", Description: "Termination of a Material Definitive Agreement"},
		{ID: "2-1", Description: "Completion of Acquisition or Disposition of Assets"},
		{ID: "2-2", Description: "Results of Operations and Financial Condition"},
		{ID: "3-1", Description: "Notice of Delisting"},
		{ID: "4-1", Description: "Changes in Registrant's Certifying Accountant"},
		{ID: "5-1", Description: "Changes in Control of Registrant"},
		{ID: "5-2", Description: "Departure or Election of Directors and Officers"},
		{ID: "7-1", Description: "Regulation FD Disclosure"},
		{ID: "8-1", Description: "Other Events"},
		{ID: "9-1", Description: "Financial Statements and Exhibits"},
	},
}

// FilingTypes returns the supported filing types in a stable order.
func FilingTypes() []FilingType {
	return []FilingType{FilingType10K, FilingType10Q, FilingType8K}
}

// Catalog returns the ordered section list for a filing type.
func Catalog(ft FilingType) ([]Section, error) {
	sections, ok := catalog[ft]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilingType, ft)
	}
	return sections, nil
}

func ParseFilingType(raw string) (FilingType, error) {
	ft := FilingType(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := catalog[ft]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFilingType, raw)
	}
	return ft, nil
}

// DetectFilingType guesses the filing type from the filing URL the way
// EDGAR names its documents (e.g. "tsla-10k_20201231.htm").
func DetectFilingType(filingURL string) (FilingType, error) {
	lowered := strings.ToLower(filingURL)
	switch {
	case strings.Contains(lowered, "10-k") || strings.Contains(lowered, "10k"):
		return FilingType10K, nil
	case strings.Contains(lowered, "10-q") || strings.Contains(lowered, "10q"):
		return FilingType10Q, nil
	case strings.Contains(lowered, "8-k") || strings.Contains(lowered, "8k"):
		return FilingType8K, nil
	}
	return "", fmt.Errorf("%w: cannot detect filing type from url", ErrUnknownFilingType)
}

// Validate checks that every requested section id exists in the filing
// type's catalog.
func Validate(ft FilingType, ids []string) error {
	sections, err := Catalog(ft)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(sections))
	for _, s := range sections {
		known[s.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: %q is not a %s section", ErrUnknownSection, id, ft)
		}
	}
	return nil
}
