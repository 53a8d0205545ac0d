package enums

import "fmt"

// QuotationCategory tags what a quotation covers.
type QuotationCategory string

const (
	QuotationCategoryEquipment   QuotationCategory = "Equipment"
	QuotationCategoryServices    QuotationCategory = "Services"
	QuotationCategorySupplies    QuotationCategory = "Supplies"
	QuotationCategoryMaintenance QuotationCategory = "Maintenance"
	QuotationCategoryOther       QuotationCategory = "Other"
)

var validQuotationCategories = []QuotationCategory{
	QuotationCategoryEquipment,
	QuotationCategoryServices,
	QuotationCategorySupplies,
	QuotationCategoryMaintenance,
	QuotationCategoryOther,
}

// String implements fmt.Stringer.
func (c QuotationCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known QuotationCategory.
func (c QuotationCategory) IsValid() bool {
	for _, candidate := range validQuotationCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseQuotationCategory converts raw input into a QuotationCategory.
func ParseQuotationCategory(value string) (QuotationCategory, error) {
	for _, candidate := range validQuotationCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quotation category %q", value)
}
