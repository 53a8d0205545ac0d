package enums

import "fmt"

// QuotationStatus is the review state of a vendor quotation.
type QuotationStatus string

const (
	QuotationStatusPending  QuotationStatus = "pending"
	QuotationStatusApproved QuotationStatus = "approved"
	QuotationStatusRejected QuotationStatus = "rejected"
)

var validQuotationStatuses = []QuotationStatus{
	QuotationStatusPending,
	QuotationStatusApproved,
	QuotationStatusRejected,
}

// String implements fmt.Stringer.
func (s QuotationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known QuotationStatus.
func (s QuotationStatus) IsValid() bool {
	for _, candidate := range validQuotationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseQuotationStatus converts raw input into a QuotationStatus.
func ParseQuotationStatus(value string) (QuotationStatus, error) {
	for _, candidate := range validQuotationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quotation status %q", value)
}
