package application

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ericfisherdev/pinvault/internal/domain/model"
)

// CompareSiteNames orders site names case-insensitively, placing names that
// start with an ASCII digit before all other names. It returns a negative
// number when a sorts first, zero when equal and a positive number otherwise.
func CompareSiteNames(a, b string) int {
	upperA := strings.ToUpper(a)
	upperB := strings.ToUpper(b)

	digitA := startsWithDigit(upperA)
	digitB := startsWithDigit(upperB)

	switch {
	case digitA && !digitB:
		return -1
	case !digitA && digitB:
		return 1
	default:
		return strings.Compare(upperA, upperB)
	}
}

// SortRecords returns a copy of records ordered by CompareSiteNames. Records
// with equal names keep their relative order.
func SortRecords(records []model.CredentialRecord) []model.CredentialRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b model.CredentialRecord) int {
		return CompareSiteNames(a.SiteName, b.SiteName)
	})
	return sorted
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r >= '0' && r <= '9'
}
