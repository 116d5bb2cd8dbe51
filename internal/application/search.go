package application

import (
	"strings"

	"github.com/ericfisherdev/pinvault/internal/domain/model"
)

// MatchTier reports which field group of a record matched a search term.
// Tiers are checked in declaration order; any tier other than TierNone
// includes the record.
type MatchTier int

const (
	// TierNone indicates the record did not match.
	TierNone MatchTier = iota
	// TierSiteName indicates the site name contains the term.
	TierSiteName
	// TierKeyword indicates the keyword string contains the term.
	TierKeyword
	// TierDetails indicates the memo, URL or username contains the term.
	TierDetails
)

// String returns the wire name of the tier.
func (t MatchTier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierSiteName:
		return "site_name"
	case TierKeyword:
		return "keyword"
	case TierDetails:
		return "details"
	default:
		return "unknown"
	}
}

// SearchHit pairs a record with the tier it matched on.
type SearchHit struct {
	Record model.CredentialRecord
	Tier   MatchTier
}

// MatchRecord returns the first tier at which rec contains term, ignoring
// case. An empty term matches every record at TierSiteName.
func MatchRecord(term string, rec model.CredentialRecord) MatchTier {
	needle := strings.ToLower(term)

	if strings.Contains(strings.ToLower(rec.SiteName), needle) {
		return TierSiteName
	}

	if rec.Keyword != "" && strings.Contains(strings.ToLower(rec.Keyword), needle) {
		return TierKeyword
	}

	if strings.Contains(strings.ToLower(rec.Memo), needle) ||
		strings.Contains(strings.ToLower(rec.URL), needle) ||
		strings.Contains(strings.ToLower(rec.Username), needle) {
		return TierDetails
	}

	return TierNone
}

// SearchRecords filters sorted down to the records matching term, keeping
// the input order and recording each hit's tier.
func SearchRecords(term string, sorted []model.CredentialRecord) []SearchHit {
	hits := make([]SearchHit, 0, len(sorted))
	for _, rec := range sorted {
		if tier := MatchRecord(term, rec); tier != TierNone {
			hits = append(hits, SearchHit{Record: rec, Tier: tier})
		}
	}
	return hits
}

// FilterRecords is SearchRecords without the tier annotation.
func FilterRecords(term string, sorted []model.CredentialRecord) []model.CredentialRecord {
	hits := SearchRecords(term, sorted)
	out := make([]model.CredentialRecord, len(hits))
	for i, hit := range hits {
		out[i] = hit.Record
	}
	return out
}
