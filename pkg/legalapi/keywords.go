package legalapi

// Keyword sets behind the EFRSB convenience calls. Extend the vocabulary
// here, not the resolver. Sets are kept small so the strict all-keywords
// pass can actually match a sanely named operation; the loose pass still
// covers exotic schemas.
var (
	searchKeywords = []string{"efrsb", "search"}

	debtorKeywords = []string{"efrsb", "debtor"}

	caseKeywords = []string{"efrsb", "case"}

	noticeKeywords = []string{"efrsb", "notice"}
)
