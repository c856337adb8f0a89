package domain

import "regexp"

// RejectionCategory names the pattern class that caused a message rejection.
type RejectionCategory string

const (
	CategoryPhone        RejectionCategory = "phone"
	CategoryEmail        RejectionCategory = "email"
	CategorySocialHandle RejectionCategory = "social_handle"
)

// ContentRejectedError reports that message content carries disallowed
// contact information. The message is never stored; the sender can edit and
// resubmit.
type ContentRejectedError struct {
	Category RejectionCategory
}

func (e *ContentRejectedError) Error() string {
	return "message content rejected: " + string(e.Category)
}

// Verdict is the outcome of the contact-info check.
type Verdict struct {
	Allowed  bool
	Category RejectionCategory
}

var (
	// Ten or more digits, ignoring common separators between them. The bias
	// is toward false positives: any long digit run reads as a phone number.
	phonePattern = regexp.MustCompile(`(?:\d[\s().+-]*){10}`)

	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// Closed keyword list of messaging apps and their common abbreviations.
	socialPattern = regexp.MustCompile(`(?i)\b(whatsapp|telegram|line|wechat|facebook|instagram|fb|ig)\b`)
)

// CheckContactInfo scans free text for disallowed contact-information
// patterns. Rules apply in order and short-circuit on the first match. The
// function is pure: no state, no I/O, same input always yields the same
// verdict.
func CheckContactInfo(content string) Verdict {
	if phonePattern.MatchString(content) {
		return Verdict{Category: CategoryPhone}
	}
	if emailPattern.MatchString(content) {
		return Verdict{Category: CategoryEmail}
	}
	if socialPattern.MatchString(content) {
		return Verdict{Category: CategorySocialHandle}
	}
	return Verdict{Allowed: true}
}
