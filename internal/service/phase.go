package service

import (
	"regexp"
	"strings"

	"github.com/pkordes/wayfarer/internal/domain"
)

// Phase vocabularies. Terms match on word boundaries, so "now" does not
// match "know" and "pack" does not match "backpack". Stems end in \w*.
var (
	preTripVocabulary = vocabulary(
		`visas?`, `vaccin\w*`, `immuni[sz]\w*`, `passports?`, `packing`, `pack`,
		`documents?`, `insurance`, `before i go`, `before leaving`, `prepare`,
		`preparation`, `preparing`, `checklist`, `what to bring`, `entry requirements?`,
		`travel advisory`, `departure`,
	)
	inTripVocabulary = vocabulary(
		`here`, `now`, `right now`, `currently`, `emergency`, `help`, `lost`,
		`directions?`, `nearby`, `near me`, `where is`, `i'?m at`, `i am at`,
		`stuck`, `missed my`, `translate`, `how do i get`,
	)
	postTripVocabulary = vocabulary(
		`feedback`, `loved`, `trip was`, `next time`, `reviews?`, `rate my`,
		`got back`, `came back`, `just returned`, `looking back`, `enjoyed`,
		`was amazing`, `was terrible`,
	)
)

func vocabulary(terms ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(terms, "|") + `)\b`)
}

// ClassifyPhase decides which trip phase a message belongs to. The first
// matching rule wins: pre-trip vocabulary, then in-trip vocabulary or an
// active trip on the session, then post-trip vocabulary, else planning.
func ClassifyPhase(message string, sess domain.Session) domain.Phase {
	switch {
	case preTripVocabulary.MatchString(message):
		return domain.PhasePreTrip
	case inTripVocabulary.MatchString(message), sess.HasActiveTrip():
		return domain.PhaseInTrip
	case postTripVocabulary.MatchString(message):
		return domain.PhasePostTrip
	default:
		return domain.PhasePlanning
	}
}
