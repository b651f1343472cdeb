package domain

// Outcome is the tagged result of an admission decision. Rejections are
// normal control flow, not errors; callers branch on the value and the
// string form doubles as the stable wire reason code.
type Outcome string

const (
	OutcomeGranted           Outcome = "granted"
	OutcomeRateLimited       Outcome = "rate_limited"
	OutcomeInvalidChallenge  Outcome = "invalid_challenge"
	OutcomeEventNotFound     Outcome = "event_not_found"
	OutcomeCapacityExhausted Outcome = "capacity_exhausted"
	OutcomeAlreadyRegistered Outcome = "already_registered"
	OutcomeStoreUnavailable  Outcome = "store_unavailable"
)

func (o Outcome) Granted() bool {
	return o == OutcomeGranted
}
