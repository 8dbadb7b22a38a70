package domain

// TierLimit caps how many active tasks a subscription tier allows.
//
// Unlimited is an explicit sentinel rather than a magic negative number: a
// zero or negative cap always rejects.
type TierLimit struct {
	unlimited bool
	max       int
}

// LimitOf returns a finite tier limit.
func LimitOf(max int) TierLimit {
	return TierLimit{max: max}
}

// NoLimit returns the unlimited tier sentinel.
func NoLimit() TierLimit {
	return TierLimit{unlimited: true}
}

// Unlimited reports whether the limit is the no-limit sentinel.
func (l TierLimit) Unlimited() bool {
	return l.unlimited
}

// Max returns the finite cap. Meaningless when Unlimited.
func (l TierLimit) Max() int {
	return l.max
}

// CanActivate reports whether one more task may become active given the
// current active count. It is a pure function with no side effects.
func (l TierLimit) CanActivate(activeCount int) bool {
	if l.unlimited {
		return true
	}
	return activeCount >= 0 && activeCount < l.max
}
