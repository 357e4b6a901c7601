package posting

import "errors"

// Typed errors for the posting guard. Handlers map these to HTTP
// statuses and the machine-readable limit flags the frontend prompts
// upgrades with.
var (
	// ErrEmployerNotFound means no employer exists with that email.
	ErrEmployerNotFound = errors.New("employer not found")

	// ErrQuotaExceeded means the plan's Active-post quota is used up.
	ErrQuotaExceeded = errors.New("job post limit reached")

	// ErrNoBoostsRemaining means the boost counter is at zero.
	ErrNoBoostsRemaining = errors.New("no boosts remaining")

	// ErrAlreadyPromoted means the job is already premium; promoting it
	// again would burn a boost for nothing.
	ErrAlreadyPromoted = errors.New("job is already promoted")

	// ErrJobNotFound means the job does not exist or does not belong to
	// the requesting employer.
	ErrJobNotFound = errors.New("job not found")
)
