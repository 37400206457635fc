package remote

import "context"

// Verifier caches the result of one configuration check. Callers create one
// per unit of work (request or task) and share it among the code paths that
// would otherwise each re-check; the cache dies with the caller, so tests
// reset it by constructing a new one.
type Verifier struct {
	client  Client
	checked bool
	err     error
}

func NewVerifier(client Client) *Verifier {
	return &Verifier{client: client}
}

// Verified reports whether the provider passed its configuration check,
// performing the check on first call only.
func (v *Verifier) Verified(ctx context.Context) bool {
	if !v.checked {
		v.err = v.client.CheckConfiguration(ctx)
		v.checked = true
	}
	return v.err == nil
}

// Err returns the cached check error, if any. Only meaningful after Verified.
func (v *Verifier) Err() error {
	return v.err
}
