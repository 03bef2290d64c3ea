package llm

import "context"

// UnconfiguredProvider stands in when no backend could be set up. Every
// call fails as unavailable, so callers show their usual fallback text.
type UnconfiguredProvider struct {
	Reason error
}

func (u *UnconfiguredProvider) Generate(context.Context, Request) (*Response, error) {
	return nil, &ErrProviderUnavailable{Err: u.Reason}
}

func (u *UnconfiguredProvider) ModelID() string { return "unconfigured" }
