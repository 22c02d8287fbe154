package core

// Provider turns a provider's local data plus its configuration into a
// finalized snapshot. Implementations extract a PartialUsage and hand it to
// MergeUsage; they never set status or source themselves.
type Provider interface {
	Name() ProviderName

	Collect(cfg ProviderConfig) ProviderSnapshot
}
