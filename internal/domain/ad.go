package domain

// Ad pertence a um conjunto de anúncios.
type Ad struct {
	ExternalID string
	AdSetID    string
	AccountID  string
	Name       string
	Status     string
}
