package domain

// Campaign pertence a uma conta de anúncios. Objective é opcional na API e
// recebe o valor padrão "UNKNOWN" quando ausente.
type Campaign struct {
	ExternalID string
	AccountID  string
	Name       string
	Status     string
	Objective  string
}
