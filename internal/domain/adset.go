package domain

// AdSet pertence a uma campanha.
type AdSet struct {
	ExternalID string
	CampaignID string
	AccountID  string
	Name       string
	Status     string
}
