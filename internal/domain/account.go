package domain

type AdAccountStatus string

const (
	AdAccountStatusActive   AdAccountStatus = "ACTIVE"
	AdAccountStatusDisabled AdAccountStatus = "DISABLED"
	AdAccountStatusUnknown  AdAccountStatus = "UNKNOWN"
)

// AdAccount é a conta de anúncios como persistimos localmente. O identificador
// é o id opaco da plataforma remota e nunca muda depois de criado.
type AdAccount struct {
	ExternalID              string
	Name                    string
	Currency                string
	Status                  AdAccountStatus
	CanCreateAds            bool
	CanUseReachAndFrequency bool
}
