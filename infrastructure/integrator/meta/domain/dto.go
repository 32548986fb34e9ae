package metadomain

// DTOs espelham 1:1 os campos crus retornados pela API do Meta. Nenhuma
// transformação acontece aqui; coerção numérica é responsabilidade do
// transformador.

type AdAccount struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Currency      string   `json:"currency"`
	AccountStatus int      `json:"account_status"`
	Capabilities  []string `json:"capabilities"`
}

type Campaign struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Objective string `json:"objective"`
}

type AdSet struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaign_id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
}

type Ad struct {
	ID      string `json:"id"`
	AdSetID string `json:"adset_id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
}

// Insight é uma linha de métricas por anúncio e dia. Os campos numéricos
// chegam como texto da API.
type Insight struct {
	AdID        string `json:"ad_id"`
	AccountID   string `json:"account_id"`
	DateStart   string `json:"date_start"`
	DateStop    string `json:"date_stop"`
	Spend       string `json:"spend"`
	Impressions string `json:"impressions"`
	Clicks      string `json:"clicks"`
	Reach       string `json:"reach"`
}

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

type Paging struct {
	Cursors Cursors `json:"cursors"`
	Next    string  `json:"next"`
}
