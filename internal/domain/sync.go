package domain

import (
	"fmt"
	"time"
)

// SyncStage identifica o nível da hierarquia em que uma falha aconteceu.
type SyncStage string

const (
	SyncStageAccounts  SyncStage = "accounts"
	SyncStageCampaigns SyncStage = "campaigns"
	SyncStageAdSets    SyncStage = "adsets"
	SyncStageAds       SyncStage = "ads"
	SyncStageInsights  SyncStage = "insights"
)

// SyncFailure registra uma falha isolada no escopo de uma conta. A falha
// aborta apenas o restante da subárvore daquela conta, nunca as contas irmãs.
type SyncFailure struct {
	AccountID string
	Stage     SyncStage
	Err       error
}

func (f SyncFailure) Error() string {
	return fmt.Sprintf("sync falhou para conta %s na etapa %s: %v", f.AccountID, f.Stage, f.Err)
}

func (f SyncFailure) Unwrap() error {
	return f.Err
}

// SyncReport é o resultado agregado de uma execução de sincronização. Erros
// são propagados como valores aqui dentro, nunca por panic entre componentes.
type SyncReport struct {
	StartedAt      time.Time
	FinishedAt     time.Time
	AccountsTotal  int
	AccountsSynced int
	Failures       []SyncFailure
}

// Succeeded informa se a execução terminou sem nenhuma falha registrada.
func (r *SyncReport) Succeeded() bool {
	return len(r.Failures) == 0
}

// SyncStatus combina contagens do armazenamento local com um teste de
// conectividade contra a API remota.
type SyncStatus struct {
	IsConnected    bool  `json:"is_connected"`
	AccountCount   int64 `json:"account_count"`
	CampaignCount  int64 `json:"campaign_count"`
	AdSetCount     int64 `json:"adset_count"`
	AdCount        int64 `json:"ad_count"`
	ReportingCount int64 `json:"reporting_count"`
}
