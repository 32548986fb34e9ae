package domain

import "time"

// InsightRecord é uma linha de métricas diárias de um anúncio. A chave de
// negócio é (EntityID, Date): reprocessar uma data já sincronizada nunca pode
// duplicar linhas.
type InsightRecord struct {
	ID          string
	EntityID    string
	AccountID   string
	Date        time.Time
	Spend       float64
	Impressions int64
	Clicks      int64
	Reach       int64
}
