package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/lfvieira/ads-sync-api/infrastructure/database/postgres"
	"github.com/lfvieira/ads-sync-api/internal/domain"
	"github.com/lfvieira/ads-sync-api/pkg/utils"
)

const adInsightsTable = "ad_insights"

// InsightRepository persiste as métricas diárias de anúncios. BatchInsert é um
// upsert nativo pela chave (entity_id, date): reexecutar a sincronização de uma
// data já coberta atualiza a linha existente em vez de duplicá-la.
type InsightRepository interface {
	BatchInsert(records []*domain.InsightRecord) error
	Count() (int64, error)
	GetByEntityIDAndDate(entityID string, date time.Time) (*domain.InsightRecord, error)
}

type insightRepository struct {
	conn *postgres.Connection
}

func NewInsightRepository(conn *postgres.Connection) InsightRepository {
	return &insightRepository{
		conn: conn,
	}
}

func (r *insightRepository) BatchInsert(records []*domain.InsightRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := squirrel.StatementBuilder.
		Insert(adInsightsTable).
		Columns("id", "entity_id", "account_id", "date", "spend", "impressions", "clicks", "reach").
		PlaceholderFormat(squirrel.Dollar)

	for _, record := range records {
		id := record.ID
		if id == "" {
			generated, err := utils.GenerateID()
			if err != nil {
				return fmt.Errorf("erro ao gerar id do insight: %w", err)
			}
			id = generated
		}

		query = query.Values(
			id,
			record.EntityID,
			record.AccountID,
			record.Date.Format("2006-01-02"),
			record.Spend,
			record.Impressions,
			record.Clicks,
			record.Reach,
		)
	}

	query = query.Suffix(`
		ON CONFLICT (entity_id, date) DO UPDATE SET
			spend = EXCLUDED.spend,
			impressions = EXCLUDED.impressions,
			clicks = EXCLUDED.clicks,
			reach = EXCLUDED.reach
	`)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(sqlQuery, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro de banco de dados: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao inserir insights em lote: %w", err)
	}

	return nil
}

func (r *insightRepository) Count() (int64, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From(adInsightsTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var count int64
	if err := r.conn.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("erro ao contar insights: %w", err)
	}

	return count, nil
}

func (r *insightRepository) GetByEntityIDAndDate(entityID string, date time.Time) (*domain.InsightRecord, error) {
	query, args, err := squirrel.
		Select("id", "entity_id", "account_id", "date", "spend", "impressions", "clicks", "reach").
		From(adInsightsTable).
		Where(squirrel.Eq{"entity_id": entityID, "date": date.Format("2006-01-02")}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	record := &domain.InsightRecord{}
	row := r.conn.QueryRow(query, args...)
	if err := row.Scan(
		&record.ID,
		&record.EntityID,
		&record.AccountID,
		&record.Date,
		&record.Spend,
		&record.Impressions,
		&record.Clicks,
		&record.Reach,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear insight: %w", err)
	}

	return record, nil
}
