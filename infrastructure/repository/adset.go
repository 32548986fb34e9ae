package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lfvieira/ads-sync-api/infrastructure/database/postgres"
	"github.com/lfvieira/ads-sync-api/internal/domain"
)

const adSetsTable = "ad_sets"

type AdSetRepository interface {
	ExistsByID(externalID string) (bool, error)
	Insert(adSet *domain.AdSet) error
	Update(adSet *domain.AdSet) error
	Count() (int64, error)
}

type adSetRepository struct {
	conn *postgres.Connection
}

func NewAdSetRepository(conn *postgres.Connection) AdSetRepository {
	return &adSetRepository{
		conn: conn,
	}
}

func (r *adSetRepository) ExistsByID(externalID string) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		From(adSetsTable).
		Where(squirrel.Eq{"external_id": externalID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var one int
	if err := r.conn.QueryRow(query, args...).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("erro ao verificar existência do conjunto de anúncios: %w", err)
	}

	return true, nil
}

func (r *adSetRepository) Insert(adSet *domain.AdSet) error {
	query, args, err := squirrel.
		Insert(adSetsTable).
		Columns("external_id", "campaign_id", "account_id", "name", "status").
		Values(
			adSet.ExternalID,
			adSet.CampaignID,
			adSet.AccountID,
			adSet.Name,
			adSet.Status,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao inserir conjunto de anúncios: %w", err)
	}

	return nil
}

func (r *adSetRepository) Update(adSet *domain.AdSet) error {
	query, args, err := squirrel.
		Update(adSetsTable).
		Set("name", adSet.Name).
		Set("status", adSet.Status).
		Where(squirrel.Eq{"external_id": adSet.ExternalID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao atualizar conjunto de anúncios: %w", err)
	}

	return nil
}

func (r *adSetRepository) Count() (int64, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From(adSetsTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var count int64
	if err := r.conn.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("erro ao contar conjuntos de anúncios: %w", err)
	}

	return count, nil
}
