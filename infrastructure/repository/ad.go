package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lfvieira/ads-sync-api/infrastructure/database/postgres"
	"github.com/lfvieira/ads-sync-api/internal/domain"
)

const adsTable = "ads"

type AdRepository interface {
	ExistsByID(externalID string) (bool, error)
	Insert(ad *domain.Ad) error
	Update(ad *domain.Ad) error
	Count() (int64, error)
}

type adRepository struct {
	conn *postgres.Connection
}

func NewAdRepository(conn *postgres.Connection) AdRepository {
	return &adRepository{
		conn: conn,
	}
}

func (r *adRepository) ExistsByID(externalID string) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		From(adsTable).
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
		return false, fmt.Errorf("erro ao verificar existência do anúncio: %w", err)
	}

	return true, nil
}

func (r *adRepository) Insert(ad *domain.Ad) error {
	query, args, err := squirrel.
		Insert(adsTable).
		Columns("external_id", "adset_id", "account_id", "name", "status").
		Values(
			ad.ExternalID,
			ad.AdSetID,
			ad.AccountID,
			ad.Name,
			ad.Status,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao inserir anúncio: %w", err)
	}

	return nil
}

func (r *adRepository) Update(ad *domain.Ad) error {
	query, args, err := squirrel.
		Update(adsTable).
		Set("name", ad.Name).
		Set("status", ad.Status).
		Where(squirrel.Eq{"external_id": ad.ExternalID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao atualizar anúncio: %w", err)
	}

	return nil
}

func (r *adRepository) Count() (int64, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From(adsTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var count int64
	if err := r.conn.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("erro ao contar anúncios: %w", err)
	}

	return count, nil
}
