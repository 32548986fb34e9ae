package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lfvieira/ads-sync-api/infrastructure/database/postgres"
	"github.com/lfvieira/ads-sync-api/internal/domain"
)

const campaignsTable = "campaigns"

type CampaignRepository interface {
	ExistsByID(externalID string) (bool, error)
	Insert(campaign *domain.Campaign) error
	Update(campaign *domain.Campaign) error
	Count() (int64, error)
}

type campaignRepository struct {
	conn *postgres.Connection
}

func NewCampaignRepository(conn *postgres.Connection) CampaignRepository {
	return &campaignRepository{
		conn: conn,
	}
}

func (r *campaignRepository) ExistsByID(externalID string) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		From(campaignsTable).
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
		return false, fmt.Errorf("erro ao verificar existência da campanha: %w", err)
	}

	return true, nil
}

func (r *campaignRepository) Insert(campaign *domain.Campaign) error {
	query, args, err := squirrel.
		Insert(campaignsTable).
		Columns("external_id", "account_id", "name", "status", "objective").
		Values(
			campaign.ExternalID,
			campaign.AccountID,
			campaign.Name,
			campaign.Status,
			campaign.Objective,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao inserir campanha: %w", err)
	}

	return nil
}

// Update atualiza apenas os campos descritivos. O vínculo com a conta não muda.
func (r *campaignRepository) Update(campaign *domain.Campaign) error {
	query, args, err := squirrel.
		Update(campaignsTable).
		Set("name", campaign.Name).
		Set("status", campaign.Status).
		Set("objective", campaign.Objective).
		Where(squirrel.Eq{"external_id": campaign.ExternalID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao atualizar campanha: %w", err)
	}

	return nil
}

func (r *campaignRepository) Count() (int64, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From(campaignsTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var count int64
	if err := r.conn.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("erro ao contar campanhas: %w", err)
	}

	return count, nil
}
