package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/lfvieira/ads-sync-api/infrastructure/database/postgres"
	"github.com/lfvieira/ads-sync-api/internal/domain"
)

const accountsTable = "ad_accounts"

// AccountRepository é o contrato de armazenamento das contas de anúncio.
// A decisão insert-ou-update é sempre do chamador, via ExistsByID.
type AccountRepository interface {
	ExistsByID(externalID string) (bool, error)
	Insert(account *domain.AdAccount) error
	Update(account *domain.AdAccount) error
	Count() (int64, error)
	ListAccounts() ([]*domain.AdAccount, error)
}

type accountRepository struct {
	conn *postgres.Connection
}

func NewAccountRepository(conn *postgres.Connection) AccountRepository {
	return &accountRepository{
		conn: conn,
	}
}

func (r *accountRepository) ExistsByID(externalID string) (bool, error) {
	query, args, err := squirrel.
		Select("1").
		From(accountsTable).
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
		return false, fmt.Errorf("erro ao verificar existência da conta: %w", err)
	}

	return true, nil
}

func (r *accountRepository) Insert(account *domain.AdAccount) error {
	query, args, err := squirrel.
		Insert(accountsTable).
		Columns("external_id", "name", "currency", "status", "can_create_ads", "can_use_reach_and_frequency").
		Values(
			account.ExternalID,
			account.Name,
			account.Currency,
			account.Status,
			account.CanCreateAds,
			account.CanUseReachAndFrequency,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro de banco de dados: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao inserir conta: %w", err)
	}

	return nil
}

// Update atualiza apenas os campos descritivos. O external_id é imutável.
func (r *accountRepository) Update(account *domain.AdAccount) error {
	query, args, err := squirrel.
		Update(accountsTable).
		Set("name", account.Name).
		Set("currency", account.Currency).
		Set("status", account.Status).
		Set("can_create_ads", account.CanCreateAds).
		Set("can_use_reach_and_frequency", account.CanUseReachAndFrequency).
		Where(squirrel.Eq{"external_id": account.ExternalID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("erro ao atualizar conta: %w", err)
	}

	return nil
}

func (r *accountRepository) Count() (int64, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From(accountsTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var count int64
	if err := r.conn.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("erro ao contar contas: %w", err)
	}

	return count, nil
}

func (r *accountRepository) ListAccounts() ([]*domain.AdAccount, error) {
	query, args, err := squirrel.
		Select("external_id", "name", "currency", "status", "can_create_ads", "can_use_reach_and_frequency").
		From(accountsTable).
		OrderBy("external_id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar contas: %w", err)
	}
	defer rows.Close()

	accounts := make([]*domain.AdAccount, 0)
	for rows.Next() {
		acc := &domain.AdAccount{}
		if err := rows.Scan(
			&acc.ExternalID,
			&acc.Name,
			&acc.Currency,
			&acc.Status,
			&acc.CanCreateAds,
			&acc.CanUseReachAndFrequency,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear conta: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return accounts, nil
}
