package repository

import (
	"context"
	"fmt"

	"clubbet/database"
	"clubbet/domain/entities"
	"clubbet/domain/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type walletRepository struct {
	q Queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) interfaces.WalletRepository {
	return &walletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository with a transaction
func newWalletRepositoryWithTx(tx Queryable) interfaces.WalletRepository {
	return &walletRepository{q: tx}
}

const walletColumns = `id, user_id, balance, currency, created_at, updated_at`

const transactionColumns = `id, user_id, wallet_id, type, amount, balance_after, description, reference_id, status, created_at`

// GetByUserID retrieves a user's wallet
func (r *walletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	query := fmt.Sprintf(`SELECT %s FROM betting_wallets WHERE user_id = $1`, walletColumns)

	wallet, err := r.scanWallet(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return wallet, nil
}

// Create creates a new wallet
func (r *walletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	query := `
		INSERT INTO betting_wallets (user_id, balance, currency)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.q.QueryRow(ctx, query,
		wallet.UserID,
		wallet.Balance,
		wallet.Currency,
	).Scan(&wallet.ID, &wallet.CreatedAt, &wallet.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// UpdateBalance updates a wallet's balance
func (r *walletRepository) UpdateBalance(ctx context.Context, walletID uuid.UUID, newBalance decimal.Decimal) error {
	query := `
		UPDATE betting_wallets
		SET balance = $2, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, walletID, newBalance)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet %s not found", walletID)
	}

	return nil
}

// RecordTransaction appends a ledger entry
func (r *walletRepository) RecordTransaction(ctx context.Context, tx *entities.Transaction) error {
	query := `
		INSERT INTO betting_transactions (user_id, wallet_id, type, amount, balance_after, description, reference_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		tx.UserID,
		tx.WalletID,
		tx.Type,
		tx.Amount,
		tx.BalanceAfter,
		tx.Description,
		tx.ReferenceID,
		tx.Status,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	return nil
}

// GetTransactionsByUser returns a user's ledger entries, newest first.
// A non-positive limit returns the full history.
func (r *walletRepository) GetTransactionsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM betting_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC`, transactionColumns)

	args := []any{userID}
	if limit > 0 {
		query += " LIMIT $2 OFFSET $3"
		args = append(args, limit, offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	return r.scanTransactions(rows)
}

// GetTransactionsByType returns a user's ledger entries of one type
func (r *walletRepository) GetTransactionsByType(ctx context.Context, userID uuid.UUID, txType entities.TransactionType, limit int) ([]*entities.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM betting_transactions
		WHERE user_id = $1 AND type = $2
		ORDER BY created_at DESC`, transactionColumns)

	args := []any{userID, txType}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by type: %w", err)
	}
	defer rows.Close()

	return r.scanTransactions(rows)
}

func (r *walletRepository) scanWallet(row pgx.Row) (*entities.Wallet, error) {
	var wallet entities.Wallet
	err := row.Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Balance,
		&wallet.Currency,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *walletRepository) scanTransactions(rows pgx.Rows) ([]*entities.Transaction, error) {
	var transactions []*entities.Transaction
	for rows.Next() {
		var tx entities.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.WalletID,
			&tx.Type,
			&tx.Amount,
			&tx.BalanceAfter,
			&tx.Description,
			&tx.ReferenceID,
			&tx.Status,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}
	return transactions, nil
}
