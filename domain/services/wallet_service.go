package services

import (
	"context"
	"fmt"

	"clubbet/config"
	"clubbet/domain/entities"
	"clubbet/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type walletService struct {
	walletRepo interfaces.WalletRepository
}

// NewWalletService creates a new wallet service. The repository is expected
// to be transaction-scoped so a ledger entry and its balance update commit
// atomically.
func NewWalletService(walletRepo interfaces.WalletRepository) interfaces.WalletService {
	return &walletService{walletRepo: walletRepo}
}

// GetOrCreateWallet returns the user's wallet, creating it with the
// configured starting balance on first use
func (s *walletService) GetOrCreateWallet(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet = &entities.Wallet{
		UserID:   userID,
		Balance:  decimal.NewFromInt(config.Get().StartingBalance),
		Currency: entities.DefaultCurrency,
	}
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"balance": wallet.Balance,
	}).Info("Created wallet")

	return wallet, nil
}

// Balance returns the user's current balance
func (s *walletService) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

// HasSufficientBalance reports whether the balance covers the amount
func (s *walletService) HasSufficientBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance.GreaterThanOrEqual(amount), nil
}

// createTransaction records a ledger entry and applies it to the wallet
// balance. A debit that would take the balance negative is rejected before
// anything is written.
func (s *walletService) createTransaction(ctx context.Context, input entities.CreateTransactionInput) (*entities.Transaction, error) {
	wallet, err := s.GetOrCreateWallet(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	newBalance := wallet.Balance.Add(input.Amount)
	if newBalance.IsNegative() {
		return nil, entities.ErrInsufficientBalance
	}

	tx := &entities.Transaction{
		UserID:       input.UserID,
		WalletID:     wallet.ID,
		Type:         input.Type,
		Amount:       input.Amount,
		BalanceAfter: newBalance,
		Description:  input.Description,
		ReferenceID:  input.ReferenceID,
		Status:       "COMPLETED",
	}
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}

	if err := s.walletRepo.RecordTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	if err := s.walletRepo.UpdateBalance(ctx, wallet.ID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update wallet balance: %w", err)
	}

	return tx, nil
}

// DeductBetStake debits the stake, tagged with the bet id
func (s *walletService) DeductBetStake(ctx context.Context, userID uuid.UUID, stake decimal.Decimal, betID uuid.UUID) (*entities.Transaction, error) {
	return s.createTransaction(ctx, entities.CreateTransactionInput{
		UserID:      userID,
		Type:        entities.TransactionTypeBetPlaced,
		Amount:      stake.Neg(),
		Description: entities.TransactionTypeBetPlaced.Description(),
		ReferenceID: &betID,
	})
}

// CreditBetWinnings credits a payout, tagged with the bet id
func (s *walletService) CreditBetWinnings(ctx context.Context, userID uuid.UUID, payout decimal.Decimal, betID uuid.UUID) (*entities.Transaction, error) {
	return s.createTransaction(ctx, entities.CreateTransactionInput{
		UserID:      userID,
		Type:        entities.TransactionTypeBetWon,
		Amount:      payout,
		Description: entities.TransactionTypeBetWon.Description(),
		ReferenceID: &betID,
	})
}

// RefundVoidBet refunds a stake, tagged with the bet id
func (s *walletService) RefundVoidBet(ctx context.Context, userID uuid.UUID, stake decimal.Decimal, betID uuid.UUID) (*entities.Transaction, error) {
	return s.createTransaction(ctx, entities.CreateTransactionInput{
		UserID:      userID,
		Type:        entities.TransactionTypeBetRefund,
		Amount:      stake,
		Description: entities.TransactionTypeBetRefund.Description(),
		ReferenceID: &betID,
	})
}

// AddFunds credits the wallet outside the bet lifecycle
func (s *walletService) AddFunds(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*entities.Transaction, error) {
	if description == "" {
		description = entities.TransactionTypeDeposit.Description()
	}
	return s.createTransaction(ctx, entities.CreateTransactionInput{
		UserID:      userID,
		Type:        entities.TransactionTypeDeposit,
		Amount:      amount,
		Description: description,
	})
}

// WithdrawFunds debits the wallet outside the bet lifecycle
func (s *walletService) WithdrawFunds(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*entities.Transaction, error) {
	ok, err := s.HasSufficientBalance(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, entities.ErrInsufficientBalance
	}

	if description == "" {
		description = entities.TransactionTypeWithdrawal.Description()
	}
	return s.createTransaction(ctx, entities.CreateTransactionInput{
		UserID:      userID,
		Type:        entities.TransactionTypeWithdrawal,
		Amount:      amount.Neg(),
		Description: description,
	})
}

// TransactionHistory returns the user's ledger, newest first
func (s *walletService) TransactionHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error) {
	txs, err := s.walletRepo.GetTransactionsByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return txs, nil
}

// TransactionsByType returns the user's ledger entries of one type,
// newest first
func (s *walletService) TransactionsByType(ctx context.Context, userID uuid.UUID, txType entities.TransactionType, limit int) ([]*entities.Transaction, error) {
	txs, err := s.walletRepo.GetTransactionsByType(ctx, userID, txType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions by type: %w", err)
	}
	return txs, nil
}

// WalletSummary aggregates the user's wallet activity
func (s *walletService) WalletSummary(ctx context.Context, userID uuid.UUID) (*entities.WalletSummary, error) {
	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	txs, err := s.walletRepo.GetTransactionsByUser(ctx, userID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for summary: %w", err)
	}

	summary := &entities.WalletSummary{
		Balance:  wallet.Balance,
		Currency: wallet.Currency,
	}
	for _, tx := range txs {
		switch tx.Type {
		case entities.TransactionTypeDeposit:
			summary.TotalDeposited = summary.TotalDeposited.Add(tx.Amount)
		case entities.TransactionTypeWithdrawal:
			summary.TotalWithdrawn = summary.TotalWithdrawn.Add(tx.Amount.Abs())
		case entities.TransactionTypeBetPlaced:
			summary.TotalWagered = summary.TotalWagered.Add(tx.Amount.Abs())
		case entities.TransactionTypeBetWon:
			summary.TotalWon = summary.TotalWon.Add(tx.Amount)
		}
	}
	summary.NetProfit = summary.TotalWon.Sub(summary.TotalWagered)

	return summary, nil
}
