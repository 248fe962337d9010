package service

import (
	"context"
	"fmt"

	"github.com/dayumstir/bnpl-ledger/internal/domain"
	"github.com/dayumstir/bnpl-ledger/internal/model"
	"github.com/dayumstir/bnpl-ledger/internal/repository"
)

type CashbackService struct {
	repo *repository.CashbackRepository
}

func NewCashbackService(repo *repository.CashbackRepository) *CashbackService {
	return &CashbackService{repo: repo}
}

// WalletsFor lists the customer's cashback wallets across all merchants.
func (s *CashbackService) WalletsFor(ctx context.Context, customerID string) ([]model.CashbackWallet, error) {
	if customerID == "" {
		return nil, domain.Validation("customer_id is required")
	}
	wallets, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list cashback wallets: %w", err)
	}
	return wallets, nil
}
