package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dayumstir/bnpl-ledger/internal/domain"
	"github.com/dayumstir/bnpl-ledger/internal/model"
	"github.com/dayumstir/bnpl-ledger/internal/repository"
)

type OverviewService struct {
	historySvc *HistoryService
	ratingSvc  *RatingService
	planRepo   *repository.PlanRepository
}

func NewOverviewService(historySvc *HistoryService, ratingSvc *RatingService, planRepo *repository.PlanRepository) *OverviewService {
	return &OverviewService{
		historySvc: historySvc,
		ratingSvc:  ratingSvc,
		planRepo:   planRepo,
	}
}

// CustomerOverview is the aggregate read model for a customer: current
// wallet balance, every instalment payment still owing, and the stored
// credit rating (nil when the customer has never been scored).
type CustomerOverview struct {
	CustomerID  string                    `json:"customer_id"`
	Balance     decimal.Decimal           `json:"balance"`
	Outstanding []model.InstalmentPayment `json:"outstanding_payments"`
	OwedTotal   decimal.Decimal           `json:"owed_total"`
	Rating      *model.CreditRating       `json:"credit_rating,omitempty"`
	AsOf        time.Time                 `json:"as_of"`
}

func (s *OverviewService) Overview(ctx context.Context, customerID string) (*CustomerOverview, error) {
	now := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	var balance decimal.Decimal
	var outstanding []model.InstalmentPayment
	var rating *model.CreditRating

	g.Go(func() error {
		var err error
		balance, err = s.historySvc.Balance(gctx, customerID, now)
		return err
	})

	g.Go(func() error {
		var err error
		outstanding, err = s.planRepo.ListOutstandingByCustomer(gctx, customerID)
		return err
	})

	g.Go(func() error {
		r, err := s.ratingSvc.Rating(gctx, customerID)
		if err != nil {
			// A never-scored customer is a normal state, not a failure.
			if kind, ok := domain.KindOf(err); ok && kind == domain.KindNotFound {
				return nil
			}
			return err
		}
		rating = r
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	owed := decimal.Zero
	for i := range outstanding {
		owed = owed.Add(outstanding[i].Outstanding())
	}

	return &CustomerOverview{
		CustomerID:  customerID,
		Balance:     balance,
		Outstanding: outstanding,
		OwedTotal:   owed,
		Rating:      rating,
		AsOf:        now,
	}, nil
}
