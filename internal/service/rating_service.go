package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/dayumstir/bnpl-ledger/internal/domain"
	"github.com/dayumstir/bnpl-ledger/internal/model"
	"github.com/dayumstir/bnpl-ledger/internal/repository"
	"github.com/dayumstir/bnpl-ledger/internal/retry"
)

// scoreClient is the slice of the credit-scoring gateway this service uses.
type scoreClient interface {
	FirstRating(ctx context.Context, customerID string, evidence map[string]string) (decimal.Decimal, error)
	UpdateRating(ctx context.Context, customerID string) (decimal.Decimal, error)
}

// RatingService folds external credit-score responses into stored ratings.
// Refreshes are fire-and-forget with bounded retry: a failed or timed-out
// call leaves the existing rating untouched and is logged as stale.
type RatingService struct {
	repo    *repository.RatingRepository
	client  scoreClient
	retrier *retry.Retrier
	group   singleflight.Group
}

func NewRatingService(repo *repository.RatingRepository, client scoreClient, maxRetries int) *RatingService {
	cfg := retry.DefaultConfig()
	cfg.MaxRetries = maxRetries
	cfg.Retryable = func(err error) bool {
		kind, ok := domain.KindOf(err)
		return ok && kind == domain.KindDependency
	}
	return &RatingService{
		repo:    repo,
		client:  client,
		retrier: retry.New(cfg),
	}
}

// Refresh fetches a fresh rating synchronously. First-time customers go
// through the evidence-based endpoint, known customers through the update
// endpoint.
func (s *RatingService) Refresh(ctx context.Context, customerID string, evidence map[string]string) (*model.CreditRating, error) {
	known, err := s.repo.Exists(ctx, customerID)
	if err != nil {
		return nil, err
	}

	var rating decimal.Decimal
	err = s.retrier.Do(ctx, func(ctx context.Context) error {
		var callErr error
		if known {
			rating, callErr = s.client.UpdateRating(ctx, customerID)
		} else {
			rating, callErr = s.client.FirstRating(ctx, customerID, evidence)
		}
		return callErr
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Upsert(ctx, customerID, rating)
}

// RefreshAsync schedules a refresh without blocking the caller. Concurrent
// requests for the same customer collapse into one gateway call. Exhausted
// retries are logged; the stored rating stays as it was.
func (s *RatingService) RefreshAsync(customerID string) {
	go func() {
		_, err, _ := s.group.Do(customerID, func() (any, error) {
			// Overall budget covers every attempt plus backoff; the
			// gateway client enforces its own per-call timeout.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			return s.Refresh(ctx, customerID, nil)
		})
		if err != nil {
			log.Warn().Err(err).Str("customer_id", customerID).Msg("credit rating stale")
		}
	}()
}

func (s *RatingService) Rating(ctx context.Context, customerID string) (*model.CreditRating, error) {
	cr, err := s.repo.Get(ctx, customerID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, domain.NotFound("no credit rating for customer")
		}
		return nil, err
	}
	return cr, nil
}
