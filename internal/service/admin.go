package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"paywin/internal/cache"
	"paywin/internal/domain"
	"paywin/internal/report"
	"paywin/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	maxCodesPerBatch = 100
	exportLimit      = 50000
	adminListTTL     = 30 * time.Second
)

// AdminService backs the back-office endpoints
type AdminService struct {
	store repository.Store
	cache cache.Cache
}

func NewAdminService(store repository.Store, c cache.Cache) *AdminService {
	return &AdminService{store: store, cache: c}
}

func newRechargeCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// CreateRechargeCodes issues count single-use codes worth amount each
func (s *AdminService) CreateRechargeCodes(ctx context.Context, adminID uint, count int, amount int64) ([]domain.RechargeCode, error) {
	if count < 1 || count > maxCodesPerBatch {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidInput, maxCodesPerBatch)
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	codes := make([]domain.RechargeCode, 0, count)
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		for range count {
			c := domain.RechargeCode{Code: newRechargeCode(), Amount: amount}
			if err := tx.RechargeCodes().Create(ctx, &c); err != nil {
				return err
			}
			codes = append(codes, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"admin_id": adminID, "count": count, "amount": amount}).Info("Recharge codes created")
	return codes, nil
}

// ListUsers pages through profiles. Pages are cached briefly.
func (s *AdminService) ListUsers(ctx context.Context, page repository.Page) (*Listing[domain.Profile], error) {
	key := cache.AdminPrefix + "users:" + pageKey(page)
	var out Listing[domain.Profile]
	if found, err := s.cache.Get(ctx, key, &out); err == nil && found {
		return &out, nil
	}
	items, total, err := s.store.Profiles().List(ctx, page)
	if err != nil {
		return nil, err
	}
	out = Listing[domain.Profile]{Items: items, Total: total}
	_ = s.cache.Set(ctx, key, out, adminListTTL)
	return &out, nil
}

func (s *AdminService) ListTransactions(ctx context.Context, filter repository.TransactionFilter, page repository.Page) (*Listing[domain.Transaction], error) {
	items, total, err := s.store.Transactions().List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return &Listing[domain.Transaction]{Items: items, Total: total}, nil
}

// ExportTransactions writes the filtered ledger as an XLSX workbook
func (s *AdminService) ExportTransactions(ctx context.Context, filter repository.TransactionFilter, w io.Writer) error {
	items, _, err := s.store.Transactions().List(ctx, filter, repository.Page{Limit: exportLimit})
	if err != nil {
		return err
	}
	return report.WriteTransactions(w, items)
}
