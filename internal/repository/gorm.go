package repository

import (
	"context" // Context for cancellation
	"errors"  // Error inspection
	"time"    // Cutoff times

	"paywin/internal/domain" // Importing domain models

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Row locking clauses
)

// NewGormStore wraps a gorm connection opened with TranslateError enabled
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

type gormStore struct {
	db *gorm.DB
}

func (s *gormStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx}) // Repositories bound to the open transaction
	})
}

func (s *gormStore) Profiles() ProfileRepository           { return profileRepo{s.db} }
func (s *gormStore) Transactions() TransactionRepository   { return transactionRepo{s.db} }
func (s *gormStore) Bets() BetRepository                   { return betRepo{s.db} }
func (s *gormStore) Withdrawals() WithdrawalRepository     { return withdrawalRepo{s.db} }
func (s *gormStore) RechargeCodes() RechargeCodeRepository { return rechargeRepo{s.db} }
func (s *gormStore) MineRounds() MineRoundRepository       { return mineRoundRepo{s.db} }
func (s *gormStore) Payments() PaymentRepository           { return paymentRepo{s.db} }
func (s *gormStore) Posts() PostRepository                 { return postRepo{s.db} }

// translate maps gorm errors onto the repository sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func paginate(q *gorm.DB, page Page) *gorm.DB {
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	return q.Offset(page.Offset)
}

type profileRepo struct{ db *gorm.DB }

func (r profileRepo) Create(ctx context.Context, p *domain.Profile) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r profileRepo) Get(ctx context.Context, id uint) (*domain.Profile, error) {
	var p domain.Profile
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r profileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	var p domain.Profile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r profileRepo) GetForUpdate(ctx context.Context, id uint) (*domain.Profile, error) {
	var p domain.Profile
	if err := forUpdate(r.db.WithContext(ctx)).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r profileRepo) Save(ctx context.Context, p *domain.Profile) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r profileRepo) Top(ctx context.Context, limit int) ([]domain.Profile, error) {
	var ps []domain.Profile
	err := r.db.WithContext(ctx).Order("balance desc").Order("id asc").Limit(limit).Find(&ps).Error
	return ps, translate(err)
}

func (r profileRepo) List(ctx context.Context, page Page) ([]domain.Profile, int64, error) {
	var total int64 // Total profile count
	if err := r.db.WithContext(ctx).Model(&domain.Profile{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var ps []domain.Profile
	err := paginate(r.db.WithContext(ctx).Order("id asc"), page).Find(&ps).Error
	return ps, total, translate(err)
}

type transactionRepo struct{ db *gorm.DB }

func (r transactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r transactionRepo) List(ctx context.Context, f TransactionFilter, page Page) ([]domain.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Transaction{}) // Start building the query
	if f.UserID != 0 {
		query = query.Where("user_id = ?", f.UserID) // Filter by user ID
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type) // Filter by transaction type
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From) // Filter by start date
	}
	if f.To != nil {
		query = query.Where("created_at <= ?", *f.To) // Filter by end date
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var txs []domain.Transaction
	err := paginate(query.Order("created_at desc").Order("id desc"), page).Find(&txs).Error
	return txs, total, translate(err)
}

func (r transactionRepo) SetStatus(ctx context.Context, userID uint, typ domain.TransactionType, reference, status string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("user_id = ? AND type = ? AND reference = ?", userID, typ, reference).
		Update("status", status)
	return res.RowsAffected, translate(res.Error)
}

type betRepo struct{ db *gorm.DB }

func (r betRepo) Create(ctx context.Context, b *domain.BetHistoryEntry) error {
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

func (r betRepo) ListByUser(ctx context.Context, userID uint, page Page) ([]domain.BetHistoryEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.BetHistoryEntry{}).Where("user_id = ?", userID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var bets []domain.BetHistoryEntry
	err := paginate(query.Order("created_at desc").Order("id desc"), page).Find(&bets).Error
	return bets, total, translate(err)
}

type withdrawalRepo struct{ db *gorm.DB }

func (r withdrawalRepo) Create(ctx context.Context, w *domain.Withdrawal) error {
	return translate(r.db.WithContext(ctx).Create(w).Error)
}

func (r withdrawalRepo) GetForUpdate(ctx context.Context, id uint) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	if err := forUpdate(r.db.WithContext(ctx)).First(&w, id).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r withdrawalRepo) Save(ctx context.Context, w *domain.Withdrawal) error {
	return translate(r.db.WithContext(ctx).Save(w).Error)
}

func (r withdrawalRepo) ListByUser(ctx context.Context, userID uint) ([]domain.Withdrawal, error) {
	var ws []domain.Withdrawal
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&ws).Error
	return ws, translate(err)
}

type rechargeRepo struct{ db *gorm.DB }

func (r rechargeRepo) Create(ctx context.Context, c *domain.RechargeCode) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r rechargeRepo) GetForUpdate(ctx context.Context, code string) (*domain.RechargeCode, error) {
	var c domain.RechargeCode
	if err := forUpdate(r.db.WithContext(ctx)).Where("code = ?", code).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r rechargeRepo) Save(ctx context.Context, c *domain.RechargeCode) error {
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

type mineRoundRepo struct{ db *gorm.DB }

func (r mineRoundRepo) Create(ctx context.Context, m *domain.MineRound) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r mineRoundRepo) GetForUpdate(ctx context.Context, id string) (*domain.MineRound, error) {
	var m domain.MineRound
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r mineRoundRepo) Save(ctx context.Context, m *domain.MineRound) error {
	return translate(r.db.WithContext(ctx).Save(m).Error)
}

func (r mineRoundRepo) ActiveByUser(ctx context.Context, userID uint) ([]domain.MineRound, error) {
	var ms []domain.MineRound
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.RoundActive).
		Order("created_at desc").
		Find(&ms).Error
	return ms, translate(err)
}

func (r mineRoundRepo) StaleIDs(ctx context.Context, before time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.MineRound{}).
		Where("status = ? AND updated_at < ?", domain.RoundActive, before).
		Pluck("id", &ids).Error
	return ids, translate(err)
}

type paymentRepo struct{ db *gorm.DB }

func (r paymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r paymentRepo) GetByTokenForUpdate(ctx context.Context, token string) (*domain.Payment, error) {
	var p domain.Payment
	if err := forUpdate(r.db.WithContext(ctx)).Where("token = ?", token).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r paymentRepo) Save(ctx context.Context, p *domain.Payment) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r paymentRepo) ExpirePending(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("status = ? AND created_at < ?", domain.PaymentPending, before).
		Update("status", domain.PaymentExpired)
	return res.RowsAffected, translate(res.Error)
}

type postRepo struct{ db *gorm.DB }

func (r postRepo) Create(ctx context.Context, p *domain.Post) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r postRepo) Get(ctx context.Context, id uint) (*domain.Post, error) {
	var p domain.Post
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r postRepo) List(ctx context.Context, page Page) ([]domain.Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Post{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var ps []domain.Post
	err := paginate(r.db.WithContext(ctx).Order("created_at desc").Order("id desc"), page).Find(&ps).Error
	return ps, total, translate(err)
}

func (r postRepo) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&domain.PostLike{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	delta, liked := -1, false // Removing an existing like
	if res.RowsAffected == 0 {
		if err := db.Create(&domain.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
			return false, translate(err)
		}
		delta, liked = 1, true
	}
	err := db.Model(&domain.Post{}).Where("id = ?", postID).
		Update("like_count", gorm.Expr("like_count + ?", delta)).Error
	return liked, translate(err)
}

func (r postRepo) AddComment(ctx context.Context, c *domain.PostComment) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(c).Error; err != nil {
		return translate(err)
	}
	return translate(db.Model(&domain.Post{}).Where("id = ?", c.PostID).
		Update("comment_count", gorm.Expr("comment_count + 1")).Error)
}

func (r postRepo) Comments(ctx context.Context, postID uint, page Page) ([]domain.PostComment, error) {
	var cs []domain.PostComment
	err := paginate(r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at asc").Order("id asc"), page).Find(&cs).Error
	return cs, translate(err)
}
