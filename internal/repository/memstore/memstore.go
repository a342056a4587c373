// Package memstore is an in-memory repository.Store. One mutex serializes
// every unit of work, and a failed Atomic call restores the prior snapshot.
// It backs DB_DRIVER=memory and the service tests.
package memstore

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"paywin/internal/domain"
	"paywin/internal/repository"
)

type likeKey struct{ postID, userID uint }

type state struct {
	seq          map[string]uint
	profiles     map[uint]domain.Profile
	transactions []domain.Transaction
	bets         []domain.BetHistoryEntry
	withdrawals  map[uint]domain.Withdrawal
	codes        map[string]domain.RechargeCode
	rounds       map[string]domain.MineRound
	payments     map[string]domain.Payment
	posts        map[uint]domain.Post
	likes        map[likeKey]bool
	comments     []domain.PostComment
}

func newState() *state {
	return &state{
		seq:         map[string]uint{},
		profiles:    map[uint]domain.Profile{},
		withdrawals: map[uint]domain.Withdrawal{},
		codes:       map[string]domain.RechargeCode{},
		rounds:      map[string]domain.MineRound{},
		payments:    map[string]domain.Payment{},
		posts:       map[uint]domain.Post{},
		likes:       map[likeKey]bool{},
	}
}

// clone copies the containers. Stored values are never mutated in place, so
// sharing them between snapshots is fine.
func (st *state) clone() *state {
	return &state{
		seq:          maps.Clone(st.seq),
		profiles:     maps.Clone(st.profiles),
		transactions: slices.Clone(st.transactions),
		bets:         slices.Clone(st.bets),
		withdrawals:  maps.Clone(st.withdrawals),
		codes:        maps.Clone(st.codes),
		rounds:       maps.Clone(st.rounds),
		payments:     maps.Clone(st.payments),
		posts:        maps.Clone(st.posts),
		likes:        maps.Clone(st.likes),
		comments:     slices.Clone(st.comments),
	}
}

func (st *state) next(table string) uint {
	st.seq[table]++
	return st.seq[table]
}

// Store implements repository.Store in memory
type Store struct {
	mu  sync.Mutex
	st  *state
	Now func() time.Time
}

// New returns an empty store
func New() *Store {
	return &Store{st: newState(), Now: time.Now}
}

var _ repository.Store = (*Store)(nil)

// Atomic runs fn while holding the store lock. fn must only use tx.
func (s *Store) Atomic(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	if err := fn(view{h: handle{s: s, inTx: true}}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) Profiles() repository.ProfileRepository         { return profiles{handle{s: s}} }
func (s *Store) Transactions() repository.TransactionRepository { return transactions{handle{s: s}} }
func (s *Store) Bets() repository.BetRepository                 { return bets{handle{s: s}} }
func (s *Store) Withdrawals() repository.WithdrawalRepository   { return withdrawals{handle{s: s}} }
func (s *Store) RechargeCodes() repository.RechargeCodeRepository {
	return codes{handle{s: s}}
}
func (s *Store) MineRounds() repository.MineRoundRepository { return rounds{handle{s: s}} }
func (s *Store) Payments() repository.PaymentRepository     { return payments{handle{s: s}} }
func (s *Store) Posts() repository.PostRepository           { return posts{handle{s: s}} }

type view struct{ h handle }

func (v view) Profiles() repository.ProfileRepository           { return profiles{v.h} }
func (v view) Transactions() repository.TransactionRepository   { return transactions{v.h} }
func (v view) Bets() repository.BetRepository                   { return bets{v.h} }
func (v view) Withdrawals() repository.WithdrawalRepository     { return withdrawals{v.h} }
func (v view) RechargeCodes() repository.RechargeCodeRepository { return codes{v.h} }
func (v view) MineRounds() repository.MineRoundRepository       { return rounds{v.h} }
func (v view) Payments() repository.PaymentRepository           { return payments{v.h} }
func (v view) Posts() repository.PostRepository                 { return posts{v.h} }

type handle struct {
	s    *Store
	inTx bool
}

func (h handle) run(ctx context.Context, fn func(st *state, now time.Time) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !h.inTx {
		h.s.mu.Lock()
		defer h.s.mu.Unlock()
	}
	return fn(h.s.st, h.s.Now())
}

func window[T any](xs []T, page repository.Page) []T {
	if page.Offset >= len(xs) {
		return []T{}
	}
	xs = xs[page.Offset:]
	if page.Limit > 0 && page.Limit < len(xs) {
		xs = xs[:page.Limit]
	}
	return xs
}

// newestFirst orders by creation time then id, both descending
func newestFirst[T any](xs []T, at func(T) (time.Time, uint)) {
	slices.SortStableFunc(xs, func(a, b T) int {
		ta, ia := at(a)
		tb, ib := at(b)
		if c := tb.Compare(ta); c != 0 {
			return c
		}
		return cmp.Compare(ib, ia)
	})
}

type profiles struct{ h handle }

func (r profiles) Create(ctx context.Context, p *domain.Profile) error {
	return r.h.run(ctx, func(st *state, now time.Time) error {
		for _, existing := range st.profiles {
			if existing.Email == p.Email {
				return repository.ErrDuplicate
			}
		}
		p.ID = st.next("profiles")
		if p.Role == "" {
			p.Role = domain.RoleUser
		}
		p.CreatedAt, p.UpdatedAt = now, now
		st.profiles[p.ID] = *p
		return nil
	})
}

func (r profiles) Get(ctx context.Context, id uint) (*domain.Profile, error) {
	var out domain.Profile
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		p, ok := st.profiles[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r profiles) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	var out *domain.Profile
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		for _, p := range st.profiles {
			if p.Email == email {
				out = &p
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r profiles) GetForUpdate(ctx context.Context, id uint) (*domain.Profile, error) {
	return r.Get(ctx, id)
}

func (r profiles) Save(ctx context.Context, p *domain.Profile) error {
	return r.h.run(ctx, func(st *state, now time.Time) error {
		if _, ok := st.profiles[p.ID]; !ok {
			return repository.ErrNotFound
		}
		p.UpdatedAt = now
		st.profiles[p.ID] = *p
		return nil
	})
}

func (r profiles) sorted(st *state) []domain.Profile {
	return slices.SortedFunc(maps.Values(st.profiles), func(a, b domain.Profile) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

func (r profiles) Top(ctx context.Context, limit int) ([]domain.Profile, error) {
	var out []domain.Profile
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		out = r.sorted(st)
		slices.SortStableFunc(out, func(a, b domain.Profile) int { return cmp.Compare(b.Balance, a.Balance) })
		out = window(out, repository.Page{Limit: limit})
		return nil
	})
	return out, err
}

func (r profiles) List(ctx context.Context, page repository.Page) ([]domain.Profile, int64, error) {
	var out []domain.Profile
	var total int64
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		all := r.sorted(st)
		total = int64(len(all))
		out = window(all, page)
		return nil
	})
	return out, total, err
}

type transactions struct{ h handle }

func (r transactions) Create(ctx context.Context, t *domain.Transaction) error {
	return r.h.run(ctx, func(st *state, now time.Time) error {
		t.ID = st.next("transactions")
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.Status == "" {
			t.Status = domain.TxStatusCompleted
		}
		st.transactions = append(st.transactions, *t)
		return nil
	})
}

func (r transactions) List(ctx context.Context, f repository.TransactionFilter, page repository.Page) ([]domain.Transaction, int64, error) {
	var out []domain.Transaction
	var total int64
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		var matched []domain.Transaction
		for _, t := range st.transactions {
			if f.UserID != 0 && t.UserID != f.UserID {
				continue
			}
			if f.Type != "" && t.Type != f.Type {
				continue
			}
			if f.From != nil && t.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && t.CreatedAt.After(*f.To) {
				continue
			}
			matched = append(matched, t)
		}
		newestFirst(matched, func(t domain.Transaction) (time.Time, uint) { return t.CreatedAt, t.ID })
		total = int64(len(matched))
		out = window(matched, page)
		return nil
	})
	return out, total, err
}

func (r transactions) SetStatus(ctx context.Context, userID uint, typ domain.TransactionType, reference, status string) (int64, error) {
	var n int64
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		for i := range st.transactions {
			t := &st.transactions[i]
			if t.UserID == userID && t.Type == typ && t.Reference == reference {
				t.Status = status
				n++
			}
		}
		return nil
	})
	return n, err
}

type bets struct{ h handle }

func (r bets) Create(ctx context.Context, b *domain.BetHistoryEntry) error {
	return r.h.run(ctx, func(st *state, now time.Time) error {
		b.ID = st.next("bets")
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		st.bets = append(st.bets, *b)
		return nil
	})
}

func (r bets) ListByUser(ctx context.Context, userID uint, page repository.Page) ([]domain.BetHistoryEntry, int64, error) {
	var out []domain.BetHistoryEntry
	var total int64
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		var matched []domain.BetHistoryEntry
		for _, b := range st.bets {
			if b.UserID == userID {
				matched = append(matched, b)
			}
		}
		newestFirst(matched, func(b domain.BetHistoryEntry) (time.Time, uint) { return b.CreatedAt, b.ID })
		total = int64(len(matched))
		out = window(matched, page)
		return nil
	})
	return out, total, err
}

type withdrawals struct{ h handle }

func (r withdrawals) Create(ctx context.Context, w *domain.Withdrawal) error {
	return r.h.run(ctx, func(st *state, now time.Time) error {
		w.ID = st.next("withdrawals")
		if w.Status == "" {
			w.Status = domain.WithdrawalPending
		}
		w.CreatedAt, w.UpdatedAt = now, now
		st.withdrawals[w.ID] = *w
		return nil
	})
}

func (r withdrawals) GetForUpdate(ctx context.Context, id uint) (*domain.Withdrawal, error) {
	var out domain.Withdrawal
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		w, ok := st.withdrawals[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r withdrawals) Save(ctx context.Context, w *domain.Withdrawal) error {
	return r.h.run(ctx, func(st *state, now time.Time) error {
		if _, ok := st.withdrawals[w.ID]; !ok {
			return repository.ErrNotFound
		}
		w.UpdatedAt = now
		st.withdrawals[w.ID] = *w
		return nil
	})
}

func (r withdrawals) ListByUser(ctx context.Context, userID uint) ([]domain.Withdrawal, error) {
	var out []domain.Withdrawal
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		for _, w := range st.withdrawals {
			if w.UserID == userID {
				out = append(out, w)
			}
		}
		newestFirst(out, func(w domain.Withdrawal) (time.Time, uint) { return w.CreatedAt, w.ID })
		return nil
	})
	return out, err
}

type codes struct{ h handle }

func (r codes) Create(ctx context.Context, c *domain.RechargeCode) error {
	return r.h.run(ctx, func(st *state, now time.Time) error {
		if _, ok := st.codes[c.Code]; ok {
			return repository.ErrDuplicate
		}
		c.ID = st.next("codes")
		c.CreatedAt = now
		st.codes[c.Code] = *c
		return nil
	})
}

func (r codes) GetForUpdate(ctx context.Context, code string) (*domain.RechargeCode, error) {
	var out domain.RechargeCode
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		c, ok := st.codes[code]
		if !ok {
			return repository.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r codes) Save(ctx context.Context, c *domain.RechargeCode) error {
	return r.h.run(ctx, func(st *state, _ time.Time) error {
		if _, ok := st.codes[c.Code]; !ok {
			return repository.ErrNotFound
		}
		st.codes[c.Code] = *c
		return nil
	})
}

type rounds struct{ h handle }

func cloneRound(m domain.MineRound) domain.MineRound {
	m.BombCells = slices.Clone(m.BombCells)
	m.Revealed = slices.Clone(m.Revealed)
	return m
}

func (r rounds) Create(ctx context.Context, m *domain.MineRound) error {
	return r.h.run(ctx, func(st *state, now time.Time) error {
		if _, ok := st.rounds[m.ID]; ok {
			return repository.ErrDuplicate
		}
		m.CreatedAt, m.UpdatedAt = now, now
		st.rounds[m.ID] = cloneRound(*m)
		return nil
	})
}

func (r rounds) GetForUpdate(ctx context.Context, id string) (*domain.MineRound, error) {
	var out domain.MineRound
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		m, ok := st.rounds[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = cloneRound(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r rounds) Save(ctx context.Context, m *domain.MineRound) error {
	return r.h.run(ctx, func(st *state, now time.Time) error {
		if _, ok := st.rounds[m.ID]; !ok {
			return repository.ErrNotFound
		}
		m.UpdatedAt = now
		st.rounds[m.ID] = cloneRound(*m)
		return nil
	})
}

func (r rounds) ActiveByUser(ctx context.Context, userID uint) ([]domain.MineRound, error) {
	var out []domain.MineRound
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		for _, m := range st.rounds {
			if m.UserID == userID && m.Active() {
				out = append(out, cloneRound(m))
			}
		}
		slices.SortFunc(out, func(a, b domain.MineRound) int { return b.CreatedAt.Compare(a.CreatedAt) })
		return nil
	})
	return out, err
}

func (r rounds) StaleIDs(ctx context.Context, before time.Time) ([]string, error) {
	var out []string
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		for id, m := range st.rounds {
			if m.Active() && m.UpdatedAt.Before(before) {
				out = append(out, id)
			}
		}
		slices.Sort(out)
		return nil
	})
	return out, err
}

type payments struct{ h handle }

func (r payments) Create(ctx context.Context, p *domain.Payment) error {
	return r.h.run(ctx, func(st *state, now time.Time) error {
		if _, ok := st.payments[p.Token]; ok {
			return repository.ErrDuplicate
		}
		p.ID = st.next("payments")
		if p.Status == "" {
			p.Status = domain.PaymentPending
		}
		p.CreatedAt, p.UpdatedAt = now, now
		st.payments[p.Token] = *p
		return nil
	})
}

func (r payments) GetByTokenForUpdate(ctx context.Context, token string) (*domain.Payment, error) {
	var out domain.Payment
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		p, ok := st.payments[token]
		if !ok {
			return repository.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r payments) Save(ctx context.Context, p *domain.Payment) error {
	return r.h.run(ctx, func(st *state, now time.Time) error {
		if _, ok := st.payments[p.Token]; !ok {
			return repository.ErrNotFound
		}
		p.UpdatedAt = now
		st.payments[p.Token] = *p
		return nil
	})
}

func (r payments) ExpirePending(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	err := r.h.run(ctx, func(st *state, now time.Time) error {
		for token, p := range st.payments {
			if p.Status == domain.PaymentPending && p.CreatedAt.Before(before) {
				p.Status, p.UpdatedAt = domain.PaymentExpired, now
				st.payments[token] = p
				n++
			}
		}
		return nil
	})
	return n, err
}

type posts struct{ h handle }

func (r posts) Create(ctx context.Context, p *domain.Post) error {
	return r.h.run(ctx, func(st *state, now time.Time) error {
		for _, existing := range st.posts {
			if p.Slug != "" && existing.Slug == p.Slug {
				return repository.ErrDuplicate
			}
		}
		p.ID = st.next("posts")
		p.CreatedAt = now
		st.posts[p.ID] = *p
		return nil
	})
}

func (r posts) Get(ctx context.Context, id uint) (*domain.Post, error) {
	var out domain.Post
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		p, ok := st.posts[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r posts) List(ctx context.Context, page repository.Page) ([]domain.Post, int64, error) {
	var out []domain.Post
	var total int64
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		all := slices.Collect(maps.Values(st.posts))
		newestFirst(all, func(p domain.Post) (time.Time, uint) { return p.CreatedAt, p.ID })
		total = int64(len(all))
		out = window(all, page)
		return nil
	})
	return out, total, err
}

func (r posts) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	var liked bool
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		p, ok := st.posts[postID]
		if !ok {
			return repository.ErrNotFound
		}
		key := likeKey{postID, userID}
		if st.likes[key] {
			delete(st.likes, key)
			p.LikeCount--
		} else {
			st.likes[key] = true
			p.LikeCount++
			liked = true
		}
		st.posts[postID] = p
		return nil
	})
	return liked, err
}

func (r posts) AddComment(ctx context.Context, c *domain.PostComment) error {
	return r.h.run(ctx, func(st *state, now time.Time) error {
		p, ok := st.posts[c.PostID]
		if !ok {
			return repository.ErrNotFound
		}
		c.ID = st.next("comments")
		c.CreatedAt = now
		st.comments = append(st.comments, *c)
		p.CommentCount++
		st.posts[p.ID] = p
		return nil
	})
}

func (r posts) Comments(ctx context.Context, postID uint, page repository.Page) ([]domain.PostComment, error) {
	var out []domain.PostComment
	err := r.h.run(ctx, func(st *state, _ time.Time) error {
		var matched []domain.PostComment
		for _, c := range st.comments {
			if c.PostID == postID {
				matched = append(matched, c)
			}
		}
		out = window(matched, page)
		return nil
	})
	return out, err
}
