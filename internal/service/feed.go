package service

import (
	"context"
	"strings"

	"paywin/internal/domain"
	"paywin/internal/repository"
	"paywin/internal/security"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	maxPostLength    = 2000
	maxCommentLength = 500
)

// FeedService is the social wall
type FeedService struct {
	store repository.Store
}

func NewFeedService(store repository.Store) *FeedService {
	return &FeedService{store: store}
}

// postSlug builds a readable, unique slug from the first words of a post
func postSlug(content string) string {
	words := strings.Fields(content)
	if len(words) > 8 {
		words = words[:8]
	}
	base := slug.Make(strings.Join(words, " "))
	if len(base) > 60 {
		base = strings.TrimRight(base[:60], "-")
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if base == "" {
		return "post-" + suffix
	}
	return base + "-" + suffix
}

func (s *FeedService) CreatePost(ctx context.Context, userID uint, content, imageURL string) (*domain.Post, error) {
	content = security.SanitizeText(content, maxPostLength)
	if content == "" {
		return nil, ErrEmptyContent
	}
	p := &domain.Post{
		UserID:   userID,
		Slug:     postSlug(content),
		Content:  content,
		ImageURL: strings.TrimSpace(imageURL),
	}
	if err := s.store.Posts().Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *FeedService) ListPosts(ctx context.Context, page repository.Page) (*Listing[domain.Post], error) {
	items, total, err := s.store.Posts().List(ctx, page)
	if err != nil {
		return nil, err
	}
	return &Listing[domain.Post]{Items: items, Total: total}, nil
}

// ToggleLike likes or unlikes a post and returns the new state with the post
func (s *FeedService) ToggleLike(ctx context.Context, postID, userID uint) (bool, *domain.Post, error) {
	var liked bool
	var post *domain.Post
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		if _, err := tx.Posts().Get(ctx, postID); err != nil {
			return err
		}
		var err error
		if liked, err = tx.Posts().ToggleLike(ctx, postID, userID); err != nil {
			return err
		}
		post, err = tx.Posts().Get(ctx, postID)
		return err
	})
	if err != nil {
		return false, nil, err
	}
	return liked, post, nil
}

func (s *FeedService) AddComment(ctx context.Context, postID, userID uint, content string) (*domain.PostComment, error) {
	content = security.SanitizeText(content, maxCommentLength)
	if content == "" {
		return nil, ErrEmptyContent
	}
	c := &domain.PostComment{PostID: postID, UserID: userID, Content: content}
	err := s.store.Atomic(ctx, func(tx repository.Tx) error {
		if _, err := tx.Posts().Get(ctx, postID); err != nil {
			return err
		}
		return tx.Posts().AddComment(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *FeedService) Comments(ctx context.Context, postID uint, page repository.Page) ([]domain.PostComment, error) {
	if _, err := s.store.Posts().Get(ctx, postID); err != nil {
		return nil, err
	}
	return s.store.Posts().Comments(ctx, postID, page)
}
