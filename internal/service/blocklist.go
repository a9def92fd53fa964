package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Md-FarhadHossain/profit-first-server/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlocklistService manages the banned-identifier list. Identifiers are
// phone numbers, device ids or IP addresses, all matched case-sensitively
// against the same column.
type BlocklistService interface {
	Block(ctx context.Context, req *model.BlockRequest) (*model.BlockedUser, error)
	Unblock(ctx context.Context, identifier string) error
	List(ctx context.Context) ([]model.BlockedUser, error)
	IsBlocked(ctx context.Context, identifier string) (bool, error)
	AnyBlocked(ctx context.Context, identifiers []string) (bool, error)
}

// blocklistServiceImpl is the gorm-backed blocklist service.
type blocklistServiceImpl struct {
	db *gorm.DB
}

// NewBlocklistService creates a new blocklist service.
func NewBlocklistService(db *gorm.DB) BlocklistService {
	return &blocklistServiceImpl{db: db}
}

// Block adds an identifier. The identifier is whitespace-trimmed and must
// not already be present.
func (s *blocklistServiceImpl) Block(ctx context.Context, req *model.BlockRequest) (*model.BlockedUser, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: identifier is required", ErrInvalidInput)
	}

	entry := &model.BlockedUser{
		ID:         uuid.NewString(),
		Identifier: identifier,
		Note:       req.Note,
		BlockedAt:  time.Now(),
	}
	// The unique index is the duplicate guard; a lookup beforehand would
	// still race with a concurrent insert.
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyBlocked
		}
		return nil, fmt.Errorf("failed to create blocklist entry: %w", err)
	}
	return entry, nil
}

// Unblock removes an identifier by exact match.
func (s *blocklistServiceImpl) Unblock(ctx context.Context, identifier string) error {
	res := s.db.WithContext(ctx).
		Where("identifier = ?", strings.TrimSpace(identifier)).
		Delete(&model.BlockedUser{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove blocklist entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all entries, newest first.
func (s *blocklistServiceImpl) List(ctx context.Context) ([]model.BlockedUser, error) {
	var entries []model.BlockedUser
	if err := s.db.WithContext(ctx).Order("blocked_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list blocklist: %w", err)
	}
	return entries, nil
}

// IsBlocked checks a single identifier.
func (s *blocklistServiceImpl) IsBlocked(ctx context.Context, identifier string) (bool, error) {
	return s.AnyBlocked(ctx, []string{identifier})
}

// AnyBlocked reports whether any of the given identifiers is banned. Empty
// identifiers are ignored; with nothing left to check it reports false.
func (s *blocklistServiceImpl) AnyBlocked(ctx context.Context, identifiers []string) (bool, error) {
	candidates := make([]string, 0, len(identifiers))
	for _, id := range identifiers {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			candidates = append(candidates, trimmed)
		}
	}
	if len(candidates) == 0 {
		return false, nil
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&model.BlockedUser{}).
		Where("identifier IN ?", candidates).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check blocklist: %w", err)
	}
	return count > 0, nil
}
