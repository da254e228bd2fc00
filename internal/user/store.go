package user

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/finview/finview/internal/tier"
)

// Watch-list size caps per tier. Zero means unlimited.
const (
	freeWatchLimit = 3
	proWatchLimit  = 0
)

// ErrWatchLimitReached is returned when a free-tier list is full.
var ErrWatchLimitReached = errors.New("watch list limit reached")

// ErrAlreadyWatched is returned when the symbol is already on the list.
var ErrAlreadyWatched = errors.New("symbol already on watch list")

type Store struct {
	db *gorm.DB
}

func NewStore(connStr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate automatically migrates the database schema using GORM models.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&User{}, &WatchItem{}); err != nil {
		return fmt.Errorf("failed to auto migrate schema: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID. Returns nil when the user is unknown.
func (s *Store) GetUser(id string) (*User, error) {
	var u User
	if err := s.db.Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// Tier returns the subscription tier for a user, defaulting to free for
// unknown users or lookup failures. The tier gate must never turn a
// profile-store outage into a request failure.
func (s *Store) Tier(id string) tier.Tier {
	u, err := s.GetUser(id)
	if err != nil || u == nil {
		return tier.Free
	}
	return u.Tier
}

// UpsertUser creates or updates a profile row.
func (s *Store) UpsertUser(id, username string, t tier.Tier) (*User, error) {
	u := User{ID: id, Username: username, Tier: t}
	if err := s.db.Save(&u).Error; err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &u, nil
}

// Watchlist returns a user's watch items, newest first.
func (s *Store) Watchlist(userID string) ([]WatchItem, error) {
	var items []WatchItem
	if err := s.db.Where("user_id = ?", userID).Order("added_at desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to query watch list: %w", err)
	}
	return items, nil
}

// AddToWatchlist puts a symbol on a user's list, enforcing the tier cap
// and rejecting duplicates.
func (s *Store) AddToWatchlist(userID, symbol string, t tier.Tier) (*WatchItem, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	var count int64
	if err := s.db.Model(&WatchItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count watch items: %w", err)
	}
	if limit := watchLimit(t); limit > 0 && count >= int64(limit) {
		return nil, ErrWatchLimitReached
	}

	var existing int64
	if err := s.db.Model(&WatchItem{}).Where("user_id = ? AND symbol = ?", userID, sym).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check watch item: %w", err)
	}
	if existing > 0 {
		return nil, ErrAlreadyWatched
	}

	item := WatchItem{UserID: userID, Symbol: sym}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create watch item: %w", err)
	}
	return &item, nil
}

// RemoveFromWatchlist deletes a symbol from a user's list. Reports whether
// anything was removed.
func (s *Store) RemoveFromWatchlist(userID, symbol string) (bool, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	res := s.db.Where("user_id = ? AND symbol = ?", userID, sym).Delete(&WatchItem{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove watch item: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func watchLimit(t tier.Tier) int {
	if t == tier.Pro {
		return proWatchLimit
	}
	return freeWatchLimit
}
