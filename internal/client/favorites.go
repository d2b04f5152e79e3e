package client

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/domain"
	"go.uber.org/zap"
)

// FavoriteListener receives the favorite after every mutation, nil when cleared.
type FavoriteListener func(fav *domain.FavoriteRecord)

// FavoriteStore holds at most one favorite player in Storage. Listeners run
// synchronously, so every subscribed view is current before Set or Clear
// returns.
type FavoriteStore struct {
	storage Storage
	logger  *zap.Logger

	mu        sync.Mutex
	nextID    int
	listeners map[int]FavoriteListener
}

func NewFavoriteStore(storage Storage, logger *zap.Logger) *FavoriteStore {
	return &FavoriteStore{
		storage:   storage,
		logger:    logger,
		listeners: make(map[int]FavoriteListener),
	}
}

// Get never fails: a storage error or an unreadable value reads as no favorite.
func (s *FavoriteStore) Get() (*domain.FavoriteRecord, bool) {
	raw, ok, err := s.storage.GetItem(constants.FavoriteStorageKey)
	if err != nil {
		s.logger.Warn("Failed to read favorite", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var fav domain.FavoriteRecord
	if err := json.Unmarshal([]byte(raw), &fav); err != nil {
		s.logger.Warn("Ignoring unreadable favorite", zap.Error(err))
		return nil, false
	}
	if fav.ID == "" {
		return nil, false
	}
	return &fav, true
}

// Set replaces the favorite. A record without an id is ignored.
func (s *FavoriteStore) Set(record domain.FavoriteRecord) {
	record = record.WithDefaults()
	if record.ID == "" {
		return
	}

	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Warn("Failed to encode favorite", zap.Error(err))
		return
	}
	if err := s.storage.SetItem(constants.FavoriteStorageKey, string(data)); err != nil {
		s.logger.Warn("Failed to persist favorite", zap.Error(err))
		return
	}
	s.notify(&record)
}

// Clear removes the favorite. Clearing an absent favorite still notifies.
func (s *FavoriteStore) Clear() {
	if err := s.storage.RemoveItem(constants.FavoriteStorageKey); err != nil {
		s.logger.Warn("Failed to remove favorite", zap.Error(err))
	}
	s.notify(nil)
}

// Toggle applies the star rule: the current favorite's id clears it, any other
// id replaces it. Reports whether record is the favorite afterwards.
func (s *FavoriteStore) Toggle(record domain.FavoriteRecord) bool {
	id := domain.NormalizeID(string(record.ID))
	if id == "" {
		return false
	}
	if current, ok := s.Get(); ok && current.ID == id {
		s.Clear()
		return false
	}
	s.Set(record)
	return s.IsFavorite(id)
}

// IsFavorite compares ids by their normalized string form.
func (s *FavoriteStore) IsFavorite(id domain.PlayerID) bool {
	current, ok := s.Get()
	return ok && current.ID == domain.NormalizeID(string(id))
}

func (s *FavoriteStore) Subscribe(fn FavoriteListener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *FavoriteStore) notify(fav *domain.FavoriteRecord) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]FavoriteListener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		if fav == nil {
			fn(nil)
			continue
		}
		copied := *fav
		fn(&copied)
	}
}
