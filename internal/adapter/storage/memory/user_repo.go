package memory

import (
	"context"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"

	"github.com/google/uuid"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	store *Store
}

// NewUserRepo creates a memory-backed UserRepository.
func NewUserRepo(store *Store) *UserRepo {
	return &UserRepo{store: store}
}

// Create inserts a user. Returns ports.ErrConflict if the username is taken.
func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usernames[user.Username]; ok {
		return ports.ErrConflict
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now()
	}
	s.users[user.ID] = *user
	s.usernames[user.Username] = user.ID
	s.userOrder = append(s.userOrder, user.ID)

	record(ctx, func() {
		delete(s.users, user.ID)
		delete(s.usernames, user.Username)
		s.userOrder = removeID(s.userOrder, user.ID)
	})
	return nil
}

// GetByID returns the user or nil if absent.
func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetByUsername returns the user or nil if absent.
func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.usernames[username]
	if !ok {
		return nil, nil
	}
	u := r.store.users[id]
	return &u, nil
}

// List returns all users in creation order.
func (r *UserRepo) List(_ context.Context) ([]domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]domain.User, 0, len(r.store.userOrder))
	for _, id := range r.store.userOrder {
		out = append(out, r.store.users[id])
	}
	return out, nil
}

var _ ports.UserRepository = (*UserRepo)(nil)
