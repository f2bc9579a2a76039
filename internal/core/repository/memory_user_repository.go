package repository

import (
	"fmt"
	"sync"

	"marketplace/internal/core/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type inMemoryUserRepository struct {
	users map[primitive.ObjectID]*model.User
	mutex sync.RWMutex
}

func NewInMemoryUserRepository() UserRepository {
	return &inMemoryUserRepository{
		users: make(map[primitive.ObjectID]*model.User),
	}
}

func (r *inMemoryUserRepository) Create(user *model.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return fmt.Errorf("user with ID %s already exists", user.ID.Hex())
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return fmt.Errorf("duplicate email %s", user.Email)
		}
	}

	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *inMemoryUserRepository) FindByID(id primitive.ObjectID) (*model.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if user, exists := r.users[id]; exists {
		copied := *user
		return &copied, nil
	}
	return nil, nil
}

func (r *inMemoryUserRepository) FindByEmail(email string) (*model.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepository) FindAll(limit int64) ([]*model.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, user := range r.users {
		if int64(len(users)) >= limit {
			break
		}
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

func (r *inMemoryUserRepository) UpdateTheme(id primitive.ObjectID, theme string) (*model.User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	user, exists := r.users[id]
	if !exists {
		return nil, nil
	}
	user.Theme = theme
	copied := *user
	return &copied, nil
}
