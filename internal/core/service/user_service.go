package service

import (
	"fmt"

	"marketplace/internal/core/model"
	"marketplace/internal/core/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(email, password, name string) (*model.User, error)
	Authenticate(email, password string) (*model.User, error)
	GetUser(id string) (*model.User, error)
	ListUsers() ([]*model.User, error)
	UpdateTheme(id primitive.ObjectID, theme string) (*model.User, error)
}

const userListLimit = 100

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
	}
}

func (s *userService) Register(email, password, name string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	existing, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.NewUser(email, string(hash), name)
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Authenticate(email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return user, nil
}

// GetUser resolves a token subject to a live user record. A nil result with
// nil error means the id no longer resolves.
func (s *userService) GetUser(id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return s.userRepo.FindByID(oid)
}

func (s *userService) ListUsers() ([]*model.User, error) {
	return s.userRepo.FindAll(userListLimit)
}

func (s *userService) UpdateTheme(id primitive.ObjectID, theme string) (*model.User, error) {
	if !model.ValidTheme(theme) {
		return nil, fmt.Errorf("%w: invalid theme", ErrInvalidInput)
	}

	user, err := s.userRepo.UpdateTheme(id, theme)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
