package service

import (
	"errors"
	"time"

	"puzzle_arena_backend/internal/config"
	"puzzle_arena_backend/internal/model"
	"puzzle_arena_backend/internal/repository"
	"puzzle_arena_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService 注册与登录。注册时同事务建好 UserStats 行，
// 经济模块假定该行一定存在。
type AuthService struct {
	UserRepo *repository.UserRepository
	DB       *gorm.DB
	Config   *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{UserRepo: userRepo, DB: db, Config: cfg}
}

func (s *AuthService) Register(username, email, password string) (*model.User, error) {
	if _, err := s.UserRepo.FindByUsername(username); err == nil {
		return nil, util.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.UserRepo.FindByEmail(email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&model.UserStats{
			UserID: user.ID,
			Level:  1,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(username, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	user.LastLogin = time.Now()
	_ = s.UserRepo.UpdateLastLogin(user.ID)

	return token, user, nil
}
