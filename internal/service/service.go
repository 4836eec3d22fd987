package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Janescience/deliback-sub000/internal/cache"
	"github.com/Janescience/deliback-sub000/internal/config"
	"github.com/Janescience/deliback-sub000/internal/forecast"
	"github.com/Janescience/deliback-sub000/internal/models"
	"github.com/Janescience/deliback-sub000/internal/repository"
)

// Service handles business logic
type Service struct {
	repo       *repository.Repository
	forecaster *forecast.Forecaster
	cache      *cache.TTLCache
	log        *logrus.Logger
	config     *config.Config
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:       repo,
		forecaster: forecast.NewForecaster(repo, forecast.DefaultParams(), log),
		cache:      cache.New(),
		log:        log,
		config:     cfg,
	}
}

// Register creates a new dashboard user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a dashboard user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// NextDeliveryForecast returns the demand forecast for the next working day.
// Results are memoized per target date: the forecast is a pure function of
// the ledger, so a recent result for the same date can be reused.
func (s *Service) NextDeliveryForecast() (*forecast.Result, error) {
	now := time.Now()
	target := s.targetDate(now)
	cacheKey := "forecast:" + target.Format("2006-01-02")

	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*forecast.Result), nil
	}

	result, err := s.forecaster.Run(now)
	if err != nil {
		return nil, err
	}
	if s.config.ForecastCacheTTL > 0 {
		s.cache.Set(cacheKey, result, s.config.ForecastCacheTTL)
	}

	s.log.Infof("Forecast computed for %s: %d customers, %d demand lines",
		result.TargetDate.Format("2006-01-02"),
		result.TotalCustomersWithPredictions,
		len(result.OverallProductDemand))
	return result, nil
}

// InvalidateForecast drops any cached forecast results, e.g. after bulk
// order imports.
func (s *Service) InvalidateForecast() {
	s.cache.Clear()
}

// ListCustomers returns all customers for the dashboard
func (s *Service) ListCustomers() ([]models.Customer, error) {
	return s.repo.ListCustomers()
}

// ListProducts returns the product catalog for the dashboard
func (s *Service) ListProducts() ([]models.Product, error) {
	return s.repo.ListProducts()
}

// FindOrder returns one order with line items
func (s *Service) FindOrder(id int64) (*models.Order, error) {
	return s.repo.FindOrderByID(id)
}

// targetDate resolves the forecast target date for cache keying. A failure to
// read holiday rules falls back to tomorrow; the forecaster run surfaces the
// real error.
func (s *Service) targetDate(now time.Time) time.Time {
	rules, err := s.repo.HolidayRules()
	if err != nil {
		return now.AddDate(0, 0, 1)
	}
	return forecast.ResolveTargetDate(now, rules).Date
}
