// Package businesses manages the registry that routes WhatsApp numbers to RapidPro channels.
package businesses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/wa-relay/internal/domain/models"
	"github.com/mamadbah2/wa-relay/internal/repository/mongodb"
)

// ErrBusinessNotFound is returned when no registered business matches a lookup.
var ErrBusinessNotFound = errors.New("business not found")

// ErrBusinessExists is returned when registering a name that is already taken.
var ErrBusinessExists = errors.New("business already registered")

// Service exposes registry operations on top of a repository.
type Service struct {
	repo   mongodb.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a registry service.
func NewService(repo mongodb.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// DocumentID derives the registry id from a business name, e.g.
// "Boroma Farms" becomes "businesses/boroma_farms".
func DocumentID(name string) string {
	return "businesses/" + strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Register stores a new business and returns it with its id set.
func (s *Service) Register(ctx context.Context, business models.Business) (*models.Business, error) {
	business.ID = DocumentID(business.Name)
	business.CreatedAt = s.now().UTC()

	if err := s.repo.Insert(ctx, business); err != nil {
		if errors.Is(err, mongodb.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrBusinessExists, business.ID)
		}
		return nil, fmt.Errorf("register business %s: %w", business.ID, err)
	}

	s.logger.Info("business registered",
		zap.String("id", business.ID),
		zap.String("phone_number_id", business.BusinessID),
		zap.String("channel", business.RapidProChannel),
	)
	return &business, nil
}

// Get loads a business by registry id.
func (s *Service) Get(ctx context.Context, id string) (*models.Business, error) {
	return s.wrap(s.repo.FindByID(ctx, id))
}

// FindByPhoneNumberID resolves the business for an inbound webhook.
func (s *Service) FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (*models.Business, error) {
	return s.wrap(s.repo.FindByBusinessID(ctx, phoneNumberID))
}

// FindByPhoneNumber resolves the business for a RapidPro callback sender.
func (s *Service) FindByPhoneNumber(ctx context.Context, phoneNumber string) (*models.Business, error) {
	return s.wrap(s.repo.FindByPhoneNumber(ctx, phoneNumber))
}

// List returns all registered businesses.
func (s *Service) List(ctx context.Context) ([]models.Business, error) {
	businesses, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	return businesses, nil
}

func (s *Service) wrap(business *models.Business, err error) (*models.Business, error) {
	if errors.Is(err, mongodb.ErrNotFound) {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, err
	}
	return business, nil
}
