package database

import (
	"context"
	"time"

	"memeindex-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
	writeTimeout     = 5 * time.Second
)

// DeliveryStore is the gorm backed delivery journal.
type DeliveryStore struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewDeliveryStore(db *gorm.DB, logger *logrus.Entry) *DeliveryStore {
	return &DeliveryStore{db: db, logger: logger}
}

// RecordDelivery persists d. Journal failures are logged and never reach the
// caller: a lost journal row must not fail a delivery that already happened.
func (s *DeliveryStore) RecordDelivery(d models.Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		s.logger.WithError(err).WithField("kind", d.Kind).Warn("failed to journal delivery")
	}
}

// Recent returns up to limit deliveries, newest first.
func (s *DeliveryStore) Recent(ctx context.Context, limit int) ([]models.Delivery, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var out []models.Delivery
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}
