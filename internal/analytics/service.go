// Package analytics computes the vendor dashboard numbers: order and
// revenue counts for a canteen, cached briefly so the board poll does
// not hammer the database.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"campuseats/internal/caching"
	"campuseats/internal/models"
	"campuseats/internal/repositories"

	"github.com/google/uuid"
)

const statsCacheTTL = time.Minute

// CanteenStats is one canteen's dashboard snapshot.
type CanteenStats struct {
	CanteenID      uuid.UUID `json:"canteen_id"`
	OrdersToday    int       `json:"orders_today"`
	RevenueToday   float64   `json:"revenue_today"`
	PendingCount   int       `json:"pending_count"`
	ReadyCount     int       `json:"ready_count"`
	CompletedCount int       `json:"completed_count"`
	LastUpdated    time.Time `json:"last_updated"`
}

type Service struct {
	orderRepo repositories.OrderRepository
	cacheSvc  caching.CacheService
}

func NewService(orderRepo repositories.OrderRepository, cacheSvc caching.CacheService) *Service {
	return &Service{
		orderRepo: orderRepo,
		cacheSvc:  cacheSvc,
	}
}

// CanteenStats returns the dashboard snapshot for one canteen,
// recomputing it when the cached copy has expired.
func (s *Service) CanteenStats(ctx context.Context, canteenID uuid.UUID) (*CanteenStats, error) {
	cacheKey := fmt.Sprintf("campuseats:stats:%s", canteenID.String())

	cached, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil {
		log.Printf("Cache read failed for stats of %s: %v", canteenID, err)
	}
	if cached != "" {
		stats := &CanteenStats{}
		if err := json.Unmarshal([]byte(cached), stats); err == nil {
			return stats, nil
		}
	}

	stats, err := s.compute(ctx, canteenID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.cacheSvc.SetString(ctx, cacheKey, string(payload), statsCacheTTL); err != nil {
			log.Printf("Cache write failed for stats of %s: %v", canteenID, err)
		}
	}

	return stats, nil
}

func (s *Service) compute(ctx context.Context, canteenID uuid.UUID) (*CanteenStats, error) {
	orders, err := s.orderRepo.ListByCanteen(ctx, canteenID, 1000, 0)
	if err != nil {
		return nil, fmt.Errorf("list canteen orders: %w", err)
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &CanteenStats{
		CanteenID:   canteenID,
		LastUpdated: now,
	}
	for _, order := range orders {
		switch order.Status {
		case models.OrderStatusPending:
			stats.PendingCount++
		case models.OrderStatusReady:
			stats.ReadyCount++
		case models.OrderStatusCompleted:
			stats.CompletedCount++
		}
		if !order.CreatedAt.Before(midnight) {
			stats.OrdersToday++
			stats.RevenueToday += order.TotalAmount
		}
	}

	return stats, nil
}

// Invalidate drops the cached snapshot so the next read recomputes.
func (s *Service) Invalidate(ctx context.Context, canteenID uuid.UUID) error {
	return s.cacheSvc.Delete(ctx, fmt.Sprintf("campuseats:stats:%s", canteenID.String()))
}
