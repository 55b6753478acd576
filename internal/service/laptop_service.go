package service

import (
	"context"
	"fmt"

	"github.com/renthub/laptop-bookings/internal/domain"
	"github.com/renthub/laptop-bookings/internal/persist"
	"github.com/renthub/laptop-bookings/internal/store"
)

type LaptopService interface {
	List(ctx context.Context) ([]domain.Laptop, error)
	Add(ctx context.Context, req *domain.CreateLaptopRequest) (*domain.Laptop, error)
	Remove(ctx context.Context, id int64) error
}

type laptopService struct {
	laptops *store.Laptops
	gateway persist.Gateway
}

func NewLaptopService(laptops *store.Laptops, gateway persist.Gateway) LaptopService {
	return &laptopService{laptops: laptops, gateway: gateway}
}

func (s *laptopService) List(ctx context.Context) ([]domain.Laptop, error) {
	return s.laptops.List(), nil
}

func (s *laptopService) Add(ctx context.Context, req *domain.CreateLaptopRequest) (*domain.Laptop, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, err)
	}

	laptop := s.laptops.Add(domain.Laptop{
		Brand:      req.Brand,
		Model:      req.Model,
		CPU:        req.CPU,
		RAM:        req.RAM,
		Storage:    req.Storage,
		ImageURL:   req.ImageURL,
		DailyPrice: req.DailyPrice,
	})

	if err := flush(ctx, s.gateway, persist.CollectionLaptops, s.laptops.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to persist laptops: %w", err)
	}

	return &laptop, nil
}

func (s *laptopService) Remove(ctx context.Context, id int64) error {
	if err := s.laptops.Remove(id); err != nil {
		return fmt.Errorf("%w: laptop not found", domain.ErrNotFound)
	}

	if err := flush(ctx, s.gateway, persist.CollectionLaptops, s.laptops.Snapshot()); err != nil {
		return fmt.Errorf("failed to persist laptops: %w", err)
	}
	return nil
}
