package usecase

import (
	"context"
	"errors"
	"strings"

	"employee_tracker/model"
	"employee_tracker/repository"
	"employee_tracker/utils"
)

type WarehouseStore interface {
	AddWarehouse(ctx context.Context, w *model.Warehouse) error
	FindWarehouse(ctx context.Context, id string) (*model.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]*model.Warehouse, error)
	UpdateWarehouse(ctx context.Context, w *model.Warehouse) (bool, error)
	DeleteWarehouse(ctx context.Context, id string) (bool, error)
}

type WarehouseService struct {
	warehouses WarehouseStore
	clock      utils.Clock
}

func NewWarehouseService(warehouses WarehouseStore) *WarehouseService {
	return &WarehouseService{warehouses: warehouses, clock: utils.RealClock{}}
}

// WarehouseInput carries the editable profile. The head count and manager
// list follow user assignments and are not set here.
type WarehouseInput struct {
	Name     *string
	Location *utils.Point
	IsActive *bool
}

func (s *WarehouseService) CreateWarehouse(ctx context.Context, in WarehouseInput) (*model.Warehouse, error) {
	if in.Name == nil || in.Location == nil {
		return nil, invalidInput("name and location are required")
	}

	now := s.clock.Now()
	w := &model.Warehouse{
		WarehouseID: utils.GenerateID(),
		Name:        *in.Name,
		Location:    *in.Location,
		Managers:    []string{},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}
	if err := w.Validate(); err != nil {
		return nil, invalidInput(err.Error())
	}

	if err := s.warehouses.AddWarehouse(ctx, w); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("a warehouse with this name already exists")
		}
		return nil, upstream("failed to create warehouse", err)
	}
	return w, nil
}

func (s *WarehouseService) GetWarehouse(ctx context.Context, id string) (*model.Warehouse, error) {
	w, err := s.warehouses.FindWarehouse(ctx, id)
	if err != nil {
		return nil, upstream("failed to load warehouse", err)
	}
	if w == nil {
		return nil, notFound("warehouse not found")
	}
	return w, nil
}

func (s *WarehouseService) ListWarehouses(ctx context.Context) ([]*model.Warehouse, error) {
	list, err := s.warehouses.ListWarehouses(ctx)
	if err != nil {
		return nil, upstream("failed to list warehouses", err)
	}
	return list, nil
}

func (s *WarehouseService) UpdateWarehouse(ctx context.Context, id string, in WarehouseInput) (*model.Warehouse, error) {
	w, err := s.GetWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		w.Name = strings.TrimSpace(*in.Name)
	}
	if in.Location != nil {
		w.Location = *in.Location
	}
	if in.IsActive != nil {
		w.IsActive = *in.IsActive
	}
	if err := w.Validate(); err != nil {
		return nil, invalidInput(err.Error())
	}
	w.UpdatedAt = s.clock.Now()

	ok, err := s.warehouses.UpdateWarehouse(ctx, w)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("a warehouse with this name already exists")
		}
		return nil, upstream("failed to update warehouse", err)
	}
	if !ok {
		return nil, notFound("warehouse not found")
	}
	return w, nil
}

func (s *WarehouseService) DeleteWarehouse(ctx context.Context, id string) error {
	ok, err := s.warehouses.DeleteWarehouse(ctx, id)
	if err != nil {
		return upstream("failed to delete warehouse", err)
	}
	if !ok {
		return notFound("warehouse not found")
	}
	return nil
}
