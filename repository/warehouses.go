package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"employee_tracker/model"
	"employee_tracker/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WarehouseRepo struct {
	MongoCollection *mongo.Collection
}

func GetWarehouseRepo(db *mongo.Database, collectionName string) *WarehouseRepo {
	return &WarehouseRepo{
		MongoCollection: db.Collection(collectionName),
	}
}

func (r *WarehouseRepo) AddWarehouse(ctx context.Context, w *model.Warehouse) error {
	timer := utils.TrackDBOperation("insert", "warehouses")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// $addToSet and $pull need an array, not null.
	if w.Managers == nil {
		w.Managers = []string{}
	}
	if _, err := r.MongoCollection.InsertOne(ctx, w); err != nil {
		err = wrapWriteError(err)
		if !errors.Is(err, ErrDuplicate) {
			utils.TrackError("database", "warehouse_creation_failed")
		}
		return fmt.Errorf("failed to add warehouse: %w", err)
	}
	return nil
}

func (r *WarehouseRepo) FindWarehouse(ctx context.Context, id string) (*model.Warehouse, error) {
	timer := utils.TrackDBOperation("find", "warehouses")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var w model.Warehouse
	if err := r.MongoCollection.FindOne(ctx, bson.M{"warehouse_id": id}).Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		utils.TrackError("database", "warehouse_lookup_error")
		return nil, fmt.Errorf("failed to fetch warehouse: %w", err)
	}
	return &w, nil
}

func (r *WarehouseRepo) ListWarehouses(ctx context.Context) ([]*model.Warehouse, error) {
	timer := utils.TrackDBOperation("find", "warehouses")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.MongoCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch warehouses: %w", err)
	}
	defer cursor.Close(ctx)

	warehouses := []*model.Warehouse{}
	if err := cursor.All(ctx, &warehouses); err != nil {
		return nil, fmt.Errorf("failed to decode warehouses: %w", err)
	}
	return warehouses, nil
}

// UpdateWarehouse replaces the mutable fields and reports whether a document matched.
func (r *WarehouseRepo) UpdateWarehouse(ctx context.Context, w *model.Warehouse) (bool, error) {
	timer := utils.TrackDBOperation("update", "warehouses")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"name":       w.Name,
			"location":   w.Location,
			"is_active":  w.IsActive,
			"updated_at": w.UpdatedAt,
		},
	}

	result, err := r.MongoCollection.UpdateOne(ctx, bson.M{"warehouse_id": w.WarehouseID}, update)
	if err != nil {
		return false, fmt.Errorf("failed to update warehouse: %w", wrapWriteError(err))
	}
	return result.MatchedCount > 0, nil
}

// SetTotalEmployees stores a recounted head count.
func (r *WarehouseRepo) SetTotalEmployees(ctx context.Context, id string, total int64) error {
	return r.updateRoster(ctx, id, bson.M{"$set": bson.M{"total_employees": total}})
}

func (r *WarehouseRepo) AddManager(ctx context.Context, id, userID string) error {
	return r.updateRoster(ctx, id, bson.M{"$addToSet": bson.M{"managers": userID}})
}

func (r *WarehouseRepo) RemoveManager(ctx context.Context, id, userID string) error {
	return r.updateRoster(ctx, id, bson.M{"$pull": bson.M{"managers": userID}})
}

func (r *WarehouseRepo) updateRoster(ctx context.Context, id string, update bson.M) error {
	timer := utils.TrackDBOperation("update", "warehouses")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.MongoCollection.UpdateOne(ctx, bson.M{"warehouse_id": id}, update); err != nil {
		utils.TrackError("database", "warehouse_roster_update_failed")
		return fmt.Errorf("failed to update warehouse roster: %w", err)
	}
	return nil
}

func (r *WarehouseRepo) DeleteWarehouse(ctx context.Context, id string) (bool, error) {
	timer := utils.TrackDBOperation("delete", "warehouses")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"warehouse_id": id})
	if err != nil {
		utils.TrackError("database", "warehouse_deletion_failed")
		return false, fmt.Errorf("failed to delete warehouse: %w", err)
	}
	return result.DeletedCount > 0, nil
}
