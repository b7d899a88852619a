package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"employee_tracker/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Index names, exported for tests and the indexes command.
const (
	IndexAttendanceUserDate = "attendance_user_date"
	IndexAttendanceOpen     = "attendance_date_open"
	IndexActivityUserDate   = "activity_user_date"
	IndexUsersUsername      = "users_username"
	IndexUsersEmail         = "users_email"
	IndexUsersWarehouse     = "users_warehouse_role"
	IndexWarehouseID        = "warehouses_id"
	IndexWarehouseName      = "warehouses_name"
)

func SetupIndexes(ctx context.Context, db *mongo.Database, cfg config.DatabaseConfig) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	collections := map[string][]mongo.IndexModel{
		cfg.AttendanceCollection: {
			// One record per user per day; concurrent first check-ins rely on it.
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "date", Value: 1},
				},
				Options: options.Index().
					SetName(IndexAttendanceUserDate).
					SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "date", Value: 1},
					{Key: "is_checked_in", Value: 1},
				},
				Options: options.Index().SetName(IndexAttendanceOpen),
			},
		},
		cfg.ActivitiesCollection: {
			{
				Keys: bson.D{
					{Key: "user_id", Value: 1},
					{Key: "created_at", Value: -1},
				},
				Options: options.Index().SetName(IndexActivityUserDate),
			},
		},
		cfg.UsersCollection: {
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetName(IndexUsersUsername).SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName(IndexUsersEmail).SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "assigned_warehouse", Value: 1},
					{Key: "role", Value: 1},
				},
				Options: options.Index().SetName(IndexUsersWarehouse),
			},
		},
		cfg.WarehousesCollection: {
			{
				Keys:    bson.D{{Key: "warehouse_id", Value: 1}},
				Options: options.Index().SetName(IndexWarehouseID).SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetName(IndexWarehouseName).SetUnique(true),
			},
		},
	}

	for name, indexes := range collections {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}

	log.Println("Successfully created all indexes")
	return nil
}
