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

func GetUserRepo(db *mongo.Database, collectionName, attendanceCollection string) *UserRepo {
	return &UserRepo{
		MongoCollection:      db.Collection(collectionName),
		AttendanceCollection: attendanceCollection,
	}
}

type UserRepo struct {
	MongoCollection *mongo.Collection
	// AttendanceCollection is joined by WarehouseEmployeesStatus.
	AttendanceCollection string
}

func (r *UserRepo) AddUser(ctx context.Context, user *model.User) error {
	timer := utils.TrackDBOperation("insert", "users")
	defer timer.ObserveDuration()

	if user.Username == "" || user.Password == "" {
		utils.TrackError("database", "invalid_user_data")
		return errors.New("username and password required")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, user); err != nil {
		err = wrapWriteError(err)
		if !errors.Is(err, ErrDuplicate) {
			utils.TrackError("database", "user_creation_failed")
		}
		return fmt.Errorf("failed to add user: %w", err)
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, filter interface{}) (*model.User, error) {
	timer := utils.TrackDBOperation("find", "users")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var user model.User
	if err := r.MongoCollection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		utils.TrackError("database", "user_lookup_error")
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) FindUser(ctx context.Context, userID string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

// FindByLogin matches either the username or the email address.
func (r *UserRepo) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": login},
		bson.M{"email": login},
	}})
}

func userFilter(f model.UserFilter) bson.M {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Warehouse != "" {
		filter["assigned_warehouse"] = f.Warehouse
	}
	return filter
}

func (r *UserRepo) ListUsers(ctx context.Context, f model.UserFilter) ([]*model.User, int64, error) {
	timer := utils.TrackDBOperation("find", "users")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := userFilter(f)
	skip, size := pageOptions(f.Page, f.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(size)

	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.TrackError("database", "user_list_failed")
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("failed to decode users: %w", err)
	}

	total, err := r.MongoCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	return users, total, nil
}

// FindUsersByIDs returns the users with the given IDs in no particular order.
func (r *UserRepo) FindUsersByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}

	timer := utils.TrackDBOperation("find", "users")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.MongoCollection.Find(ctx, bson.M{"user_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// FindByWarehouse lists the employees and managers assigned to a warehouse.
func (r *UserRepo) FindByWarehouse(ctx context.Context, warehouseID string) ([]*model.User, error) {
	timer := utils.TrackDBOperation("find", "users")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"assigned_warehouse": warehouseID,
		"role":               bson.M{"$in": bson.A{model.RoleEmployee, model.RoleWarehouseManager}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})

	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch warehouse users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// CountWarehouseEmployees counts the active employees assigned to a warehouse.
func (r *UserRepo) CountWarehouseEmployees(ctx context.Context, warehouseID string) (int64, error) {
	timer := utils.TrackDBOperation("count", "users")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"assigned_warehouse": warehouseID,
		"role":               model.RoleEmployee,
		"is_active":          true,
	}
	count, err := r.MongoCollection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count warehouse employees: %w", err)
	}
	return count, nil
}

// FindAdmins returns every active admin.
func (r *UserRepo) FindAdmins(ctx context.Context) ([]*model.User, error) {
	timer := utils.TrackDBOperation("find", "users")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.MongoCollection.Find(ctx, bson.M{"role": model.RoleAdmin, "is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch admins: %w", err)
	}
	defer cursor.Close(ctx)

	admins := []*model.User{}
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, fmt.Errorf("failed to decode admins: %w", err)
	}
	return admins, nil
}

// WarehouseEmployeesStatus joins each employee of the warehouse with their
// attendance record for date. Employees without a record are not checked in.
func (r *UserRepo) WarehouseEmployeesStatus(ctx context.Context, warehouseID string, date time.Time) ([]*model.EmployeeStatus, error) {
	timer := utils.TrackDBOperation("aggregate", "users")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"assigned_warehouse": warehouseID,
			"role":               bson.M{"$in": bson.A{model.RoleEmployee, model.RoleWarehouseManager}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": r.AttendanceCollection,
			"let":  bson.M{"uid": "$user_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{
					"$expr": bson.M{"$and": bson.A{
						bson.M{"$eq": bson.A{"$user_id", "$$uid"}},
						bson.M{"$eq": bson.A{"$date", date}},
					}},
				}},
				bson.M{"$limit": 1},
			},
			"as": "today",
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":      0,
			"user_id":  1,
			"username": 1,
			"email":    1,
			"is_checked_in": bson.M{"$ifNull": bson.A{
				bson.M{"$arrayElemAt": bson.A{"$today.is_checked_in", 0}},
				false,
			}},
		}}},
		{{Key: "$sort", Value: bson.M{"username": 1}}},
	}

	cursor, err := r.MongoCollection.Aggregate(ctx, pipeline)
	if err != nil {
		utils.TrackError("database", "warehouse_status_failed")
		return nil, fmt.Errorf("failed to aggregate warehouse status: %w", err)
	}
	defer cursor.Close(ctx)

	statuses := []*model.EmployeeStatus{}
	if err := cursor.All(ctx, &statuses); err != nil {
		return nil, fmt.Errorf("failed to decode warehouse status: %w", err)
	}
	return statuses, nil
}

// UpdateUser writes the profile fields and reports whether a user matched.
func (r *UserRepo) UpdateUser(ctx context.Context, user *model.User) (bool, error) {
	timer := utils.TrackDBOperation("update", "users")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"username":           user.Username,
			"email":              user.Email,
			"role":               user.Role,
			"assigned_warehouse": user.AssignedWarehouse,
			"is_active":          user.IsActive,
			"updated_at":         user.UpdatedAt,
		},
	}

	result, err := r.MongoCollection.UpdateOne(ctx, bson.M{"user_id": user.UserID}, update)
	if err != nil {
		err = wrapWriteError(err)
		if !errors.Is(err, ErrDuplicate) {
			utils.TrackError("database", "user_update_failed")
		}
		return false, fmt.Errorf("failed to update user: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (r *UserRepo) UpdateUserPassword(ctx context.Context, userID string, hashedPassword string) (bool, error) {
	timer := utils.TrackDBOperation("update", "users")
	defer timer.ObserveDuration()

	if hashedPassword == "" {
		utils.TrackError("database", "invalid_password_hash")
		return false, fmt.Errorf("password hashing error")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"password":   hashedPassword,
			"updated_at": time.Now(),
		},
	}

	result, err := r.MongoCollection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		utils.TrackError("database", "password_update_failed")
		return false, fmt.Errorf("failed to update password: %w", err)
	}
	return result.MatchedCount > 0, nil
}

// UpdateAppToken stores the push token of the user's mobile app.
func (r *UserRepo) UpdateAppToken(ctx context.Context, userID, token string) (bool, error) {
	timer := utils.TrackDBOperation("update", "users")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"app_token":  token,
			"updated_at": time.Now(),
		},
	}

	result, err := r.MongoCollection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		utils.TrackError("database", "app_token_update_failed")
		return false, fmt.Errorf("failed to update app token: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (r *UserRepo) DeleteUserByID(ctx context.Context, userID string) (bool, error) {
	timer := utils.TrackDBOperation("delete", "users")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		utils.TrackError("database", "user_deletion_failed")
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return result.DeletedCount > 0, nil
}
