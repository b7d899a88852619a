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

type AttendanceRepo struct {
	MongoCollection *mongo.Collection
}

func GetAttendanceRepo(db *mongo.Database, collectionName string) *AttendanceRepo {
	return &AttendanceRepo{
		MongoCollection: db.Collection(collectionName),
	}
}

// FindDay returns the user's record for date, or nil if there is none.
func (r *AttendanceRepo) FindDay(ctx context.Context, userID string, date time.Time) (*model.AttendanceDay, error) {
	timer := utils.TrackDBOperation("find", "attendance")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var day model.AttendanceDay
	err := r.MongoCollection.FindOne(ctx, bson.M{"user_id": userID, "date": date}).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		utils.TrackError("database", "attendance_fetch_failed")
		return nil, fmt.Errorf("failed to fetch attendance day: %w", err)
	}
	return &day, nil
}

func (r *AttendanceRepo) FindByID(ctx context.Context, id string) (*model.AttendanceDay, error) {
	timer := utils.TrackDBOperation("find", "attendance")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var day model.AttendanceDay
	err := r.MongoCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		utils.TrackError("database", "attendance_fetch_failed")
		return nil, fmt.Errorf("failed to fetch attendance record: %w", err)
	}
	return &day, nil
}

// CreateDay inserts a new day. A concurrent insert for the same user and day
// loses on the unique index and gets ErrDuplicate.
func (r *AttendanceRepo) CreateDay(ctx context.Context, day *model.AttendanceDay) error {
	timer := utils.TrackDBOperation("insert", "attendance")
	defer timer.ObserveDuration()

	if day == nil {
		return fmt.Errorf("attendance day cannot be nil")
	}
	if err := day.Validate(); err != nil {
		utils.TrackError("database", "invalid_attendance_data")
		return fmt.Errorf("invalid attendance day: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, day); err != nil {
		err = wrapWriteError(err)
		if !errors.Is(err, ErrDuplicate) {
			utils.TrackError("database", "attendance_creation_failed")
		}
		return fmt.Errorf("failed to create attendance day: %w", err)
	}
	return nil
}

// CloseLastSession sets the check-out of the last session, provided the stored
// record still matches day (checked in, same number of sessions). It returns
// nil without error when that condition no longer holds.
func (r *AttendanceRepo) CloseLastSession(ctx context.Context, day *model.AttendanceDay, at time.Time) (*model.AttendanceDay, error) {
	n := len(day.Sessions)
	if n == 0 {
		return nil, model.ErrNoSessions
	}

	filter := bson.M{
		"_id":           day.ID,
		"is_checked_in": true,
		"sessions":      bson.M{"$size": n},
	}
	update := bson.M{
		"$set": bson.M{
			fmt.Sprintf("sessions.%d.check_out", n-1): at,
			"is_checked_in": false,
			"updated_at":    at,
		},
	}
	return r.conditionalUpdate(ctx, filter, update)
}

// OpenSession appends a session, provided the stored record is still checked
// out with the same number of sessions as day.
func (r *AttendanceRepo) OpenSession(ctx context.Context, day *model.AttendanceDay, session model.Session) (*model.AttendanceDay, error) {
	filter := bson.M{
		"_id":           day.ID,
		"is_checked_in": false,
		"sessions":      bson.M{"$size": len(day.Sessions)},
	}
	update := bson.M{
		"$push": bson.M{"sessions": session},
		"$set": bson.M{
			"is_checked_in": true,
			"updated_at":    session.CheckIn,
		},
	}
	return r.conditionalUpdate(ctx, filter, update)
}

func (r *AttendanceRepo) conditionalUpdate(ctx context.Context, filter, update bson.M) (*model.AttendanceDay, error) {
	timer := utils.TrackDBOperation("update", "attendance")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.AttendanceDay
	err := r.MongoCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		utils.TrackError("database", "attendance_update_failed")
		return nil, fmt.Errorf("failed to update attendance day: %w", err)
	}
	return &updated, nil
}

// FindOpenDays lists the records of date that are still checked in.
func (r *AttendanceRepo) FindOpenDays(ctx context.Context, date time.Time) ([]*model.AttendanceDay, error) {
	return r.find(ctx, bson.M{"date": date, "is_checked_in": true}, options.Find())
}

// ListDays returns records in [filter.From, filter.To], newest first.
func (r *AttendanceRepo) ListDays(ctx context.Context, filter model.AttendanceFilter) ([]*model.AttendanceDay, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	dateRange := bson.M{}
	if !filter.From.IsZero() {
		dateRange["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		dateRange["$lte"] = filter.To
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})
	return r.find(ctx, query, opts)
}

// ListDaysForUsers returns the records of date for the given users.
func (r *AttendanceRepo) ListDaysForUsers(ctx context.Context, date time.Time, userIDs []string) ([]*model.AttendanceDay, error) {
	if len(userIDs) == 0 {
		return []*model.AttendanceDay{}, nil
	}
	query := bson.M{"date": date, "user_id": bson.M{"$in": userIDs}}
	return r.find(ctx, query, options.Find())
}

func (r *AttendanceRepo) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*model.AttendanceDay, error) {
	timer := utils.TrackDBOperation("find", "attendance")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.MongoCollection.Find(ctx, query, opts)
	if err != nil {
		utils.TrackError("database", "attendance_fetch_failed")
		return nil, fmt.Errorf("failed to fetch attendance records: %w", err)
	}
	defer cursor.Close(ctx)

	days := []*model.AttendanceDay{}
	if err := cursor.All(ctx, &days); err != nil {
		return nil, fmt.Errorf("failed to decode attendance records: %w", err)
	}
	return days, nil
}
