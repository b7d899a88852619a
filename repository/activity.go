package repository

import (
	"context"
	"fmt"
	"time"

	"employee_tracker/model"
	"employee_tracker/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ActivityRepo struct {
	MongoCollection *mongo.Collection
}

func GetActivityRepo(db *mongo.Database, collectionName string) *ActivityRepo {
	return &ActivityRepo{
		MongoCollection: db.Collection(collectionName),
	}
}

func (r *ActivityRepo) Insert(ctx context.Context, event *model.ActivityEvent) error {
	timer := utils.TrackDBOperation("insert", "activities")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, event); err != nil {
		utils.TrackError("database", "activity_creation_failed")
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

func (r *ActivityRepo) InsertMany(ctx context.Context, events []*model.ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}

	timer := utils.TrackDBOperation("insert_many", "activities")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	docs := make([]interface{}, 0, len(events))
	for _, ev := range events {
		docs = append(docs, ev)
	}

	if _, err := r.MongoCollection.InsertMany(ctx, docs); err != nil {
		utils.TrackError("database", "activity_bulk_creation_failed")
		return fmt.Errorf("failed to log activities: %w", err)
	}
	return nil
}

// List pages through events, newest first. An empty userID lists everyone.
func (r *ActivityRepo) List(ctx context.Context, userID string, page, limit int64) ([]*model.ActivityEvent, int64, error) {
	timer := utils.TrackDBOperation("find", "activities")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}

	skip, size := pageOptions(page, limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(size)

	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.TrackError("database", "activity_fetch_failed")
		return nil, 0, fmt.Errorf("failed to fetch activities: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*model.ActivityEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, fmt.Errorf("failed to decode activities: %w", err)
	}

	total, err := r.MongoCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	return events, total, nil
}

// FindByUserRange returns a user's events in [from, to], oldest first.
func (r *ActivityRepo) FindByUserRange(ctx context.Context, userID string, from, to time.Time) ([]*model.ActivityEvent, error) {
	timer := utils.TrackDBOperation("find", "activities")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"user_id":    userID,
		"created_at": bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.TrackError("database", "activity_fetch_failed")
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*model.ActivityEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return events, nil
}

// Delete hard-deletes an event and reports whether it existed.
func (r *ActivityRepo) Delete(ctx context.Context, id string) (bool, error) {
	timer := utils.TrackDBOperation("delete", "activities")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		utils.TrackError("database", "activity_deletion_failed")
		return false, fmt.Errorf("failed to delete activity: %w", err)
	}
	return result.DeletedCount > 0, nil
}

type userEvents struct {
	UserID string                 `bson:"_id"`
	Events []*model.ActivityEvent `bson:"events"`
}

// GroupByUsers returns the events of each user in [from, to], oldest first,
// keyed by user ID. Users without events are absent from the map.
func (r *ActivityRepo) GroupByUsers(ctx context.Context, userIDs []string, from, to time.Time) (map[string][]*model.ActivityEvent, error) {
	grouped := map[string][]*model.ActivityEvent{}
	if len(userIDs) == 0 {
		return grouped, nil
	}

	timer := utils.TrackDBOperation("aggregate", "activities")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":    bson.M{"$in": userIDs},
			"created_at": bson.M{"$gte": from, "$lte": to},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$user_id",
			"events": bson.M{"$push": "$$ROOT"},
		}}},
	}

	cursor, err := r.MongoCollection.Aggregate(ctx, pipeline)
	if err != nil {
		utils.TrackError("database", "activity_aggregation_failed")
		return nil, fmt.Errorf("failed to aggregate activities: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []userEvents
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	for _, row := range rows {
		grouped[row.UserID] = row.Events
	}
	return grouped, nil
}
