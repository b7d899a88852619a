package cmd

import (
	"context"
	"fmt"
	"log"

	"employee_tracker/config"
	"employee_tracker/repository"
	"employee_tracker/services"
	"employee_tracker/usecase"
	"employee_tracker/utils"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// app holds the wired services shared by the subcommands.
type app struct {
	cfg   config.AppConfig
	dbCfg config.DatabaseConfig

	mongo     *mongo.Client
	redis     *redis.Client
	amqp      *services.AMQPNotifier
	tokens    *services.TokenManager
	blacklist *services.RedisTokenBlacklist

	attendance *usecase.AttendanceService
	activity   *usecase.ActivityService
	users      *usecase.UserService
	warehouses *usecase.WarehouseService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		return nil, err
	}
	dbCfg := config.LoadDatabaseConfig()

	client, err := utils.ConnectMongo(ctx, dbCfg.ClientOptions())
	if err != nil {
		return nil, err
	}
	db := client.Database(dbCfg.DatabaseName)

	a := &app{
		cfg:    cfg,
		dbCfg:  dbCfg,
		mongo:  client,
		tokens: services.NewTokenManager(cfg.JWTSecretKey, cfg.JWTIssuer, cfg.JWTExpiration),
	}

	attendanceRepo := repository.GetAttendanceRepo(db, dbCfg.AttendanceCollection)
	userRepo := repository.GetUserRepo(db, dbCfg.UsersCollection, dbCfg.AttendanceCollection)
	warehouseRepo := repository.GetWarehouseRepo(db, dbCfg.WarehousesCollection)
	activityRepo := repository.GetActivityRepo(db, dbCfg.ActivitiesCollection)

	opts := []usecase.AttendanceOption{usecase.WithGeofenceRadius(cfg.GeofenceRadiusKm)}

	if cfg.RedisURL != "" {
		rc, err := services.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis unavailable, running without status cache and token blacklist: %v", err)
		} else {
			a.redis = rc
			a.blacklist = services.NewTokenBlacklist(rc)
			opts = append(opts, usecase.WithStatusCache(services.NewStatusCache(rc, cfg.StatusCacheTTL)))
		}
	}

	if cfg.RabbitMQURL != "" {
		a.amqp = services.NewAMQPNotifier(cfg.RabbitMQURL)
		opts = append(opts, usecase.WithNotifier(a.amqp))
	} else {
		log.Println("Warning: RABBITMQ_URL not set, notifications are only logged")
		opts = append(opts, usecase.WithNotifier(services.LogNotifier{}))
	}

	a.attendance = usecase.NewAttendanceService(attendanceRepo, userRepo, warehouseRepo, cfg.Timezone, opts...)
	a.activity = usecase.NewActivityService(activityRepo, userRepo, cfg.Timezone, nil)
	a.warehouses = usecase.NewWarehouseService(warehouseRepo)
	if a.blacklist != nil {
		a.users = usecase.NewUserService(userRepo, warehouseRepo, a.tokens, a.blacklist)
	} else {
		a.users = usecase.NewUserService(userRepo, warehouseRepo, a.tokens, nil)
	}

	return a, nil
}

func (a *app) database() *mongo.Database {
	return a.mongo.Database(a.dbCfg.DatabaseName)
}

func (a *app) setupIndexes(ctx context.Context) error {
	if err := repository.SetupIndexes(ctx, a.database(), a.dbCfg); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (a *app) Close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			log.Printf("Warning: failed to close RabbitMQ connection: %v", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("Warning: failed to close Redis client: %v", err)
		}
	}
	utils.DisconnectMongo(a.mongo)
}
