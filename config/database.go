package config

import (
	"time"

	"employee_tracker/utils"

	"go.mongodb.org/mongo-driver/mongo/options"
)

type DatabaseConfig struct {
	URI                  string
	MaxPoolSize          uint64
	MinPoolSize          uint64
	MaxConnIdleTime      time.Duration
	DatabaseName         string
	RetryWrites          bool
	UsersCollection      string
	WarehousesCollection string
	AttendanceCollection string
	ActivitiesCollection string
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URI:                  utils.GetEnvAsString("MONGO_URI", "mongodb://localhost:27017"),
		MaxPoolSize:          utils.GetEnvAsUint64("MONGO_MAX_POOL_SIZE", 100),
		MinPoolSize:          utils.GetEnvAsUint64("MONGO_MIN_POOL_SIZE", 10),
		MaxConnIdleTime:      time.Duration(utils.GetEnvAsInt("MONGO_MAX_CONN_IDLE_TIME", 60)) * time.Second,
		DatabaseName:         utils.GetEnvAsString("MONGO_DB", "employee_tracker"),
		RetryWrites:          utils.GetEnvAsBool("MONGO_RETRY_WRITES", true),
		UsersCollection:      utils.GetEnvAsString("USERS_COLLECTION", "users"),
		WarehousesCollection: utils.GetEnvAsString("WAREHOUSES_COLLECTION", "warehouses"),
		AttendanceCollection: utils.GetEnvAsString("ATTENDANCE_COLLECTION", "attendances"),
		ActivitiesCollection: utils.GetEnvAsString("ACTIVITIES_COLLECTION", "employee_outside_activities"),
	}
}

// ClientOptions builds the driver options for this configuration.
func (c DatabaseConfig) ClientOptions() *options.ClientOptions {
	return options.Client().
		ApplyURI(c.URI).
		SetMaxPoolSize(c.MaxPoolSize).
		SetMinPoolSize(c.MinPoolSize).
		SetMaxConnIdleTime(c.MaxConnIdleTime).
		SetRetryWrites(c.RetryWrites)
}
