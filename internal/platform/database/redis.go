package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RDB is nil when Redis is not configured.
var RDB *redis.Client

// InitRedis connects to Redis when an address is configured. A failed ping
// does not abort startup: the client is kept, the status is marked
// unhealthy and the health checker takes over.
func InitRedis(address, password string, db int, log *logrus.Logger) *redis.Client {
	if address == "" {
		log.Info("redis not configured, running with local-only notifications")
		UpdateStatus(false, "")
		return nil
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:         address,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis ping failed, marking redis unavailable")
		UpdateStatus(false, "")
		return RDB
	}

	UpdateStatus(true, "")
	log.WithField("address", address).Info("redis connected")
	return RDB
}
