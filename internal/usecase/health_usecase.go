package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	pool  *pgxpool.Pool
	redis *goredis.Client // nil when Redis is not configured
}

func NewHealthUsecase(pool *pgxpool.Pool, redisClient *goredis.Client) HealthUsecase {
	return &healthUsecase{pool: pool, redis: redisClient}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	result := map[string]string{"status": "ok"}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := u.pool.Ping(ctx); err != nil {
		result["status"] = "degraded"
		result["database"] = "down"
	} else {
		result["database"] = "up"
	}

	if u.redis != nil {
		if err := u.redis.Ping(ctx).Err(); err != nil {
			result["redis"] = "down"
		} else {
			result["redis"] = "up"
		}
	}

	return result
}
