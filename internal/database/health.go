package database

import (
	"context"
	"time"
)

// Health reports the package-level connections for the /health endpoint.
type Health struct{}

func (Health) DatabaseStatus() string {
	if Ping() {
		return "ok"
	}
	return "error"
}

func (Health) RedisStatus() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return RedisStatus(ctx)
}
