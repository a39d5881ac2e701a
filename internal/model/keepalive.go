package model

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const pingTimeout = 10 * time.Second

// KeepAlive pings the database every interval until ctx is cancelled.
// Failures are logged and the loop keeps going.
func KeepAlive(ctx context.Context, repo Repository, interval time.Duration) {
	if repo == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := repo.Ping(pingCtx)
			cancel()
			if err != nil {
				logrus.WithError(err).Warn("database keep-alive ping failed")
				continue
			}
			logrus.Debug("database keep-alive ping ok")
		}
	}
}
