package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Dial settings for backends that may still be starting next to the app.
var (
	dialAttempts = 5
	dialBackoff  = time.Second
)

// waitReady pings until the backend answers, the attempts run out, or ctx ends.
func waitReady(ctx context.Context, name string, ping func(context.Context) error, log zerolog.Logger) error {
	var err error
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if attempt == dialAttempts {
			break
		}
		log.Warn().Err(err).Str("backend", name).Int("attempt", attempt).Msg("Backend not ready, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dialBackoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("%s unreachable after %d attempts: %w", name, dialAttempts, err)
}
