package main

import (
	"context"
	"time"
)

// completePastBookingsEvery moves confirmed bookings with a past event date
// to completed on a fixed interval.
func (app *application) completePastBookingsEvery(interval time.Duration) {
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := app.store.Bookings.CompletePastBookings(ctx)
		if err != nil {
			app.logger.Errorw("error completing past bookings", "error", err)
			return
		}
		if n > 0 {
			app.logger.Infow("completed past bookings", "count", n)
		}
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		run()
		for range ticker.C {
			run()
		}
	}()
}
