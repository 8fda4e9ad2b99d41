// Package maintenance runs scheduled housekeeping against the call store.
//
// A cron job (github.com/robfig/cron/v3, standard five-field syntax) checkpoints
// the SQLite write-ahead log and publishes the number of stored records. The
// job never deletes or rewrites records.
//
//	scheduler := maintenance.NewScheduler(store, "0 * * * *", collector)
//	if err := scheduler.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer scheduler.Stop()
package maintenance
