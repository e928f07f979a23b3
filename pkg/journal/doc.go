// Package journal keeps a history of the searches delegated to the backends.
//
// Each finished search (completed, stopped or failed) becomes a Record with
// the engine that served it, the position it was asked about, the selector
// inputs (fullmove number and material) and the answer. The history shows
// how the material rule splits a game between the two engines.
//
// # Packages
//
//   - recorder: engine.Observer that writes records asynchronously
//   - storage: memory and SQLite backends
//   - retention: age and count based pruning on a cron schedule
//
// # Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{Path: "headsup.db"})
//	if err != nil {
//	    return err
//	}
//	rec := recorder.NewRecorder(store, recorder.DefaultConfig(), logger)
//	defer rec.Close()
//
//	opts := engine.DefaultOptions("engine1")
//	opts.Observer = engine.MultiObserver{collector, rec}
//
// Recording never blocks a supervisor: when the buffer is full the record is
// dropped and a warning is logged.
package journal
