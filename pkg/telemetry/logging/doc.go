// Package logging sets up the process logger.
//
// Standard output is the UCI channel, so logs go to a file
// (log_headsup.txt by default) or nowhere at all. The file is truncated on
// start, one log per session.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Enabled: true,
//	    File:    "log_headsup.txt",
//	    Level:   "debug",
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Shutdown()
//	slog.SetDefault(logger.Slog())
package logging
