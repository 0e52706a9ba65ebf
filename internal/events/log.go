package events

import "log/slog"

// LogSubscriber logs lifecycle events.
func LogSubscriber(logger *slog.Logger) Subscriber {
	return func(e Event) {
		switch e := e.(type) {
		case *Started:
			logger.Debug("Parsing build file.", "file", e.BuildFile, "event_id", e.ID)
		case *Finished:
			if e.Err != nil {
				logger.Warn("Build file parsing failed.",
					"file", e.Started.BuildFile, "event_id", e.Started.ID,
					"rules", len(e.Rules), "duration", e.Duration(), "error", e.Err)
				return
			}
			logger.Info("Build file parsed.",
				"file", e.Started.BuildFile, "event_id", e.Started.ID,
				"rules", len(e.Rules), "duration", e.Duration())
		}
	}
}
