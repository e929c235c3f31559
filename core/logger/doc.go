// Package logger provides a structured logging facility based on Zap.
//
// The debug level uses zap's development configuration; every other level uses the
// production configuration at that level. Format selects json or console encoding.
//
// # Context Awareness
//
// WithRayID extracts the RayID stored by the rayid middleware from a Fiber context
// and attaches it to the logger, so all logs of one request can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Pull failed", zap.Error(err))
package logger
