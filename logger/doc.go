// Package logger provides structured logging for socialauth using zerolog.
//
// Loggers are plain values: the application builds one at startup and
// injects it into the orchestrator and its collaborators, which derive
// component-scoped children with WithComponent.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg.Logging, "socialauth")
//	log.WithComponent("popup").Info("window opened", logger.Fields("id", id))
package logger
