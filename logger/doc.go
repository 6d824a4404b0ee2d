// Package logger provides structured logging for the dashboard service
// using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers carrying map-based fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("orchestrator")
//	log.Info("run started", logger.Fields(logger.FieldRunID, id))
package logger
