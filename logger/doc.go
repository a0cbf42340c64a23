// Package logger provides structured logging backed by zerolog.
//
// A single global logger is initialised from configuration at startup;
// packages derive component-scoped children from it.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("media")
//	log.Info("audio extracted", logger.Fields("duration_s", 312.4))
package logger
