// Package logger provides structured logging for enumerable pipelines and
// the enumerate command using zerolog.
//
// A pipeline logs through the *Logger it was built with; pipelines built
// without one fall back to a no-op logger, so library users only see output
// when they opt in.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "console"
//
// # Usage
//
//	log := logger.New(&cfg, "enumerate").WithComponent("pipeline")
//	log.Debug("operand is not iterable", logger.Fields("type", "int"))
package logger
