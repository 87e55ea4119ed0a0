// Package logger provides a structured logging interface for the wallpaper scraper.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - File output
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "wallscraper/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Crawl started")
//	logger.WithField("site", "wallhaven").Info("Fetching listing page")
//	logger.WithError(err).Error("Failed to download image")
//
// Components receive a Logger instance rather than reaching for the global,
// so tests can inject a capturing TestLogger and assert on what was logged.
package logger
