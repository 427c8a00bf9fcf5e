// Package logger provides structured logging functionality for the ytstream project.
//
// Features:
//   - Multiple log levels (TRACE, DEBUG, INFO, WARN, ERROR)
//   - Component-based filtering
//   - Multiple output formats (text, JSON, color)
//   - Thread-safe operations
//   - Configurable output and formatting
//
// Usage:
//
//	// Get a component logger
//	log := logger.WithComponent(logger.ComponentStream)
//
//	// Log messages with different levels
//	log.Info("refreshing playlist", map[string]interface{}{
//		"url": "https://example.com/playlist.m3u8",
//	})
//
//	// Configure global logger
//	config := logger.DefaultConfig()
//	config.Level = logger.DEBUG
//	config.Format = logger.FormatJSON
//	logger.SetGlobalLogger(logger.New(config))
//
// Components:
//   - ComponentApp: facade-level logs
//   - ComponentCipher: function extraction and execution logs
//   - ComponentFormats: format resolution and selection logs
//   - ComponentStream: ranged and live session logs
//   - ComponentClient: HTTP client logs
//   - ComponentDownloader: file download logs
package logger
