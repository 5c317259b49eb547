// Package logging wires log/slog for the marquee CLI.
//
// It provides a console handler that renders compact single-line records
// (timestamp, level, component, message, key=value pairs) and a JSON handler
// for machine consumption. Components tag their loggers via
// NewComponentLogger so every record names its origin. All output defaults
// to stderr because the feed itself may be written to stdout.
package logging
