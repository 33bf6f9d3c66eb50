// Package infra contains technical adapters for the timetable workspace:
// Prometheus metrics, the MQTT change notifier, Sentry monitoring and the
// zerolog logger. These packages depend only on interfaces defined in the
// core packages.
package infra
