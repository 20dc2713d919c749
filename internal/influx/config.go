package influx

import "time"

// Config describes the target InfluxDB 1.x server. It is read-only once
// the client is constructed.
type Config struct {
	// ConnectString is the base URL of the server, e.g. "http://influx:8086".
	ConnectString string
	Database      string

	Username string
	Password string

	// RetentionPolicy and Consistency are passed through as write query
	// parameters when set, and omitted otherwise.
	RetentionPolicy string
	Consistency     string

	// Tags are merged into every written point. Point tags win on collision.
	Tags map[string]string

	// Timeout bounds every HTTP request. Defaults to 10s.
	Timeout time.Duration
}
