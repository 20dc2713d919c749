package config

import (
	"os"
	"strings"
	"time"
)

func LoadFromEnv() {
	InfluxURL = os.Getenv("INFLUX_URL")
	InfluxDatabase = os.Getenv("INFLUX_DATABASE")
	InfluxUsername = os.Getenv("INFLUX_USERNAME")
	InfluxPassword = os.Getenv("INFLUX_PASSWORD")
	InfluxRetentionPolicy = os.Getenv("INFLUX_RETENTION_POLICY")
	InfluxConsistency = os.Getenv("INFLUX_CONSISTENCY")
	InfluxTags = parseTags(os.Getenv("INFLUX_TAGS"))

	BatchQueueURL = os.Getenv("BATCH_QUEUE_URL")
	if d, err := time.ParseDuration(os.Getenv("POLL_INTERVAL")); err == nil {
		PollInterval = d
	}

	AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
}

// parseTags parses "key=value,key=value" into a map. Malformed pairs are
// skipped.
func parseTags(raw string) map[string]string {
	if raw == "" {
		return nil
	}

	kvPairs := strings.Split(raw, ",")
	tags := make(map[string]string, len(kvPairs))
	for _, pair := range kvPairs {
		k, v, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		tags[k] = v
	}

	return tags
}
