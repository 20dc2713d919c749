package config

import "time"

var (
	InfluxURL             string
	InfluxDatabase        string
	InfluxUsername        string
	InfluxPassword        string
	InfluxRetentionPolicy string
	InfluxConsistency     string
	InfluxTags            map[string]string
)

var (
	BatchQueueURL string
	PollInterval  time.Duration

	AccessKeyID     string
	SecretAccessKey string
)
