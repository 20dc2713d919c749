package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/oneee-playground/influx-sink/internal/batch"
	conf "github.com/oneee-playground/influx-sink/internal/config"
	"github.com/oneee-playground/influx-sink/internal/influx"
	"github.com/oneee-playground/influx-sink/internal/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	conf.LoadFromEnv()

	logger := zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stdout), zap.DebugLevel,
	))

	awsConfig := aws.Config{
		Region:      "ap-northeast-2",
		Credentials: credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretAccessKey, ""),
	}

	sqsClient := sqs.NewFromConfig(awsConfig)

	sink, err := influx.NewClient(influx.Config{
		ConnectString:   conf.InfluxURL,
		Database:        conf.InfluxDatabase,
		Username:        conf.InfluxUsername,
		Password:        conf.InfluxPassword,
		RetentionPolicy: conf.InfluxRetentionPolicy,
		Consistency:     conf.InfluxConsistency,
		Tags:            conf.InfluxTags,
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize influxdb client", zap.Error(err))
	}
	defer sink.Close()

	pollInterval := conf.PollInterval
	if pollInterval == 0 {
		pollInterval = 10 * time.Second
	}

	serverOpts := server.ServerOpts{
		Poller:       batch.NewPoller(sqsClient, conf.BatchQueueURL),
		Sink:         sink,
		PollInterval: pollInterval,
	}

	srv := server.New(logger, serverOpts)
	if err := srv.Run(context.TODO()); err != nil {
		logger.Fatal("serve failed", zap.Error(err))
	}
}
