package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/oneee-playground/influx-sink/internal/batch"
	conf "github.com/oneee-playground/influx-sink/internal/config"
	"github.com/ryanolee/go-chaff"
)

var (
	num        int
	numSamples int

	queueURL    string
	measurement string
	tags        map[string]string

	fieldsSchema []byte
)

func processParameters() {
	var (
		_num         = flag.Int("n", 1, "number of batches to publish")
		_numSamples  = flag.Int("samples", 1, "number of samples per batch")
		_queueURL    = flag.String("queue", "", "batch queue url")
		_measurement = flag.String("measurement", "test", "measurement name")
		_tags        = flag.String("tags", "", "sample tags. seperated with comma. (e.g. tags=key=value,key=value")
		_schemaPath  = flag.String("schema", "", "json schema file for generating fields")
	)

	flag.Parse()

	num = *_num
	numSamples = *_numSamples
	queueURL = *_queueURL
	measurement = *_measurement

	if *_schemaPath != "" {
		file, err := os.Open(*_schemaPath)
		if err != nil {
			log.Fatal(err)
		}
		defer file.Close()

		b, err := io.ReadAll(file)
		if err != nil {
			log.Fatal(err)
		}

		fieldsSchema = b
	}

	if *_tags != "" {
		kvPairs := strings.Split(*_tags, ",")
		tagMap := make(map[string]string, len(kvPairs))
		for _, pair := range kvPairs {
			k, v, found := strings.Cut(pair, "=")
			if !found {
				log.Fatal("malformed tag")
			}

			tagMap[k] = v
		}

		tags = tagMap
	}
}

func main() {
	processParameters()
	conf.LoadFromEnv()

	var generator chaff.Generator
	if fieldsSchema != nil {
		gen, err := chaff.ParseSchema(fieldsSchema, &chaff.ParserOptions{})
		if err != nil {
			log.Fatal(err)
		}
		generator = gen
	}

	awsConfig := aws.Config{
		Region:      "ap-northeast-2",
		Credentials: credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.SecretAccessKey, ""),
	}

	publisher := batch.NewSQSPublisher(sqs.NewFromConfig(awsConfig), queueURL)

	for i := 0; i < num; i++ {
		samples := make([]batch.Sample, 0, numSamples)
		for j := 0; j < numSamples; j++ {
			var fields map[string]any
			if generator != nil {
				result := generator.Generate(&chaff.GeneratorOptions{})
				generated, ok := result.(map[string]any)
				if !ok {
					log.Fatal("schema must generate a json object")
				}
				fields = generated
			} else {
				fields = map[string]any{"value": float64(j)}
			}

			samples = append(samples, batch.Sample{
				Measurement: measurement,
				Tags:        tags,
				Fields:      fields,
				Timestamp:   time.Now().UnixMilli(),
			})
		}

		b := batch.Batch{ID: uuid.New(), Samples: samples}

		if err := publisher.Publish(context.Background(), b); err != nil {
			log.Fatal(err)
		}

		log.Printf("published batch %s with %d samples", b.ID, len(b.Samples))
	}
}
