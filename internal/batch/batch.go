package batch

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/oneee-playground/influx-sink/internal/point"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// Sample is the wire form of one measurement. Timestamp is epoch
// milliseconds; zero means "let the server assign one".
type Sample struct {
	Measurement string            `json:"measurement"`
	Tags        map[string]string `json:"tags,omitempty"`
	Fields      map[string]any    `json:"fields"`
	Timestamp   int64             `json:"timestamp,omitempty"`
}

type Batch struct {
	ID      uuid.UUID `json:"id"`
	Samples []Sample  `json:"samples"`
}

// Points converts the batch into measurement points, in order.
func (b Batch) Points() []*point.Point {
	points := make([]*point.Point, 0, len(b.Samples))
	for _, s := range b.Samples {
		var ts time.Time
		if s.Timestamp != 0 {
			ts = time.UnixMilli(s.Timestamp)
		}
		points = append(points, point.New(s.Measurement, s.Tags, s.Fields, ts))
	}
	return points
}

// Schema describes a batch message body. Poll validates against it before
// decoding so a malformed producer can't take the pipeline down.
const Schema = `{
  "type": "object",
  "required": ["id", "samples"],
  "properties": {
    "id": {"type": "string", "format": "uuid"},
    "samples": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["measurement", "fields"],
        "properties": {
          "measurement": {"type": "string", "minLength": 1},
          "tags": {"type": "object", "additionalProperties": {"type": "string"}},
          "fields": {"type": "object", "minProperties": 1},
          "timestamp": {"type": "integer"}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(Schema)

func Decode(payload []byte) (Batch, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return Batch{}, errors.Wrap(err, "validating batch")
	}
	if !result.Valid() {
		return Batch{}, errors.Errorf("batch does not match schema: %s", result.Errors()[0])
	}

	var decoded Batch
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Batch{}, errors.Wrap(err, "unmarshalling batch")
	}

	return decoded, nil
}
