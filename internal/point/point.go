package point

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Precision is the timestamp resolution used when rendering a point.
type Precision string

const (
	Nanosecond  Precision = "ns"
	Microsecond Precision = "us"
	Millisecond Precision = "ms"
	Second      Precision = "s"
)

// Point is a single measurement observation.
type Point struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]any
	Time        time.Time
}

func New(measurement string, tags map[string]string, fields map[string]any, ts time.Time) *Point {
	return &Point{
		Measurement: measurement,
		Tags:        tags,
		Fields:      fields,
		Time:        ts,
	}
}

// AddTags merges extra tags into the point. Tags already present on the
// point win on key collision.
func (p *Point) AddTags(tags map[string]string) {
	if len(tags) == 0 {
		return
	}
	if p.Tags == nil {
		p.Tags = make(map[string]string, len(tags))
	}
	for k, v := range tags {
		if _, ok := p.Tags[k]; !ok {
			p.Tags[k] = v
		}
	}
}

var (
	measurementEscaper = strings.NewReplacer(",", `\,`, " ", `\ `)
	tagEscaper         = strings.NewReplacer(",", `\,`, "=", `\=`, " ", `\ `)
	stringFieldEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
)

// AppendLine appends the point as one line-protocol line (without the
// trailing newline) to dst. The extra tags are merged in for rendering
// only, the point itself is left untouched; point tags win on collision.
// Tags and fields are written in lexical key order so the output is
// deterministic.
func (p *Point) AppendLine(dst []byte, extra map[string]string, prec Precision) ([]byte, error) {
	if p.Measurement == "" {
		return dst, errors.New("point has no measurement")
	}
	if len(p.Fields) == 0 {
		return dst, errors.Errorf("point %q has no fields", p.Measurement)
	}

	dst = append(dst, measurementEscaper.Replace(p.Measurement)...)

	for _, k := range mergedTagKeys(p.Tags, extra) {
		v, ok := p.Tags[k]
		if !ok {
			v = extra[k]
		}
		dst = append(dst, ',')
		dst = append(dst, tagEscaper.Replace(k)...)
		dst = append(dst, '=')
		dst = append(dst, tagEscaper.Replace(v)...)
	}

	dst = append(dst, ' ')

	fieldKeys := make([]string, 0, len(p.Fields))
	for k := range p.Fields {
		fieldKeys = append(fieldKeys, k)
	}
	sort.Strings(fieldKeys)

	for i, k := range fieldKeys {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, tagEscaper.Replace(k)...)
		dst = append(dst, '=')

		var err error
		dst, err = appendFieldValue(dst, p.Fields[k])
		if err != nil {
			return dst, errors.Wrapf(err, "encoding field %q of point %q", k, p.Measurement)
		}
	}

	if !p.Time.IsZero() {
		dst = append(dst, ' ')
		dst = strconv.AppendInt(dst, truncate(p.Time, prec), 10)
	}

	return dst, nil
}

// Line renders the point standalone, mostly for logging and tests.
func (p *Point) Line(prec Precision) (string, error) {
	b, err := p.AppendLine(nil, nil, prec)
	return string(b), err
}

func mergedTagKeys(tags, extra map[string]string) []string {
	keys := make([]string, 0, len(tags)+len(extra))
	for k := range tags {
		keys = append(keys, k)
	}
	for k := range extra {
		if _, ok := tags[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func appendFieldValue(dst []byte, v any) ([]byte, error) {
	switch v := v.(type) {
	case float64:
		return strconv.AppendFloat(dst, v, 'g', -1, 64), nil
	case float32:
		return strconv.AppendFloat(dst, float64(v), 'g', -1, 32), nil
	case int64:
		dst = strconv.AppendInt(dst, v, 10)
		return append(dst, 'i'), nil
	case int:
		dst = strconv.AppendInt(dst, int64(v), 10)
		return append(dst, 'i'), nil
	case uint64:
		dst = strconv.AppendUint(dst, v, 10)
		return append(dst, 'i'), nil
	case bool:
		return strconv.AppendBool(dst, v), nil
	case string:
		dst = append(dst, '"')
		dst = append(dst, stringFieldEscaper.Replace(v)...)
		return append(dst, '"'), nil
	default:
		return dst, errors.Errorf("unsupported field type %T", v)
	}
}

func truncate(ts time.Time, prec Precision) int64 {
	switch prec {
	case Nanosecond:
		return ts.UnixNano()
	case Microsecond:
		return ts.UnixMicro()
	case Millisecond:
		return ts.UnixMilli()
	default:
		return ts.Unix()
	}
}
