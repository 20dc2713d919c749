package point

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendLine(t *testing.T) {
	testcases := []struct {
		desc  string
		point *Point
		extra map[string]string
		out   string
	}{
		{
			desc: "tags sorted by key, extra tags merged",
			point: New("cpu",
				map[string]string{"host": "h1"},
				map[string]any{"value": 0.5},
				time.UnixMilli(1000),
			),
			extra: map[string]string{"env": "prod"},
			out:   "cpu,env=prod,host=h1 value=0.5 1000",
		},
		{
			desc: "point tag wins on collision",
			point: New("cpu",
				map[string]string{"host": "h1"},
				map[string]any{"value": 0.5},
				time.UnixMilli(1000),
			),
			extra: map[string]string{"host": "h2"},
			out:   "cpu,host=h1 value=0.5 1000",
		},
		{
			desc: "no tags, integer field, no timestamp",
			point: New("mem",
				nil,
				map[string]any{"used": int64(100)},
				time.Time{},
			),
			out: "mem used=100i",
		},
		{
			desc: "multiple fields sorted by key",
			point: New("req",
				map[string]string{"host": "localhost"},
				map[string]any{"max": 10.0, "count": int64(1), "ok": true},
				time.Unix(1667123357, 0),
			),
			out: "req,host=localhost count=1i,max=10,ok=true 1667123357000",
		},
		{
			desc: "escaped measurement, tags and string field",
			point: New("my measurement",
				map[string]string{"region": "us west", "a=b": "c,d"},
				map[string]any{"note": `say "hi"`},
				time.UnixMilli(5),
			),
			out: `my\ measurement,a\=b=c\,d,region=us\ west note="say \"hi\"" 5`,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			b, err := tc.point.AppendLine(nil, tc.extra, Millisecond)
			require.NoError(t, err)
			assert.Equal(t, tc.out, string(b))
		})
	}
}

func TestAppendLineErrors(t *testing.T) {
	t.Run("no measurement", func(t *testing.T) {
		p := New("", nil, map[string]any{"value": 1.0}, time.Time{})
		_, err := p.AppendLine(nil, nil, Millisecond)
		assert.Error(t, err)
	})
	t.Run("no fields", func(t *testing.T) {
		p := New("cpu", nil, nil, time.Time{})
		_, err := p.AppendLine(nil, nil, Millisecond)
		assert.Error(t, err)
	})
	t.Run("unsupported field type", func(t *testing.T) {
		p := New("cpu", nil, map[string]any{"value": struct{}{}}, time.Time{})
		_, err := p.AppendLine(nil, nil, Millisecond)
		assert.Error(t, err)
	})
}

func TestAppendLinePrecision(t *testing.T) {
	ts := time.Unix(12, 500_000_000)
	p := New("cpu", nil, map[string]any{"value": 1.0}, ts)

	testcases := []struct {
		prec Precision
		out  string
	}{
		{prec: Nanosecond, out: "cpu value=1 12500000000"},
		{prec: Microsecond, out: "cpu value=1 12500000"},
		{prec: Millisecond, out: "cpu value=1 12500"},
		{prec: Second, out: "cpu value=1 12"},
	}

	for _, tc := range testcases {
		t.Run(string(tc.prec), func(t *testing.T) {
			b, err := p.AppendLine(nil, nil, tc.prec)
			require.NoError(t, err)
			assert.Equal(t, tc.out, string(b))
		})
	}
}

func TestAddTags(t *testing.T) {
	t.Run("merges into nil tag set", func(t *testing.T) {
		p := New("cpu", nil, map[string]any{"value": 1.0}, time.Time{})
		p.AddTags(map[string]string{"env": "prod"})
		assert.Equal(t, map[string]string{"env": "prod"}, p.Tags)
	})
	t.Run("existing tags win", func(t *testing.T) {
		p := New("cpu", map[string]string{"host": "h1"}, map[string]any{"value": 1.0}, time.Time{})
		p.AddTags(map[string]string{"host": "h2", "env": "prod"})
		assert.Equal(t, map[string]string{"host": "h1", "env": "prod"}, p.Tags)
	})
}

func TestAppendLineLeavesPointUntouched(t *testing.T) {
	p := New("cpu", map[string]string{"host": "h1"}, map[string]any{"value": 1.0}, time.Time{})

	_, err := p.AppendLine(nil, map[string]string{"env": "prod"}, Millisecond)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"host": "h1"}, p.Tags)
}
