package influx

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/oneee-playground/influx-sink/internal/point"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	bufferAlloc    = 64 * 1024
	defaultTimeout = 10 * time.Second
)

// Client delivers batches of points to an InfluxDB 1.x server over the
// HTTP line-protocol endpoints. Writes are fire-and-forget: Write returns
// once the request is handed to the transport, and the eventual outcome
// only ever lands in the log.
//
// A Client is meant for one calling goroutine. The serialization buffers
// are pooled per request, so concurrent callers won't corrupt payloads,
// but the database-ready flag is unsynchronized.
type Client struct {
	cfg Config
	log *zap.Logger

	http *http.Client

	writeURL string
	queryURL string

	// Precomputed "Basic ..." header value.
	credentials string

	bufPool sync.Pool

	// Sticky. Set once a CREATE DATABASE call has been observed to
	// succeed, checked at the top of every write.
	dbReady bool

	inflight sync.WaitGroup
}

// NewClient wires the config and eagerly attempts to create the database.
// A failed attempt is logged and retried on the first write, it does not
// fail construction. Only a malformed connect string does.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(cfg.ConnectString)
	if err != nil {
		return nil, errors.Wrap(err, "parsing connect string")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		cfg:  cfg,
		log:  logger,
		http: &http.Client{Timeout: timeout},

		writeURL: buildWriteURL(base, cfg),
		queryURL: buildQueryURL(base, cfg.Database),

		credentials: "Basic " + base64.StdEncoding.EncodeToString(
			[]byte(cfg.Username+":"+cfg.Password),
		),
	}
	c.bufPool.New = func() any {
		b := make([]byte, 0, bufferAlloc)
		return &b
	}

	c.ensureDatabase(context.Background())

	return c, nil
}

func buildWriteURL(base *url.URL, cfg Config) string {
	u := *base
	u.Path += "/write"

	params := u.Query()
	params.Set("db", cfg.Database)
	params.Set("precision", string(point.Millisecond))
	if cfg.RetentionPolicy != "" {
		params.Set("rp", cfg.RetentionPolicy)
	}
	if cfg.Consistency != "" {
		params.Set("consistency", cfg.Consistency)
	}
	u.RawQuery = params.Encode()

	return u.String()
}

func buildQueryURL(base *url.URL, database string) string {
	u := *base
	u.Path += "/query"

	params := u.Query()
	params.Set("q", "CREATE DATABASE "+database)
	u.RawQuery = params.Encode()

	return u.String()
}

// ensureDatabase issues a blocking CREATE DATABASE call unless a previous
// one already succeeded. Creating an existing database is a no-op on the
// server, the flag only saves the round trip.
func (c *Client) ensureDatabase(ctx context.Context) bool {
	if c.dbReady {
		return true
	}

	c.log.Info("attempting to create database", zap.String("database", c.cfg.Database))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL, nil)
	if err != nil {
		c.log.Error("cannot build create database request", zap.Error(err))
		return false
	}
	req.Header.Set("Authorization", c.credentials)

	c.dbReady = c.execute(req)
	return c.dbReady
}

// Write serializes the batch and submits it to the server without waiting
// for the response. It returns an error only when the request cannot be
// built or encoded; a batch written before the database could be created
// is dropped silently, and remote failures are observed in the log only.
// The batch is not retained after the call returns.
func (c *Client) Write(ctx context.Context, points []*point.Point) error {
	if !c.ensureDatabase(ctx) {
		return nil
	}

	bp := c.bufPool.Get().(*[]byte)
	buf := (*bp)[:0]

	var err error
	for _, p := range points {
		buf, err = p.AppendLine(buf, c.cfg.Tags, point.Millisecond)
		if err != nil {
			c.bufPool.Put(bp)
			return errors.Wrap(err, "encoding batch")
		}
		buf = append(buf, '\n')
	}
	*bp = buf

	req, err := http.NewRequest(http.MethodPost, c.writeURL, bytes.NewReader(buf))
	if err != nil {
		c.bufPool.Put(bp)
		return errors.Wrap(err, "building write request")
	}
	req.Header.Set("Authorization", c.credentials)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer c.bufPool.Put(bp)
		c.execute(req)
	}()

	return nil
}

// execute runs the request and classifies the outcome. This is the only
// place responses are observed; every failure terminates in a log line.
func (c *Client) execute(req *http.Request) bool {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("cannot reach influxdb", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	// The response body is not needed for line-protocol writes, but it
	// has to be drained for connection reuse.
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		c.log.Warn("unexpected response status from influxdb",
			zap.Int("status", resp.StatusCode),
			zap.String("statusText", http.StatusText(resp.StatusCode)),
			zap.String("url", req.URL.String()),
		)
		return false
	}

	return true
}

// Close waits for in-flight writes to settle and releases the transport.
func (c *Client) Close() {
	c.inflight.Wait()
	c.http.CloseIdleConnections()
}
