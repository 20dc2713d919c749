package server

import (
	"context"
	"time"

	"github.com/oneee-playground/influx-sink/internal/batch"
	"github.com/oneee-playground/influx-sink/internal/point"
	"go.uber.org/zap"
)

// Sink is the delivery side of the pipeline. Write is fire-and-forget:
// an error means the batch could not even be submitted.
type Sink interface {
	Write(ctx context.Context, points []*point.Point) error
}

type ServerOpts struct {
	Poller       batch.Poller
	Sink         Sink
	PollInterval time.Duration
}

type Server struct {
	log *zap.Logger

	poller       batch.Poller
	sink         Sink
	pollInterval time.Duration
}

func New(log *zap.Logger, opts ServerOpts) *Server {
	return &Server{
		log:          log,
		poller:       opts.Poller,
		sink:         opts.Sink,
		pollInterval: opts.PollInterval,
	}
}

func (s *Server) Run(ctx context.Context) error {
	s.log.Info("server running")

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		handle, received, err := s.poller.Poll(ctx)
		if err != nil {
			if err != batch.NoErrEmptyBatches {
				s.log.Error("failed to poll a batch", zap.Error(err))
			}
			continue
		}

		s.log.Info("polled batch",
			zap.String("batchID", received.ID.String()),
			zap.Int("samples", len(received.Samples)),
		)

		if err := s.sink.Write(ctx, received.Points()); err != nil {
			s.log.Error("failed to submit a batch", zap.Error(err))
			continue
		}

		if err := s.poller.MarkAsDone(ctx, handle); err != nil {
			s.log.Error("failed to mark a batch as done", zap.Error(err))
			continue
		}
	}
}
