// Package sink contains the delivery targets of the print service: the
// places a validated job ends up once it leaves the queue.
package sink

import (
	"context"

	"github.com/adcondev/rawbt-daemon/internal/printjob"
	"github.com/adcondev/rawbt-daemon/internal/protocol"
)

// Delivery is one copy of a job handed to a sink.
type Delivery struct {
	JobID   string
	Printer string
	Copy    int
	Job     *printjob.Job
}

// Sink receives validated jobs. report is called with the completed
// fraction of the delivery, in (0, 1].
type Sink interface {
	Deliver(ctx context.Context, d Delivery, report func(fraction float64)) error
	Summary() protocol.SinkSummary
}
