package pipeline

import (
	"context"

	"github.com/matzehuels/spacecol/pkg/colonize"
)

// Job is a pipeline run executing in the background.
type Job struct {
	stream *colonize.Stream
	done   chan struct{}
	res    *Result
	err    error
}

// Start runs Execute on a new goroutine. Simulation events are delivered in
// order on the job's event channel, which closes after the terminal event:
// EventComplete once the tree has finished growing, or EventFailed when the
// run fails before that. Rendering and archiving continue after
// EventComplete; Wait returns their outcome.
//
// Events are buffered, so a consumer that never reads does not stall the
// run. Cancelling ctx stops both the run and the event channel.
func (r *Runner) Start(ctx context.Context, opts Options) *Job {
	j := &Job{
		stream: colonize.NewStream(ctx),
		done:   make(chan struct{}),
	}
	opts.Observer = colonize.Observers(opts.Observer, j.stream)
	go func() {
		defer close(j.done)
		j.res, j.err = r.Execute(ctx, opts)
		switch {
		case j.err != nil:
			j.stream.Fail(j.err)
		case j.res.CacheHit:
			// No simulation ran, so nothing has completed the stream yet.
			j.stream.OnProgress(1)
			j.stream.OnComplete(colonize.Result{
				Tree:   j.res.Tree,
				Edges:  j.res.Tree.Edges(),
				Ticks:  j.res.Stats.Ticks,
				Reason: colonize.Reason(j.res.Stats.Reason),
				Stats:  j.res.Stats.Growth,
			})
		}
	}()
	return j
}

// Events returns the ordered event channel of the run.
func (j *Job) Events() <-chan colonize.Event { return j.stream.Events() }

// Done is closed when the run has finished.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the run has finished and returns its result.
func (j *Job) Wait() (*Result, error) {
	<-j.done
	return j.res, j.err
}
