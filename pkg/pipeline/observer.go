package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spacecol/pkg/colonize"
	"github.com/matzehuels/spacecol/pkg/observability"
	"github.com/matzehuels/spacecol/pkg/render"
)

// logObserver forwards simulation status messages to the run logger.
type logObserver struct {
	colonize.NopObserver
	logger *log.Logger
}

func (o logObserver) OnStatus(msg string) { o.logger.Debug(msg) }

// hookObserver reports per-tick progress to the growth hooks.
type hookObserver struct {
	colonize.NopObserver
	ctx    context.Context
	source string
	hooks  observability.GrowthHooks
}

func (o hookObserver) OnProgress(f float64) { o.hooks.OnTick(o.ctx, o.source, f) }

func framesObserver(f *render.FrameWriter) colonize.Observer {
	if f == nil {
		return nil
	}
	return f
}
