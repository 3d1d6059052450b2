package colonize

import "github.com/matzehuels/spacecol/pkg/tree"

// Observer receives the outputs of a run. Calls are made synchronously from
// the goroutine running the simulation and must not block for long; use
// [Stream] to hand events to another goroutine.
type Observer interface {
	OnStatus(msg string)
	OnProgress(fraction float64)
	OnSnapshot(tick int, segments []tree.Segment)
	OnComplete(res Result)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnStatus(string)                {}
func (NopObserver) OnProgress(float64)             {}
func (NopObserver) OnSnapshot(int, []tree.Segment) {}
func (NopObserver) OnComplete(Result)              {}

// ObserverFuncs adapts optional callbacks to an Observer. Nil fields are
// skipped.
type ObserverFuncs struct {
	Status   func(msg string)
	Progress func(fraction float64)
	Snapshot func(tick int, segments []tree.Segment)
	Complete func(res Result)
}

func (o ObserverFuncs) OnStatus(msg string) {
	if o.Status != nil {
		o.Status(msg)
	}
}

func (o ObserverFuncs) OnProgress(f float64) {
	if o.Progress != nil {
		o.Progress(f)
	}
}

func (o ObserverFuncs) OnSnapshot(tick int, segs []tree.Segment) {
	if o.Snapshot != nil {
		o.Snapshot(tick, segs)
	}
}

func (o ObserverFuncs) OnComplete(res Result) {
	if o.Complete != nil {
		o.Complete(res)
	}
}

// Observers fans events out to several observers in order. Nil entries are
// dropped.
func Observers(obs ...Observer) Observer {
	var list multiObserver
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	if len(list) == 1 {
		return list[0]
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) OnStatus(msg string) {
	for _, o := range m {
		o.OnStatus(msg)
	}
}

func (m multiObserver) OnProgress(f float64) {
	for _, o := range m {
		o.OnProgress(f)
	}
}

func (m multiObserver) OnSnapshot(tick int, segs []tree.Segment) {
	for _, o := range m {
		o.OnSnapshot(tick, segs)
	}
}

func (m multiObserver) OnComplete(res Result) {
	for _, o := range m {
		o.OnComplete(res)
	}
}
