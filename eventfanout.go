package workbench

import (
	"pkt.systems/workbench/core"
	"pkt.systems/workbench/schema"
)

type eventFanout struct {
	sinks []core.EventSink
}

func (f eventFanout) OnSurfaceEvent(event schema.SurfaceEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnSurfaceEvent(event)
	}
}
