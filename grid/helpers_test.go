package grid

import (
	"gridloop/looptape"
	"gridloop/musictime"
)

func mkEvent(id int, v musictime.Value, ticks int32) looptape.Event {
	return looptape.Event{ID: id, Value: v, Pos: musictime.FromTicks(ticks)}
}

func newLoopOfLength(ticks int32) looptape.Collection {
	return looptape.NewCollection(musictime.FromTicks(ticks))
}

func mkValueTransform(velocity uint8) looptape.Transform {
	if velocity == 0 {
		return looptape.ValueTransform(musictime.Off())
	}
	return looptape.ValueTransform(musictime.On(velocity))
}
