// Package grid implements the loop-grid performance engine: the event-loop
// worker that turns pad input, mode buttons, and scheduler ticks into
// recorded/transformed playback and outbound lights. Grounded on the
// original engine's loop_grid_launchpad.rs, re-expressed against this
// module's looptape and schedule packages.
package grid

import (
	"sort"

	"gridloop/looptape"
	"gridloop/musictime"
)

// Engine is the sole mutator of grid-engine state (§5). It is not safe for
// concurrent use — callers drive it from a single goroutine, typically a
// loop reading from one inbound channel merging pad input, mode buttons,
// and scheduler ranges. Internal fan-out the original engine modeled as
// channel messages back to itself (RefreshOverride, RefreshGridButton, ...)
// is implemented here as direct method calls instead: a single consumer
// draining its own emitted messages is observationally identical to direct
// calls, and avoids sizing an internal channel buffer.
type Engine struct {
	loopState *looptape.State
	recorder  *looptape.Recorder

	mapping Mapping
	chunks  []Triggerable
	out     Sender

	repeating      bool
	repeatOffBeat  bool
	suppressing    bool
	holding        bool
	selecting      bool
	selectingScale bool

	selection         map[int]bool
	selectionOverride looptape.Transform
	overrideValues    map[int]looptape.Transform
	inputValues       map[int]musictime.Value
	currentlyHeld     []int
	heldRate          map[int]bool

	lastPos         musictime.Time
	lastPlaybackPos musictime.Time

	outValues map[int]musictime.Value
	gridOut   map[int]Color
	active    map[int]bool
	recording map[int]bool

	rate      musictime.Time
	rateIndex int
	loopFrom   musictime.Time
	loopOffset musictime.Time

	// loopLength is the persistent "current loop length" (§4.F): distinct
	// from loopState's committed collection length. A select+Undo/Redo
	// resize only stages a new value here, taking effect on the next
	// short Loop-button press; it never touches the undo/redo stack.
	loopLength musictime.Time
}

// NewEngine creates an Engine seeded with defaultLength, bound to mapping
// (pad id -> chunk index) and chunks (indexed the same way).
func NewEngine(defaultLength musictime.Time, mapping Mapping, chunks []Triggerable, out Sender) *Engine {
	return &Engine{
		loopState: looptape.NewState(defaultLength),
		recorder:  looptape.NewRecorder(),
		mapping:   mapping,
		chunks:    chunks,
		out:       out,

		selection:      make(map[int]bool),
		overrideValues: make(map[int]looptape.Transform),
		inputValues:    make(map[int]musictime.Value),
		heldRate:       make(map[int]bool),

		outValues: make(map[int]musictime.Value),
		gridOut:   make(map[int]Color),
		active:    make(map[int]bool),
		recording: make(map[int]bool),

		rate:      RateTable[3],
		rateIndex: 3,

		loopLength: defaultLength,
	}
}

// idForCoords converts row/col to a pad id (§3).
func idForCoords(row, col int) int { return row*8 + col }

// coordsForID converts a pad id back to row/col.
func coordsForID(id int) (row, col int) { return id / 8, id % 8 }

// --- 4.F.1 Input handling ---

// HandlePad processes a pad press/release at the given grid id.
func (e *Engine) HandlePad(id int, value musictime.Value) {
	held := e.isHeld(id)
	if value.IsOn() && !held {
		e.currentlyHeld = append(e.currentlyHeld, id)
	} else if !value.IsOn() && held {
		e.removeHeld(id)
	}

	if e.selecting && value.IsOn() {
		if e.selection[id] {
			delete(e.selection, id)
		} else {
			e.selection[id] = true
		}
		if len(e.currentlyHeld) == 2 {
			e.selectRectangle(e.currentlyHeld[0], e.currentlyHeld[1])
		}
		e.refreshGridButton(id)
	} else {
		e.inputValues[id] = value
		e.refreshInput(id)
	}
}

func (e *Engine) isHeld(id int) bool {
	for _, h := range e.currentlyHeld {
		if h == id {
			return true
		}
	}
	return false
}

func (e *Engine) removeHeld(id int) {
	for i, h := range e.currentlyHeld {
		if h == id {
			e.currentlyHeld = append(e.currentlyHeld[:i], e.currentlyHeld[i+1:]...)
			return
		}
	}
}

func (e *Engine) selectRectangle(a, b int) {
	fromRow, fromCol := coordsForID(a)
	toRow, toCol := coordsForID(b)
	if toRow < fromRow {
		fromRow, toRow = toRow, fromRow
	}
	if toCol < fromCol {
		fromCol, toCol = toCol, fromCol
	}
	for row := fromRow; row <= toRow; row++ {
		for col := fromCol; col <= toCol; col++ {
			id := idForCoords(row, col)
			e.selection[id] = true
			e.refreshGridButton(id)
		}
	}
}

// refreshInput recomputes a pad's override transform from its raw input
// value, and propagates the change if it altered the transform (§4.F.1).
func (e *Engine) refreshInput(id int) {
	value, ok := e.inputValues[id]
	if !ok {
		value = musictime.Off()
	}

	var transform looptape.Transform
	if value.IsOn() {
		if e.repeating {
			offset := musictime.Zero()
			if e.repeatOffBeat {
				offset = e.rate.Half()
			}
			transform = looptape.RepeatTransform(e.rate, offset, value)
		} else {
			transform = looptape.ValueTransform(value)
		}
	} else {
		transform = looptape.None()
	}

	prev, had := e.overrideValues[id]
	changed := !had && transform.Kind != looptape.TransformNone || had && !prev.Equal(transform)
	e.overrideValues[id] = transform

	if changed {
		e.refreshOverride(id)
	}
}

// refreshOverride re-derives the immediately-audible value for a pad from
// its effective transform and publishes it as an Event at the current
// position. Repeat/Hold transforms contribute no immediate value here; they
// are resolved purely on schedule ticks (§4.F.3).
func (e *Engine) refreshOverride(id int) {
	transform := e.effectiveTransform(id)

	switch transform.Kind {
	case looptape.TransformValue:
		e.publishEvent(looptape.Event{ID: id, Value: transform.Value, Pos: e.lastPos})
	case looptape.TransformNone:
		e.publishEvent(looptape.Event{ID: id, Value: musictime.Off(), Pos: e.lastPos})
	}
}

// --- 4.F.2 Effective-transform resolution ---

// effectiveTransform follows §4.F.2's priority chain literally: it compares
// each candidate against the None variant, not against "is this transform
// audible" — a selection-override of Value(Off) must still win over a
// recorded loop transform, even though Value(Off) itself is not "active".
func (e *Engine) effectiveTransform(id int) looptape.Transform {
	if t, ok := e.overrideValues[id]; ok && t.Kind != looptape.TransformNone {
		return t
	}
	if e.selectionOverride.Kind != looptape.TransformNone && (len(e.selection) == 0 || e.selection[id]) {
		return e.selectionOverride
	}
	if t, ok := e.loopState.Get().Transforms[id]; ok {
		return t
	}
	return looptape.None()
}

// refreshSelectionOverride recomputes the transient selection transform
// from the held mode buttons, then re-resolves every pad's override.
func (e *Engine) refreshSelectionOverride() {
	switch {
	case e.suppressing:
		e.selectionOverride = looptape.ValueTransform(musictime.Off())
	case e.holding:
		e.selectionOverride = looptape.HoldTransform(e.lastPlaybackPos, e.rate)
	default:
		e.selectionOverride = looptape.None()
	}
	for id := 0; id < 64; id++ {
		e.refreshOverride(id)
	}
}

// --- 4.F.3 Tick scheduling ---

// HandleSchedule processes one sub-tick range [from, to). length is to-from;
// a zero length is ignored (§4.F.3 step 1 precondition).
func (e *Engine) HandleSchedule(from, to musictime.Time) {
	length := to.Sub(from)
	if length.IsZero() {
		return
	}
	e.lastPos = to

	current := e.loopState.Get()
	if current.Length.IsZero() {
		return
	}

	playbackPos := e.loopOffset.Add(from.Sub(e.loopOffset).Mod(current.Length))
	e.lastPlaybackPos = playbackPos

	if playbackPos.Equal(e.loopOffset) {
		e.handleInitialLoop()
	}

	var toTrigger []looptape.Event
	transformedIDs := make(map[int]bool)

	for id, transform := range e.allTransforms(current) {
		if transform.Kind == looptape.TransformNone {
			continue
		}
		transformedIDs[id] = true

		switch transform.Kind {
		case looptape.TransformRepeat:
			r := from.Add(transform.Offset).Mod(transform.Rate)
			half := transform.Rate.Half()
			if r.IsZero() {
				toTrigger = append(toTrigger, looptape.Event{ID: id, Value: transform.Value, Pos: from})
			} else if r.Equal(half) {
				toTrigger = append(toTrigger, looptape.Event{ID: id, Value: musictime.Off(), Pos: from})
			}
		case looptape.TransformHold:
			holdOffset := transform.Pos.Mod(transform.Rate)
			playback := transform.Pos.Add(from.Sub(holdOffset).Mod(transform.Rate))
			if playback.Equal(transform.Pos) {
				if prev, ok := e.recorder.At(id, playback); ok && !prev.Value.IsOn() {
					toTrigger = append(toTrigger, looptape.Event{ID: id, Value: prev.Value, Pos: from})
				}
			}
			for _, rec := range e.recorder.Range(id, playback, playback.Add(length)) {
				toTrigger = append(toTrigger, rec.WithPos(from.Add(rec.Pos.Sub(playback))))
			}
		}
	}

	for id := range e.mapping {
		if transformedIDs[id] {
			continue
		}
		for _, rec := range e.recorder.Range(id, playbackPos, playbackPos.Add(length)) {
			toTrigger = append(toTrigger, rec.WithPos(from.Add(rec.Pos.Sub(playbackPos))))
		}
	}

	looptape.SortEvents(toTrigger)
	for _, ev := range toTrigger {
		e.publishEvent(ev)
	}

	e.refreshSideButtons()
	e.refreshRecording()
}

// allTransforms is the effective transform for every id the engine knows
// about: bound pads plus anything with a live override or loop transform.
func (e *Engine) allTransforms(current looptape.Collection) map[int]looptape.Transform {
	ids := make(map[int]bool)
	for id := range e.mapping {
		ids[id] = true
	}
	for id := range e.overrideValues {
		ids[id] = true
	}
	for id := range current.Transforms {
		ids[id] = true
	}
	out := make(map[int]looptape.Transform, len(ids))
	for id := range ids {
		out[id] = e.effectiveTransform(id)
	}
	return out
}

// handleInitialLoop re-seeds overrides at the loop restart point (§4.F.3
// step 2): only pads with a tracked override need re-announcing, since
// untouched pads are governed entirely by recorder fill in this same tick.
func (e *Engine) handleInitialLoop() {
	for id := range e.overrideValues {
		e.refreshOverride(id)
	}
}

// --- 4.F.4 Event publication ---

func (e *Engine) publishEvent(ev looptape.Event) {
	prev, ok := e.outValues[ev.ID]
	if ok && prev.Equal(ev.Value) {
		e.recorder.Add(ev)
		return
	}
	e.outValues[ev.ID] = ev.Value
	e.refreshGridButton(ev.ID)

	if chunkIdx, bound := e.mapping[ev.ID]; bound && chunkIdx < len(e.chunks) {
		e.chunks[chunkIdx].Trigger(ev.ID, ev.Value)
	}

	e.recorder.Add(ev)
}

// --- 4.F.5 Loop commit, undo, and flatten ---

// LoopButton handles a loop-mode press/release edge.
func (e *Engine) LoopButton(pressed bool) {
	if pressed {
		e.loopFrom = e.lastPos
		return
	}
	current := e.loopState.Get()
	length := e.lastPos.Sub(e.loopFrom)
	if length.Ticks > 12 {
		newLength := musictime.QuantizeLength(length)
		e.loopOffset = e.lastPos.Sub(newLength)
		next := looptape.NewCollection(newLength)
		next.Transforms = current.Transforms
		e.loopState.Set(next)
		e.loopLength = newLength
	} else {
		e.loopOffset = e.loopFrom.Sub(e.loopLength)
		next := current.Clone()
		next.Length = e.loopLength
		e.loopState.Set(next)
	}
}

// FlattenButton handles a flatten-mode press (release is a no-op).
func (e *Engine) FlattenButton(pressed bool) {
	if !pressed {
		return
	}
	current := e.loopState.Get()
	next := current.Clone()

	switch {
	case len(e.selection) > 0:
		for id := range e.selection {
			next.Transforms[id] = looptape.ValueTransform(musictime.Off())
		}
	case e.anyNonNoneOverride():
		if e.selectionOverride.IsActive() {
			for id := range e.mapping {
				next.Transforms[id] = e.selectionOverride
			}
		}
		for id, t := range e.overrideValues {
			if t.Kind != looptape.TransformNone {
				next.Transforms[id] = t
			}
		}
	default:
		for id := range e.mapping {
			next.Transforms[id] = looptape.ValueTransform(musictime.Off())
		}
	}

	e.loopState.Set(next)
	e.selection = make(map[int]bool)
}

// anyNonNoneOverride reports whether any override or the selection-override
// is set to something other than None — including an inactive Value(Off),
// which still counts as "set" for flatten's three-way branch (§4.F.5).
func (e *Engine) anyNonNoneOverride() bool {
	if e.selectionOverride.Kind != looptape.TransformNone {
		return true
	}
	for _, t := range e.overrideValues {
		if t.Kind != looptape.TransformNone {
			return true
		}
	}
	return false
}

const (
	minLoopLength = 6   // quarter beat
	maxLoopLength = 768 // 32 beats
)

// UndoButton handles undo. With select held it halves the staged loop
// length instead. With scale held (alone or together with select) the press
// does nothing: the engine holds no scale or scheduler to nudge.
func (e *Engine) UndoButton() {
	if e.selecting && e.selectingScale {
		return
	}
	if e.selecting {
		e.resizeLoop(false)
		return
	}
	if e.selectingScale {
		return
	}
	e.loopState.Undo()
}

// RedoButton is UndoButton's mirror.
func (e *Engine) RedoButton() {
	if e.selecting && e.selectingScale {
		return
	}
	if e.selecting {
		e.resizeLoop(true)
		return
	}
	if e.selectingScale {
		return
	}
	e.loopState.Redo()
}

// resizeLoop stages a new persistent loop length (§4.F) without touching
// loopState: the resize only takes effect on the next short Loop-button
// press, and must not itself become an undo/redo-stack entry.
func (e *Engine) resizeLoop(grow bool) {
	length := e.loopLength.Ticks
	if grow {
		length *= 2
	} else {
		length /= 2
	}
	if length < minLoopLength {
		length = minLoopLength
	}
	if length > maxLoopLength {
		length = maxLoopLength
	}
	e.loopLength = musictime.FromTicks(length)
}

// --- 4.F.6 Lights ---

func (e *Engine) refreshGridButton(id int) {
	outOn := false
	if v, ok := e.outValues[id]; ok {
		outOn = v.IsOn()
	}
	color := cellColor(outOn, e.selection[id], e.active[id], e.recording[id])
	if e.gridOut[id] == color {
		return
	}
	e.gridOut[id] = color
	if e.out == nil {
		return
	}
	row, col := coordsForID(id)
	note := byte((row+1)*10 + col + 1) // Programmer-mode note layout, the same numbering midi.GridController decodes pads from
	e.out.Send([]byte{0x90, note, byte(color)})
}

// sideButtonNotes is the fixed note number of each of the eight side
// buttons (rate-select column, §6), the same numbers midi.GridController
// decodes rate presses from.
var sideButtonNotes = [8]byte{19, 29, 39, 49, 59, 69, 79, 89}

func (e *Engine) refreshSideButtons() {
	if e.out == nil {
		return
	}
	rateColor := ColorYellow
	if e.repeatOffBeat {
		rateColor = ColorRed
	}
	for i, note := range sideButtonNotes {
		color := ColorOff
		if i == e.rateIndex {
			color = rateColor
		}
		e.out.Send([]byte{0x90, note, byte(color)})
	}
}

func (e *Engine) refreshRecording() {
	current := e.loopState.Get()
	ids := make(map[int]bool)
	for id := range e.mapping {
		if t, ok := current.Transforms[id]; !ok || !t.Equal(looptape.ValueTransform(musictime.Off())) {
			if len(e.recorder.Range(id, e.loopOffset, e.loopOffset.Add(current.Length))) > 0 {
				ids[id] = true
			}
		}
	}
	for id := range ids {
		if !e.recording[id] {
			e.recording[id] = true
			e.refreshGridButton(id)
		}
	}
	for id := range e.recording {
		if !ids[id] {
			delete(e.recording, id)
			e.refreshGridButton(id)
		}
	}
}

// RefreshUndoRedoLights re-sends the undo/redo CC lights for the current
// modifier-button state.
func (e *Engine) RefreshUndoRedoLights() {
	if e.out == nil {
		return
	}
	color := undoRedoColor(e.selecting, e.selectingScale)
	e.out.Send([]byte{0xB0, 106, byte(color)})
	e.out.Send([]byte{0xB0, 107, byte(color)})
}

// --- Mode buttons (loop/flatten handled above; the rest are flags) ---

// HandleMode dispatches a mode-button press/release edge.
func (e *Engine) HandleMode(button ModeButton, pressed bool) {
	switch button {
	case ModeLoop:
		e.LoopButton(pressed)
	case ModeFlatten:
		e.FlattenButton(pressed)
	case ModeUndo:
		if pressed {
			e.UndoButton()
		}
	case ModeRedo:
		if pressed {
			e.RedoButton()
		}
	case ModeHold:
		e.holding = pressed
		e.refreshSelectionOverride()
	case ModeSuppress:
		e.suppressing = pressed
		e.refreshSelectionOverride()
	case ModeScale:
		e.selectingScale = pressed
		e.RefreshUndoRedoLights()
	case ModeSelect:
		e.selecting = pressed
		if !pressed {
			e.currentlyHeld = nil
		}
		e.RefreshUndoRedoLights()
	}
}

// HandleRate processes a rate side-button press, selecting one of the eight
// fixed repeat rates and turning repeating on. Holding two or more rate
// buttons at once switches repeat to the off-beat.
func (e *Engine) HandleRate(index int, pressed bool) {
	if index < 0 || index >= len(RateTable) {
		return
	}
	e.heldRate[index] = pressed
	held := e.heldRateButtons()
	if pressed {
		e.rateIndex = index
		e.rate = RateTable[index]
		e.repeating = true
	} else if len(held) == 0 {
		e.repeating = false
	}
	e.repeatOffBeat = len(held) > 1
	for id := range e.inputValues {
		e.refreshInput(id)
	}
}

func (e *Engine) heldRateButtons() []int {
	out := make([]int, 0, len(e.heldRate))
	for idx, held := range e.heldRate {
		if held {
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

// Selection reports the current selection set (read-only snapshot), for UI.
func (e *Engine) Selection() map[int]bool {
	out := make(map[int]bool, len(e.selection))
	for id := range e.selection {
		out[id] = true
	}
	return out
}

// GridColor reports the last-resolved light color for a pad, for UI polling.
func (e *Engine) GridColor(id int) Color {
	return e.gridOut[id]
}

// ModeState reports the current held-mode flags and rate selection, for a
// status line; it mirrors the same fields refreshSideButtons and
// RefreshUndoRedoLights already derive lights from.
func (e *Engine) ModeState() (holding, suppressing, selecting, selectingScale, repeating bool, rateIndex int) {
	return e.holding, e.suppressing, e.selecting, e.selectingScale, e.repeating, e.rateIndex
}

// LoopLength reports the current loop collection's length, for a status
// line showing the loop size in bars/beats.
func (e *Engine) LoopLength() musictime.Time {
	return e.loopState.Get().Length
}
