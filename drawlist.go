package rectpipe

import "errors"

// Draw list recording errors.
var (
	// ErrNotRecording is returned when recording operations are called
	// before Begin or after Finish.
	ErrNotRecording = errors.New("rectpipe: draw list is not recording")

	// ErrAlreadyRecording is returned when Begin is called twice without
	// an intervening Finish.
	ErrAlreadyRecording = errors.New("rectpipe: draw list is already recording")
)

// CommandKind identifies one entry of a DrawList's command stream.
type CommandKind uint8

const (
	// CommandBegin opens a frame and carries the viewport constants.
	CommandBegin CommandKind = iota

	// CommandClear fills the target with a solid color.
	CommandClear

	// CommandRects draws a contiguous batch of rectangle records with a
	// single 4-vertex, Count-instance draw call starting at record First.
	CommandRects

	// CommandClose ends the frame.
	CommandClose
)

// Command is one decoded entry of the command stream. Only the fields
// relevant to Kind are set: Viewport for Begin, Color for Clear, and
// First/Count for Rects.
type Command struct {
	Kind     CommandKind
	Viewport Viewport
	Color    RGBA
	First    uint32
	Count    uint32
}

// DrawList accumulates rectangle records and the command stream that
// renders them. Consecutive Push calls batch into a single Rects command,
// preserving the draw contract: a non-indexed draw with vertex count 4 and
// instance count equal to the batch size.
//
// A DrawList is not safe for concurrent use; record and render from one
// goroutine, or hand ownership off between frames.
type DrawList struct {
	rects    []Rect
	commands []Command

	recording  bool
	viewport   Viewport
	batchStart uint32
	batchCount uint32
}

// NewDrawList creates an empty draw list.
func NewDrawList() *DrawList {
	return &DrawList{}
}

// Begin opens a frame against the given viewport. All subsequent records
// are transformed by these constants until Finish.
func (l *DrawList) Begin(vp Viewport) error {
	if l.recording {
		return ErrAlreadyRecording
	}
	l.recording = true
	l.viewport = vp
	l.commands = append(l.commands, Command{Kind: CommandBegin, Viewport: vp})
	return nil
}

// Clear records a solid fill of the whole target. Any pending rectangle
// batch is flushed first so ordering is preserved.
func (l *DrawList) Clear(c RGBA) error {
	if !l.recording {
		return ErrNotRecording
	}
	l.flushBatch()
	l.commands = append(l.commands, Command{Kind: CommandClear, Color: c})
	return nil
}

// Push appends one rectangle record to the current batch.
func (l *DrawList) Push(r Rect) error {
	if !l.recording {
		return ErrNotRecording
	}
	l.rects = append(l.rects, r)
	l.batchCount++
	return nil
}

// Finish flushes the pending batch and closes the frame. Calling Finish on
// a list that is not recording is a no-op.
func (l *DrawList) Finish() {
	if !l.recording {
		return
	}
	l.flushBatch()
	l.commands = append(l.commands, Command{Kind: CommandClose})
	l.recording = false
}

// Reset clears all records and commands for per-frame reuse, keeping the
// allocated capacity.
func (l *DrawList) Reset() {
	l.rects = l.rects[:0]
	l.commands = l.commands[:0]
	l.recording = false
	l.batchStart = 0
	l.batchCount = 0
}

// Rects returns the recorded rectangle records. The slice is owned by the
// list; renderers must not mutate it.
func (l *DrawList) Rects() []Rect {
	return l.rects
}

// Commands returns the recorded command stream.
func (l *DrawList) Commands() []Command {
	return l.commands
}

// Recording reports whether the list is between Begin and Finish.
func (l *DrawList) Recording() bool {
	return l.recording
}

// Viewport returns the constants of the most recent Begin.
func (l *DrawList) Viewport() Viewport {
	return l.viewport
}

// flushBatch emits a Rects command for the records pushed since the last
// flush. Empty batches emit nothing.
func (l *DrawList) flushBatch() {
	if l.batchCount == 0 {
		return
	}
	l.commands = append(l.commands, Command{
		Kind:  CommandRects,
		First: l.batchStart,
		Count: l.batchCount,
	})
	l.batchStart += l.batchCount
	l.batchCount = 0
}
