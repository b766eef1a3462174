// Package backend provides the terminal write-command layer for the
// renderer. Render strategies queue Commands into a BatchWriter and flush
// the whole batch once per frame through a Sink. Tests use CaptureSink to
// assert on emitted commands as data instead of raw bytes.
package backend

// CommandKind identifies a terminal write operation.
type CommandKind uint8

const (
	// CmdMoveTo positions the cursor at (X, Y), zero-based.
	CmdMoveTo CommandKind = iota
	// CmdClearLine clears the row at (X, Y). Callers precede it with a
	// CmdMoveTo so the whole current row is wiped.
	CmdClearLine
	// CmdPrint writes Text at the current position.
	CmdPrint
	// CmdRaw writes a raw control sequence in Text verbatim.
	CmdRaw
)

// Command is one queued terminal operation.
type Command struct {
	Kind CommandKind
	X, Y int
	Text string
}

// Sink receives an ordered command batch. Implementations must treat the
// batch as append-only and perform a single flush.
type Sink interface {
	Flush(cmds []Command) error
}

// BatchWriter accumulates commands for one frame, coalescing consecutive
// plain single-width prints into a single Print command. Movement, clears,
// styled prints, and raw sequences are hard batch boundaries.
type BatchWriter struct {
	cmds         []Command
	pendingPlain []byte

	printCommands uint64
	cellsPrinted  uint64
}

// NewBatchWriter creates an empty per-frame writer.
func NewBatchWriter() *BatchWriter {
	return &BatchWriter{}
}

func (w *BatchWriter) flushPending() {
	if len(w.pendingPlain) == 0 {
		return
	}
	w.cmds = append(w.cmds, Command{Kind: CmdPrint, Text: string(w.pendingPlain)})
	w.pendingPlain = w.pendingPlain[:0]
	w.printCommands++
	// cells already counted during accumulation
}

// MoveTo queues a cursor move to the zero-based (x, y) cell.
func (w *BatchWriter) MoveTo(x, y int) {
	w.flushPending()
	w.cmds = append(w.cmds, Command{Kind: CmdMoveTo, X: x, Y: y})
}

// ClearLine queues a clear of the row at (x, y).
func (w *BatchWriter) ClearLine(x, y int) {
	w.flushPending()
	w.cmds = append(w.cmds, Command{Kind: CmdClearLine, X: x, Y: y})
}

// Print queues text output. Plain single-byte cells are batched; anything
// containing an escape byte or spanning multiple bytes flushes the batch
// and is emitted as its own command.
func (w *BatchWriter) Print(s string) {
	if s == "" {
		return
	}
	if len(s) == 1 && s[0] != 0x1b {
		w.pendingPlain = append(w.pendingPlain, s[0])
		w.cellsPrinted++
		return
	}
	w.flushPending()
	w.cmds = append(w.cmds, Command{Kind: CmdPrint, Text: s})
	w.printCommands++
	w.cellsPrinted++ // one logical cell per styled/multi-byte command
}

// Raw queues a control sequence verbatim (scroll region setup and the
// like). Raw output is never batched and not counted as cells.
func (w *BatchWriter) Raw(seq string) {
	w.flushPending()
	w.cmds = append(w.cmds, Command{Kind: CmdRaw, Text: seq})
}

// Flush drains the batch into the sink and returns the print-command and
// logical-cell counts for metrics. The writer is reusable afterwards.
func (w *BatchWriter) Flush(sink Sink) (printCommands, cellsPrinted uint64, err error) {
	w.flushPending()
	err = sink.Flush(w.cmds)
	printCommands, cellsPrinted = w.printCommands, w.cellsPrinted
	w.cmds = w.cmds[:0]
	w.printCommands, w.cellsPrinted = 0, 0
	return printCommands, cellsPrinted, err
}

// CaptureSink records flushed commands for tests and diagnostics.
type CaptureSink struct {
	Commands []Command
	// Flushes counts Flush calls.
	Flushes int
	// Err, when set, is returned by the next Flush.
	Err error
}

// Flush appends the batch to Commands.
func (c *CaptureSink) Flush(cmds []Command) error {
	if c.Err != nil {
		err := c.Err
		c.Err = nil
		return err
	}
	c.Commands = append(c.Commands, cmds...)
	c.Flushes++
	return nil
}

// Reset drops recorded commands.
func (c *CaptureSink) Reset() {
	c.Commands = nil
	c.Flushes = 0
}

// Prints returns the concatenated text of all Print commands, in order.
func (c *CaptureSink) Prints() string {
	var s string
	for _, cmd := range c.Commands {
		if cmd.Kind == CmdPrint {
			s += cmd.Text
		}
	}
	return s
}

// Raws returns the raw sequences in emission order.
func (c *CaptureSink) Raws() []string {
	var out []string
	for _, cmd := range c.Commands {
		if cmd.Kind == CmdRaw {
			out = append(out, cmd.Text)
		}
	}
	return out
}
