package vm

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/netfsck/compiler"
)

// ---------------------------------------------------------------------------
// Environment: the netfsck execution engine
// ---------------------------------------------------------------------------

// DefaultTapeSize is the tape length used when none is configured.
const DefaultTapeSize = 30000

// DefaultTimeout applies to connections created before any SetTimeout.
const DefaultTimeout = 1000 * time.Millisecond

// Sentinel is written into the current cell when a networking opcode fails.
const Sentinel int32 = -1

// Environment owns all state for one program run: the tape and pointer,
// the connection table, and the transient networking configuration.
// An Environment is not safe for concurrent use.
type Environment struct {
	id string

	// Memory
	tape []int32
	ptr  int

	// Networking
	connections []*connection
	handle      int           // selected table index, -1 when unset
	port        int           // -1 when unset
	timeout     time.Duration // 0 disables timeouts
	writeBuffer []byte

	// Collaborators
	out    io.Writer
	in     CharReader
	dialer Dialer
	log    commonlog.Logger
}

// Option configures an Environment.
type Option func(*Environment)

// WithOutput sets where Print writes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Environment) { e.out = w }
}

// WithInput sets where Query reads from. Defaults to a TerminalInput on
// os.Stdin. A nil reader makes every Query fault.
func WithInput(r CharReader) Option {
	return func(e *Environment) { e.in = r }
}

// WithTimeout sets the initial connection timeout. Zero or a negative
// duration disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Environment) {
		if d < 0 {
			d = 0
		}
		e.timeout = d
	}
}

// WithDialer replaces the dialer used by Connect.
func WithDialer(d Dialer) Option {
	return func(e *Environment) { e.dialer = d }
}

// WithLogger sets the logger. The run id is attached to every message.
func WithLogger(l commonlog.Logger) Option {
	return func(e *Environment) { e.log = l }
}

// New creates an Environment with a zeroed tape of tapeSize cells.
func New(tapeSize int, opts ...Option) (*Environment, error) {
	if tapeSize <= 0 {
		return nil, fmt.Errorf("tape size must be positive, got %d", tapeSize)
	}

	e := &Environment{
		id:      uuid.NewString(),
		tape:    make([]int32, tapeSize),
		handle:  -1,
		port:    -1,
		timeout: DefaultTimeout,
		out:     os.Stdout,
		in:      NewTerminalInput(os.Stdin),
		dialer:  &net.Dialer{},
		log:     commonlog.GetLogger("netfsck.vm"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = commonlog.NewKeyValueLogger(e.log, "run", e.id)

	return e, nil
}

// Evaluate parses source and executes it to completion. Parse errors
// are returned unchanged and nothing runs; a runtime fault stops
// execution and is returned as a *RuntimeError.
func (e *Environment) Evaluate(source string) error {
	program, err := compiler.Parse(source)
	if err != nil {
		return err
	}
	return e.Execute(program)
}

// Execute runs an already compiled program against the current state.
func (e *Environment) Execute(program []compiler.Instruction) error {
	e.log.Debug("executing program", "instructions", compiler.Count(program), "tape", len(e.tape))
	return e.execute(program)
}

// Close closes every connection in the table. The entries themselves
// remain, matching the lifetime of handles during a run.
func (e *Environment) Close() error {
	var first error
	for i, c := range e.connections {
		if err := c.conn.Close(); err != nil && first == nil {
			first = fmt.Errorf("closing handle %d: %w", i, err)
		}
	}
	return first
}

// ---------------------------------------------------------------------------
// Inspection
// ---------------------------------------------------------------------------

// ID returns the run id used in log messages.
func (e *Environment) ID() string { return e.id }

// Pointer returns the current tape index.
func (e *Environment) Pointer() int { return e.ptr }

// Cell returns the value at tape index i.
func (e *Environment) Cell(i int) int32 { return e.tape[i] }

// Tape returns a copy of the tape.
func (e *Environment) Tape() []int32 {
	out := make([]int32, len(e.tape))
	copy(out, e.tape)
	return out
}

// Connections returns the number of entries in the connection table.
func (e *Environment) Connections() int { return len(e.connections) }

// Handle returns the selected handle, if any.
func (e *Environment) Handle() (int, bool) { return e.handle, e.handle >= 0 }

// Port returns the configured port, if any.
func (e *Environment) Port() (uint16, bool) { return uint16(e.port), e.port >= 0 }

// Timeout returns the timeout for new connections; zero means none.
func (e *Environment) Timeout() time.Duration { return e.timeout }

// PendingWrites returns a copy of the unflushed send buffer.
func (e *Environment) PendingWrites() []byte {
	out := make([]byte, len(e.writeBuffer))
	copy(out, e.writeBuffer)
	return out
}
