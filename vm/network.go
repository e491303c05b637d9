package vm

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"net/netip"
	"strconv"
	"time"
)

// ---------------------------------------------------------------------------
// Connections
// ---------------------------------------------------------------------------

// Dialer opens outgoing connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// halfCloser is implemented by *net.TCPConn.
type halfCloser interface {
	CloseRead() error
	CloseWrite() error
}

// connection is one entry of the connection table. The timeout is fixed
// when the connection is created and applies to every read and write.
type connection struct {
	conn    net.Conn
	addr    string
	timeout time.Duration
}

func (c *connection) write(p []byte) error {
	if c.timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return err
		}
	}
	_, err := c.conn.Write(p)
	return err
}

func (c *connection) readFull(n int) ([]byte, error) {
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, err
		}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// shutdown closes both directions without releasing the connection.
func (c *connection) shutdown() error {
	hc, ok := c.conn.(halfCloser)
	if !ok {
		return c.conn.Close()
	}
	if err := hc.CloseRead(); err != nil {
		return err
	}
	return hc.CloseWrite()
}

// ---------------------------------------------------------------------------
// Networking opcodes
// ---------------------------------------------------------------------------

func (e *Environment) cell() int32 {
	return e.tape[e.ptr]
}

func (e *Environment) fail() {
	e.tape[e.ptr] = Sentinel
}

// selected returns the connection chosen by the last SocketHandle, or
// nil if no valid handle is selected. A disconnected handle still
// counts as selected.
func (e *Environment) selected() *connection {
	if e.handle < 0 || e.handle >= len(e.connections) {
		return nil
	}
	return e.connections[e.handle]
}

func (e *Environment) setPort() {
	v := e.cell()
	if v < 0 {
		e.fail()
		return
	}
	e.port = int(v % 65535)
}

func (e *Environment) selectHandle() {
	v := e.cell()
	if v < 0 || int(v) >= len(e.connections) {
		e.fail()
		return
	}
	e.handle = int(v)
}

func (e *Environment) connect() {
	if e.port < 0 {
		e.fail()
		return
	}

	var ip [4]byte
	binary.BigEndian.PutUint32(ip[:], uint32(e.cell()))
	addr := net.JoinHostPort(netip.AddrFrom4(ip).String(), strconv.Itoa(e.port))

	ctx := context.Background()
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	conn, err := e.dialer.DialContext(ctx, "tcp4", addr)
	if err != nil {
		e.log.Debug("connect failed", "addr", addr, "error", err.Error())
		e.fail()
		return
	}

	handle := len(e.connections)
	e.connections = append(e.connections, &connection{
		conn:    conn,
		addr:    addr,
		timeout: e.timeout,
	})
	e.tape[e.ptr] = int32(handle)
	e.log.Info("connected", "addr", addr, "handle", handle, "timeout", e.timeout.String())
}

func (e *Environment) disconnect() {
	c := e.selected()
	if c == nil {
		e.fail()
		return
	}
	if err := c.shutdown(); err != nil {
		e.log.Debug("disconnect failed", "handle", e.handle, "error", err.Error())
		e.fail()
	}
}

// sendData buffers the current cell: the low amount bytes in
// little-endian order, or the lowest byte repeated when amount > 4.
func (e *Environment) sendData(amount int) {
	if e.selected() == nil {
		e.fail()
		return
	}

	var le [4]byte
	binary.LittleEndian.PutUint32(le[:], uint32(e.cell()))

	if amount > 4 {
		for i := 0; i < amount; i++ {
			e.writeBuffer = append(e.writeBuffer, le[0])
		}
		return
	}
	e.writeBuffer = append(e.writeBuffer, le[:amount]...)
}

// flushWrites sends the pending buffer. The buffer is cleared whether
// or not the write succeeds.
func (e *Environment) flushWrites() {
	c := e.selected()
	if c == nil {
		e.fail()
		return
	}

	pending := e.writeBuffer
	e.writeBuffer = nil
	if len(pending) == 0 {
		return
	}
	if err := c.write(pending); err != nil {
		e.log.Debug("flush failed", "handle", e.handle, "bytes", len(pending), "error", err.Error())
		e.fail()
	}
}

// receiveData reads exactly amount bytes. The last four bytes of the
// zero-padded buffer become the new cell value, little-endian.
func (e *Environment) receiveData(amount int) {
	c := e.selected()
	if c == nil {
		e.fail()
		return
	}

	buf, err := c.readFull(amount)
	if err != nil {
		e.log.Debug("receive failed", "handle", e.handle, "want", amount, "error", err.Error())
		e.fail()
		return
	}

	for len(buf) < 4 {
		buf = append(buf, 0)
	}
	e.tape[e.ptr] = int32(binary.LittleEndian.Uint32(buf[len(buf)-4:]))
}

func (e *Environment) setTimeout() {
	v := e.cell()
	if v <= 0 {
		e.timeout = 0
	} else {
		e.timeout = time.Duration(v) * time.Millisecond
	}
	e.log.Debug("timeout set", "timeout", e.timeout.String())
}
