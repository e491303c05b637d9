package vm

import (
	"io"
	"strings"

	"github.com/chazu/netfsck/compiler"
)

// ---------------------------------------------------------------------------
// Interpreter: depth-first walk of the instruction tree
// ---------------------------------------------------------------------------

// flusher is implemented by buffered writers such as *bufio.Writer.
type flusher interface {
	Flush() error
}

func (e *Environment) execute(program []compiler.Instruction) error {
	for i := range program {
		inst := &program[i]

		switch inst.Opcode {
		case compiler.OpLeft:
			if inst.Amount > e.ptr {
				return e.fault(inst, ErrPointerOutOfBounds)
			}
			e.ptr -= inst.Amount

		case compiler.OpRight:
			if inst.Amount > len(e.tape)-1-e.ptr {
				return e.fault(inst, ErrPointerOutOfBounds)
			}
			e.ptr += inst.Amount

		case compiler.OpInc:
			e.tape[e.ptr] += int32(inst.Amount)

		case compiler.OpDec:
			e.tape[e.ptr] -= int32(inst.Amount)

		case compiler.OpLoop:
			for e.tape[e.ptr] != 0 {
				if err := e.execute(inst.Instructions); err != nil {
					return err
				}
			}

		case compiler.OpPrint:
			if err := e.print(inst.Amount); err != nil {
				return e.fault(inst, err)
			}

		case compiler.OpQuery:
			if err := e.query(inst.Amount); err != nil {
				return e.fault(inst, err)
			}

		case compiler.OpSetPort:
			e.setPort()
		case compiler.OpSocketHandle:
			e.selectHandle()
		case compiler.OpConnect:
			e.connect()
		case compiler.OpDisconnect:
			e.disconnect()
		case compiler.OpSendData:
			e.sendData(inst.Amount)
		case compiler.OpFlushWrites:
			e.flushWrites()
		case compiler.OpReceiveData:
			e.receiveData(inst.Amount)
		case compiler.OpSetTimeout:
			e.setTimeout()
		}
	}
	return nil
}

func (e *Environment) fault(inst *compiler.Instruction, err error) error {
	e.log.Debug("runtime fault", "op", inst.Opcode.String(), "pointer", e.ptr, "error", err.Error())
	return &RuntimeError{
		Op:      inst.Opcode,
		Amount:  inst.Amount,
		Pointer: e.ptr,
		Err:     err,
	}
}

// print writes the current cell's low byte as a character amount times.
func (e *Environment) print(amount int) error {
	ch := string(rune(byte(e.tape[e.ptr])))
	if _, err := io.WriteString(e.out, strings.Repeat(ch, amount)); err != nil {
		return err
	}
	if f, ok := e.out.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// query reads amount characters, each overwriting the current cell.
func (e *Environment) query(amount int) error {
	if e.in == nil {
		return ErrNoInteractiveInput
	}
	for i := 0; i < amount; i++ {
		r, err := e.in.ReadChar()
		if err != nil {
			return err
		}
		e.tape[e.ptr] = int32(r)
	}
	return nil
}
