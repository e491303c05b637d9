// Package vm implements the netfsck execution engine.
//
// This package contains:
//   - Environment: tape, pointer, connection table and networking state
//   - The tree-walking interpreter for compiled instruction trees
//   - Console input (raw terminal or any io.Reader) and output
//   - TCP connection handling for the eight networking opcodes
//   - Compiled program images (CBOR)
//
// Recoverable network failures never surface as Go errors: they are
// reported to the running program by writing -1 into the current cell.
// Only pointer faults and console faults stop execution, as a
// *RuntimeError returned from Evaluate or Execute.
package vm
