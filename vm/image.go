package vm

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/netfsck/compiler"
)

// ---------------------------------------------------------------------------
// Image Format Constants
// ---------------------------------------------------------------------------

// ImageMagic is the magic number identifying a compiled netfsck program.
var ImageMagic = [4]byte{'N', 'F', 'C', 'K'}

// ImageVersion is the current image format version.
// v1: CBOR-encoded instruction tree
const ImageVersion uint16 = 1

// ImageExt is the conventional file extension for images.
const ImageExt = ".nfc"

// imageBody is the CBOR payload following the magic bytes.
type imageBody struct {
	Version uint16                 `cbor:"1,keyasint"`
	Program []compiler.Instruction `cbor:"2,keyasint"`
}

// maxNestedLevels is the deepest CBOR nesting the decoder accepts.
const maxNestedLevels = 65535

// MaxLoopDepth is the deepest loop nesting an image can hold. Each loop
// adds a map and an array; the body map, the program array and the
// innermost instruction take three more levels.
const MaxLoopDepth = (maxNestedLevels - 3) / 2

// MaxAmount is the largest repeat count an image may carry.
const MaxAmount = 1 << 24

// cborEncMode uses canonical encoding so identical programs produce
// identical images. cborDecMode reads every tree WriteImage accepts.
var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	dm, err := cbor.DecOptions{
		MaxNestedLevels:  maxNestedLevels,
		MaxArrayElements: math.MaxInt32,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// WriteImage serializes a compiled program to w.
func WriteImage(w io.Writer, program []compiler.Instruction) error {
	if depth := loopDepth(program); depth > MaxLoopDepth {
		return fmt.Errorf("vm: loops nested %d deep, images hold at most %d", depth, MaxLoopDepth)
	}
	if err := validateProgram(program); err != nil {
		return fmt.Errorf("vm: cannot write image: %w", err)
	}
	data, err := cborEncMode.Marshal(imageBody{Version: ImageVersion, Program: program})
	if err != nil {
		return fmt.Errorf("vm: marshal image: %w", err)
	}
	if _, err := w.Write(ImageMagic[:]); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// SaveImage writes a compiled program to path.
func SaveImage(path string, program []compiler.Instruction) error {
	var buf bytes.Buffer
	if err := WriteImage(&buf, program); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// ReadImage decodes and validates a compiled program from r.
func ReadImage(r io.Reader) ([]compiler.Instruction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeImage(data)
}

// LoadImage reads a compiled program from path.
func LoadImage(path string) ([]compiler.Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	program, err := DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}

// IsImage reports whether data starts with the image magic.
func IsImage(data []byte) bool {
	return len(data) >= len(ImageMagic) && bytes.Equal(data[:len(ImageMagic)], ImageMagic[:])
}

// DecodeImage decodes and validates an in-memory image.
func DecodeImage(data []byte) ([]compiler.Instruction, error) {
	if !IsImage(data) {
		return nil, fmt.Errorf("vm: invalid image magic")
	}

	var body imageBody
	if err := cborDecMode.Unmarshal(data[len(ImageMagic):], &body); err != nil {
		return nil, fmt.Errorf("vm: unmarshal image: %w", err)
	}
	if body.Version == 0 || body.Version > ImageVersion {
		return nil, fmt.Errorf("vm: image version %d is not supported (max %d)", body.Version, ImageVersion)
	}
	if err := validateProgram(body.Program); err != nil {
		return nil, fmt.Errorf("vm: invalid image: %w", err)
	}
	return body.Program, nil
}

// validateProgram checks the shape invariants the parser guarantees:
// known opcodes, bounded positive repeat counts, children only under loops.
func validateProgram(program []compiler.Instruction) error {
	for i, inst := range program {
		if inst.Opcode > compiler.OpSetTimeout {
			return fmt.Errorf("instruction %d: unknown opcode %d", i, inst.Opcode)
		}
		if inst.Opcode == compiler.OpLoop {
			if inst.Amount != 1 {
				return fmt.Errorf("instruction %d: loop amount %d, want 1", i, inst.Amount)
			}
			if err := validateProgram(inst.Instructions); err != nil {
				return err
			}
			continue
		}
		if inst.Amount < 1 || inst.Amount > MaxAmount {
			return fmt.Errorf("instruction %d: %s amount %d, want 1..%d", i, inst.Opcode, inst.Amount, MaxAmount)
		}
		if len(inst.Instructions) != 0 {
			return fmt.Errorf("instruction %d: %s has children", i, inst.Opcode)
		}
	}
	return nil
}

// loopDepth returns the deepest loop nesting in program.
func loopDepth(program []compiler.Instruction) int {
	deepest := 0
	for _, inst := range program {
		if inst.Opcode != compiler.OpLoop {
			continue
		}
		if d := 1 + loopDepth(inst.Instructions); d > deepest {
			deepest = d
		}
	}
	return deepest
}
