// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

// Package compiler turns a regular expression pattern into a plaintext
// program.Program by walking the standard library's regexp/syntax parse
// tree and lowering each node into the Branch/Jump/quantifier bytecode the
// vm package interprets.
package compiler

import (
	"errors"
	"fmt"
	"regexp/syntax"
	"unicode"

	"github.com/luxfi/fherex/program"
)

// Sentinel errors identifying the three ways compilation can fail.
var (
	// ErrParse wraps a regexp/syntax parse failure.
	ErrParse = errors.New("pattern parse error")
	// ErrUnsupported marks a syntax feature outside this compiler's
	// supported surface: line anchors, word boundaries, lazy quantifiers,
	// and quantified atoms more complex than a single char or class.
	ErrUnsupported = errors.New("unsupported pattern feature")
	// ErrByteRange marks a character class endpoint outside 0-255.
	ErrByteRange = errors.New("character class endpoint out of byte range")
)

// CompileError carries one of the sentinel errors above plus the pattern
// that was being compiled when it occurred.
type CompileError struct {
	Err     error
	Pattern string
}

func (e *CompileError) Error() string {
	if e.Pattern == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Pattern)
}

func (e *CompileError) Unwrap() error { return e.Err }

// parseFlags restricts regexp/syntax to a byte-oriented pattern surface:
// Perl-compatible syntax, but without UnicodeGroups, since the compiler
// requires every character class endpoint to fit in a byte and \p{...}
// classes can produce endpoints far outside that range.
const parseFlags = syntax.Perl &^ syntax.UnicodeGroups

// Compile parses pattern and emits the corresponding plaintext program.
func Compile(pattern string) (program.Program, error) {
	re, err := syntax.Parse(pattern, parseFlags)
	if err != nil {
		return nil, &CompileError{Err: fmt.Errorf("%w: %v", ErrParse, err), Pattern: pattern}
	}

	c := &compilerState{}
	if err := c.emit(re); err != nil {
		var ce *CompileError
		if errors.As(err, &ce) && ce.Pattern == "" {
			ce.Pattern = pattern
		}
		return nil, err
	}
	return c.prog, nil
}

// compilerState accumulates instructions as the tree is walked.
// Action.Next is always the emitted instruction's own index + 1, so no
// separate start/bias counter is threaded through emit.
type compilerState struct {
	prog program.Program
}

func (c *compilerState) push(inst program.Instruction) int {
	inst.Action.Next = len(c.prog) + 1
	c.prog = append(c.prog, inst)
	return len(c.prog) - 1
}

func (c *compilerState) emit(re *syntax.Regexp) error {
	switch re.Op {
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if err := c.emit(sub); err != nil {
				return err
			}
		}
		return nil

	case syntax.OpCapture:
		// Groups are non-capturing here: drop the capture index and
		// descend into the body.
		return c.emit(re.Sub[0])

	case syntax.OpLiteral:
		for _, r := range re.Rune {
			b, err := runeToByte(r)
			if err != nil {
				return err
			}
			c.push(program.Instruction{
				Op:     program.OpChar,
				Char:   b,
				Action: program.Action{Offset: 1},
			})
		}
		return nil

	case syntax.OpEmptyMatch:
		c.push(program.Instruction{Op: program.OpMatch, Action: program.Action{Offset: 0}})
		return nil

	case syntax.OpBeginText:
		c.push(program.Instruction{Op: program.OpStart, Action: program.Action{Offset: 0}})
		return nil

	case syntax.OpEndText:
		c.push(program.Instruction{Op: program.OpMatch, Action: program.Action{Offset: 0}})
		return nil

	case syntax.OpBeginLine, syntax.OpEndLine:
		return &CompileError{Err: fmt.Errorf("%w: line anchors", ErrUnsupported)}

	case syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return &CompileError{Err: fmt.Errorf("%w: word boundaries", ErrUnsupported)}

	case syntax.OpCharClass:
		ranges, err := classRanges(re.Rune)
		if err != nil {
			return err
		}
		c.push(program.Instruction{
			Op:     program.OpIntervalChar,
			Ranges: ranges,
			Action: program.Action{Offset: 1},
		})
		return nil

	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		c.push(program.Instruction{
			Op:     program.OpIntervalChar,
			Ranges: []program.Range{{Start: 0x00, End: 0xFF}},
			Action: program.Action{Offset: 1},
		})
		return nil

	case syntax.OpStar, syntax.OpPlus, syntax.OpQuest, syntax.OpRepeat:
		return c.emitRepeat(re)

	case syntax.OpAlternate:
		return c.emitAlternate(re)

	case syntax.OpNoMatch:
		return &CompileError{Err: fmt.Errorf("%w: pattern cannot match anything", ErrUnsupported)}

	default:
		return &CompileError{Err: fmt.Errorf("%w: op %s", ErrUnsupported, re.Op)}
	}
}

// emitAlternate lowers an N-way alternation into a chain of Branch/Jump
// pairs: one Branch before every alternative but the last (falling back to
// the next alternative's start on backtrack), and one Jump after every
// alternative but the last (skipping to the end once that alternative
// matched).
//
// The Jump placeholder for the alternative just finished must be pushed
// *before* the preceding Branch is patched, so the Branch's target lands on
// the next alternative's first instruction (the index right after the
// Jump), not on the Jump itself.
func (c *compilerState) emitAlternate(re *syntax.Regexp) error {
	var jumpIdx []int

	for i, sub := range re.Sub {
		last := i == len(re.Sub)-1
		var branchIdx int
		if !last {
			branchIdx = c.push(program.Instruction{Op: program.OpBranch, Action: program.Action{Offset: 0}})
		}

		if err := c.emit(sub); err != nil {
			return err
		}

		if !last {
			idx := c.push(program.Instruction{Op: program.OpJump, Action: program.Action{Offset: 0}})
			jumpIdx = append(jumpIdx, idx)
			c.prog[branchIdx].Target = len(c.prog)
		}
	}

	end := len(c.prog)
	for _, idx := range jumpIdx {
		c.prog[idx].Target = end
	}
	return nil
}

// emitRepeat lowers `*`/`+`/`?`/`{m,n}` into a sequence of plain, repeatable,
// and optional instances of the single atom (literal byte or character
// class) the quantifier applies to.
func (c *compilerState) emitRepeat(re *syntax.Regexp) error {
	atom, err := quantifiedAtom(re.Sub[0])
	if err != nil {
		return err
	}

	if re.Flags&syntax.NonGreedy != 0 {
		return &CompileError{Err: fmt.Errorf("%w: lazy quantifiers", ErrUnsupported)}
	}

	switch re.Op {
	case syntax.OpStar:
		c.pushAtom(atom, true, false)
	case syntax.OpPlus:
		c.pushAtom(atom, false, false)
		c.pushAtom(atom, true, false)
	case syntax.OpQuest:
		c.pushAtom(atom, false, true)
	case syntax.OpRepeat:
		return c.emitBoundedRepeat(atom, re.Min, re.Max)
	}
	return nil
}

func (c *compilerState) emitBoundedRepeat(atom quantifierAtom, min, max int) error {
	switch {
	case max == min:
		for i := 0; i < min; i++ {
			c.pushAtom(atom, false, false)
		}
	case max == -1:
		for i := 0; i < min; i++ {
			c.pushAtom(atom, false, false)
		}
		c.pushAtom(atom, true, false)
	default:
		for i := 0; i < min; i++ {
			c.pushAtom(atom, false, false)
		}
		for i := 0; i < max-min; i++ {
			c.pushAtom(atom, false, true)
		}
	}
	return nil
}

// quantifierAtom is the single char or class a quantifier applies to.
type quantifierAtom struct {
	isClass bool
	char    byte
	ranges  []program.Range
}

// quantifiedAtom extracts the atom a quantifier repeats, unwrapping
// non-capturing scope wrappers. Anything other than a single literal byte
// or a character class is unsupported.
func quantifiedAtom(re *syntax.Regexp) (quantifierAtom, error) {
	for re.Op == syntax.OpCapture {
		re = re.Sub[0]
	}

	switch re.Op {
	case syntax.OpLiteral:
		if len(re.Rune) != 1 {
			return quantifierAtom{}, &CompileError{Err: fmt.Errorf("%w: quantifier over multi-byte literal", ErrUnsupported)}
		}
		b, err := runeToByte(re.Rune[0])
		if err != nil {
			return quantifierAtom{}, err
		}
		return quantifierAtom{char: b}, nil

	case syntax.OpCharClass:
		ranges, err := classRanges(re.Rune)
		if err != nil {
			return quantifierAtom{}, err
		}
		return quantifierAtom{isClass: true, ranges: ranges}, nil

	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return quantifierAtom{isClass: true, ranges: []program.Range{{Start: 0x00, End: 0xFF}}}, nil

	default:
		return quantifierAtom{}, &CompileError{Err: fmt.Errorf("%w: quantifier over %s", ErrUnsupported, re.Op)}
	}
}

// pushAtom emits one instruction for atom: Char/Repetition/OptionalChar for
// a single byte, IntervalChar (with can_repeat/is_optional set) for a class.
func (c *compilerState) pushAtom(atom quantifierAtom, repeat, optional bool) {
	if atom.isClass {
		c.push(program.Instruction{
			Op:         program.OpIntervalChar,
			Ranges:     atom.ranges,
			CanRepeat:  repeat,
			IsOptional: optional,
			Action:     program.Action{Offset: 1},
		})
		return
	}

	op := program.OpChar
	switch {
	case repeat:
		op = program.OpRepetition
	case optional:
		op = program.OpOptionalChar
	}
	c.push(program.Instruction{Op: op, Char: atom.char, Action: program.Action{Offset: 1}})
}

// runeToByte rejects any literal rune outside the byte range: this
// compiler's alphabet is plain bytes, not Unicode code points.
func runeToByte(r rune) (byte, error) {
	if r < 0 || r > 0xFF {
		return 0, &CompileError{Err: fmt.Errorf("%w: rune %U", ErrByteRange, r)}
	}
	return byte(r), nil
}

// classRanges converts regexp/syntax's flat lo,hi rune-pair encoding into
// program.Range values. A negated class reaches regexp/syntax's rune ceiling
// (unicode.MaxRune); such a range is cut at 0xFF, or dropped when it starts
// above 0xFF. Any other endpoint outside a byte is rejected.
func classRanges(runes []rune) ([]program.Range, error) {
	ranges := make([]program.Range, 0, len(runes)/2)
	for i := 0; i+1 < len(runes); i += 2 {
		lo, hi := runes[i], runes[i+1]
		if hi == unicode.MaxRune {
			if lo > 0xFF {
				continue
			}
			hi = 0xFF
		}
		loB, err := runeToByte(lo)
		if err != nil {
			return nil, err
		}
		hiB, err := runeToByte(hi)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, program.Range{Start: loB, End: hiB})
	}
	return ranges, nil
}
