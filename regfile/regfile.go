// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
// Package regfile implements the register file from spec.md Section 4.7:
// 32 integer registers with x0 hardwired to zero, 32 single-precision
// floating-point registers, and the 8-bit FCSR (rounding mode plus sticky
// exception flags). Grounded on registers.py's field layout and the no-op
// write to x0.
package regfile

import (
	"fmt"

	"risc32sim/bitvec"
)

const (
	numIntRegs = 32
	numFPRegs  = 32
	xlen       = 32
	flen       = 32
	fcsrWidth  = 8
)

// RegisterFile holds the integer bank, the FP bank, and FCSR.
type RegisterFile struct {
	intRegs [numIntRegs]bitvec.Vector
	fpRegs  [numFPRegs]bitvec.Vector
	fcsr    bitvec.Vector
}

// New returns a register file with every register and FCSR field cleared.
func New() *RegisterFile {
	rf := &RegisterFile{fcsr: bitvec.New(fcsrWidth)}
	for i := range rf.intRegs {
		rf.intRegs[i] = bitvec.New(xlen)
	}
	for i := range rf.fpRegs {
		rf.fpRegs[i] = bitvec.New(flen)
	}
	return rf
}

// Reset clears every register and FCSR field back to zero.
func (rf *RegisterFile) Reset() {
	for i := range rf.intRegs {
		rf.intRegs[i] = bitvec.New(xlen)
	}
	for i := range rf.fpRegs {
		rf.fpRegs[i] = bitvec.New(flen)
	}
	rf.fcsr = bitvec.New(fcsrWidth)
}

func requireIntReg(n int) {
	if n < 0 || n >= numIntRegs {
		panic(fmt.Errorf("regfile: invalid integer register x%d, must be 0-%d", n, numIntRegs-1))
	}
}

func requireFPReg(n int) {
	if n < 0 || n >= numFPRegs {
		panic(fmt.Errorf("regfile: invalid floating-point register f%d, must be 0-%d", n, numFPRegs-1))
	}
}

// ReadInt returns a copy of x[n]. x0 always reads as zero.
func (rf *RegisterFile) ReadInt(n int) bitvec.Vector {
	requireIntReg(n)
	if n == 0 {
		return bitvec.New(xlen)
	}
	return rf.intRegs[n].Clone()
}

// WriteInt stores value into x[n]. Writes to x0 are silently dropped.
func (rf *RegisterFile) WriteInt(n int, value bitvec.Vector) {
	requireIntReg(n)
	if value.Len() != xlen {
		panic(fmt.Errorf("regfile: integer register write must be %d bits, got %d", xlen, value.Len()))
	}
	if n == 0 {
		return
	}
	rf.intRegs[n] = value.Clone()
}

// ReadFP returns a copy of f[n].
func (rf *RegisterFile) ReadFP(n int) bitvec.Vector {
	requireFPReg(n)
	return rf.fpRegs[n].Clone()
}

// WriteFP stores value into f[n].
func (rf *RegisterFile) WriteFP(n int, value bitvec.Vector) {
	requireFPReg(n)
	if value.Len() != flen {
		panic(fmt.Errorf("regfile: floating-point register write must be %d bits, got %d", flen, value.Len()))
	}
	rf.fpRegs[n] = value.Clone()
}

// FCSR returns a copy of the whole 8-bit FCSR register.
func (rf *RegisterFile) FCSR() bitvec.Vector { return rf.fcsr.Clone() }

// SetFCSR overwrites the whole FCSR register.
func (rf *RegisterFile) SetFCSR(value bitvec.Vector) {
	if value.Len() != fcsrWidth {
		panic(fmt.Errorf("regfile: FCSR write must be %d bits, got %d", fcsrWidth, value.Len()))
	}
	rf.fcsr = value.Clone()
}

// RoundingMode returns the 3-bit frm field (FCSR bits 7-5).
func (rf *RegisterFile) RoundingMode() bitvec.Vector { return rf.fcsr.Slice(0, 3) }

// SetRoundingMode overwrites the 3-bit frm field.
func (rf *RegisterFile) SetRoundingMode(mode bitvec.Vector) {
	if mode.Len() != 3 {
		panic(fmt.Errorf("regfile: rounding mode must be 3 bits, got %d", mode.Len()))
	}
	copy(rf.fcsr[0:3], mode)
}

// FFlags returns the 5-bit fflags field (FCSR bits 4-0): NV, DZ, OF, UF, NX.
func (rf *RegisterFile) FFlags() bitvec.Vector { return rf.fcsr.Slice(3, 8) }

// SetFFlags overwrites the 5-bit fflags field.
func (rf *RegisterFile) SetFFlags(flags bitvec.Vector) {
	if flags.Len() != 5 {
		panic(fmt.Errorf("regfile: exception flags must be 5 bits, got %d", flags.Len()))
	}
	copy(rf.fcsr[3:8], flags)
}

// RaiseFFlags OR-accumulates newly raised exception flags into fflags,
// matching the sticky semantics of real FCSR fflags: a flag once set stays
// set until explicitly cleared.
func (rf *RegisterFile) RaiseFFlags(nv, dz, of, uf, nx bool) {
	set := func(idx int, b bool) {
		if b {
			rf.fcsr[idx] = 1
		}
	}
	set(3, nv)
	set(4, dz)
	set(5, of)
	set(6, uf)
	set(7, nx)
}

// ClearFFlags zeros the 5-bit fflags field without disturbing frm.
func (rf *RegisterFile) ClearFFlags() {
	for i := 3; i < 8; i++ {
		rf.fcsr[i] = 0
	}
}
