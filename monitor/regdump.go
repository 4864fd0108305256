// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package monitor

import (
	"fmt"
	"io"
	"text/tabwriter"

	"risc32sim/bitvec"
	"risc32sim/cpu"
	"risc32sim/twoscomp"
)

// DumpRegisters prints the 32 integer registers four to a row, hex value
// alongside ABI alias, mirroring the right-aligned tabular layout
// Glorforidor-caeriscv's main.go builds with text/tabwriter for its own
// register dump.
func DumpRegisters(w io.Writer, c *cpu.CPU) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "PC\t%s\t\t\t\n", c.PC())
	for row := 0; row < 8; row++ {
		for col := 0; col < 4; col++ {
			n := row + col*8
			v := c.GetRegister(n)
			fmt.Fprintf(tw, "x%d(%s)\t%s\t", n, regAlias[n], v)
		}
		fmt.Fprint(tw, "\n")
	}
	tw.Flush()
}

// DumpFPRegisters prints the 32 floating-point registers in the same
// four-per-row layout as DumpRegisters.
func DumpFPRegisters(w io.Writer, c *cpu.CPU) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for row := 0; row < 8; row++ {
		for col := 0; col < 4; col++ {
			n := row + col*8
			v := c.GetFPRegister(n)
			fmt.Fprintf(tw, "f%d\t%s\t", n, v)
		}
		fmt.Fprint(tw, "\n")
	}
	tw.Flush()
}

// DumpMemoryWords prints count consecutive words starting at addr, one per
// line, as hex address, hex word, and its signed decimal interpretation.
func DumpMemoryWords(w io.Writer, c *cpu.CPU, addr bitvec.Vector, count int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	cur := addr.Clone()
	four := bitvec.Vector{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0}
	for i := 0; i < count; i++ {
		val := c.GetMemoryWord(cur)
		fmt.Fprintf(tw, "%s\t%s\t%d\n", cur, val, twoscomp.Decode(val))
		cur = rippleAdd32(cur, four)
	}
	tw.Flush()
}

// rippleAdd32 advances a dump cursor by a compile-time-constant word stride
// using a plain full adder, independent of the alu package for the same
// reason memory.LoadProgram is: this is display-cursor bookkeeping, not a
// functional-unit computation spec.md's discipline governs.
func rippleAdd32(a, b bitvec.Vector) bitvec.Vector {
	sum := make(bitvec.Vector, 32)
	carry := 0
	for i := 31; i >= 0; i-- {
		axb := a[i] ^ b[i]
		sum[i] = axb ^ carry
		carry = (a[i] & b[i]) | (b[i] & carry) | (a[i] & carry)
	}
	return sum
}
