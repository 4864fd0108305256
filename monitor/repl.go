// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package monitor

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/eiannone/keyboard"

	"risc32sim/bitvec"
	"risc32sim/cpu"
)

// REPL drives an interactive step/continue/inspect loop from single
// keystrokes, for terminals where the full-screen Dashboard is overkill.
// Grounded on the teacher's console.go byte-at-a-time ConsoleRead loop, but
// dispatching named commands instead of forwarding bytes to a UART.
type REPL struct {
	c   *cpu.CPU
	out io.Writer
}

// NewREPL returns a REPL driving c, writing to stdout.
func NewREPL(c *cpu.CPU) *REPL { return &REPL{c: c, out: os.Stdout} }

// Run opens the keyboard, prints the command summary, and dispatches
// keystrokes until the user quits, the CPU halts, or maxCycles is exhausted
// by a continue command.
func (r *REPL) Run(maxCycles int) error {
	if err := keyboard.Open(); err != nil {
		return err
	}
	defer keyboard.Close()

	r.printHelp()
	for {
		ch, key, err := keyboard.GetKey()
		if err != nil {
			return err
		}
		switch {
		case key == keyboard.KeyCtrlC || ch == 'q':
			return nil
		case ch == 's':
			cyc, halted := r.c.Step()
			fmt.Fprintf(r.out, "%s  %s\n", cyc.PC, cyc.Instruction)
			if halted {
				fmt.Fprintf(r.out, "halted: %s\n", r.c.LastHalt())
				return nil
			}
		case ch == 'c':
			reason := r.c.Run(maxCycles)
			fmt.Fprintf(r.out, "halted: %s\n", reason)
			return nil
		case ch == 'd':
			DumpRegisters(r.out, r.c)
		case ch == 'f':
			DumpFPRegisters(r.out, r.c)
		case ch == 'w':
			if err := r.writeRegisterPrompt(); err != nil {
				fmt.Fprintln(r.out, err)
			}
		case ch == 'h' || ch == '?':
			r.printHelp()
		}
	}
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.out, "s=step  c=continue  d=dump regs  f=dump fp regs  w=write reg  h=help  q=quit\n")
}

// writeRegisterPrompt closes the keyboard handle (RawLine needs the console
// back in its own raw mode) and reads a "x<n>=<hex>" assignment line.
func (r *REPL) writeRegisterPrompt() error {
	keyboard.Close()
	defer keyboard.Open()

	line, err := RawLine(r.out, "write register (e.g. x5=0a): ")
	if err != nil {
		return err
	}
	n, value, err := parseRegisterAssignment(line)
	if err != nil {
		return err
	}
	r.c.SetRegister(n, value)
	return nil
}

func parseRegisterAssignment(line string) (int, bitvec.Vector, error) {
	parts := strings.SplitN(strings.TrimSpace(line), "=", 2)
	if len(parts) != 2 {
		return 0, nil, fmt.Errorf("monitor: expected x<n>=<hex>, got %q", line)
	}
	name := strings.TrimPrefix(strings.TrimSpace(parts[0]), "x")
	n, err := strconv.Atoi(name)
	if err != nil || n < 0 || n > 31 {
		return 0, nil, fmt.Errorf("monitor: invalid register %q", parts[0])
	}
	raw, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 16, 32)
	if err != nil {
		return 0, nil, fmt.Errorf("monitor: invalid hex value %q", parts[1])
	}
	return n, uintToVector(raw, 32), nil
}

// uintToVector renders a host-parsed value as a bit vector for a register
// write. This is user-input parsing at the monitor's I/O boundary, not
// functional-unit logic, so the host shift/mask spec.md's discipline
// forbids inside alu/shifter/mdu/fpu is fine here.
func uintToVector(value uint64, width int) bitvec.Vector {
	out := make(bitvec.Vector, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = int(value & 1)
		value >>= 1
	}
	return out
}
