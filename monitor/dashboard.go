// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package monitor

import (
	"fmt"

	"github.com/nsf/termbox-go"

	"risc32sim/cpu"
)

// Dashboard is a full-screen register/memory/disassembly view that redraws
// after every step, the terminal-grid analogue of the teacher's
// framebuffer.go Draw refresh loop (there: blit a pixel image each frame;
// here: repaint a character grid each cycle).
type Dashboard struct {
	c *cpu.CPU
}

// NewDashboard returns a Dashboard driving c.
func NewDashboard(c *cpu.CPU) *Dashboard { return &Dashboard{c: c} }

// Run takes over the terminal and drives an interactive step/continue/quit
// loop until the user quits, the CPU halts, or maxCycles is exhausted by a
// continue command.
func (d *Dashboard) Run(maxCycles int) error {
	if err := termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()

	d.draw("")
	for {
		ev := termbox.PollEvent()
		if ev.Type != termbox.EventKey {
			continue
		}
		switch {
		case ev.Key == termbox.KeyCtrlC || ev.Ch == 'q':
			return nil
		case ev.Ch == 's' || ev.Key == termbox.KeySpace:
			cyc, halted := d.c.Step()
			d.draw(cyc.Instruction.String())
			if halted {
				return nil
			}
		case ev.Ch == 'c':
			reason := d.c.Run(maxCycles)
			d.draw("halted: " + reason.String())
			return nil
		}
	}
}

func (d *Dashboard) draw(lastInstr string) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	y := 0
	print := func(format string, args ...any) {
		tbPrint(0, y, fmt.Sprintf(format, args...))
		y++
	}

	print("risc32sim monitor  [s]tep  [c]ontinue  [q]uit")
	print("PC      %s   last: %s", d.c.PC(), lastInstr)
	y++

	for row := 0; row < 8; row++ {
		line := ""
		for col := 0; col < 4; col++ {
			n := row + col*8
			line += fmt.Sprintf("x%-2d %-4s %-10s  ", n, regAlias[n], d.c.GetRegister(n))
		}
		print("%s", line)
	}

	y++
	stats := d.c.Statistics()
	print("cycles=%d  instructions=%d  CPI=%.2f", stats.Cycles, stats.Instructions, stats.CPI())

	termbox.Flush()
}

func tbPrint(x, y int, s string) {
	for i, r := range s {
		termbox.SetCell(x+i, y, r, termbox.ColorDefault, termbox.ColorDefault)
	}
}
