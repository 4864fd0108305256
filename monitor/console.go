// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
//go:build !windows

// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package monitor

import (
	"os"

	"golang.org/x/term"
)

// consoleState preserves the terminal mode RawLine restores when it returns,
// adapted from the teacher's console.go (originally UART byte passthrough)
// to the monitor's register/memory poke prompt.
type consoleState struct {
	state term.State
}

func setRawConsole() (*consoleState, error) {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return nil, err
	}
	return &consoleState{*oldState}, nil
}

func restoreConsole(st *consoleState) error {
	return term.Restore(int(os.Stdin.Fd()), &st.state)
}

func readConsoleByte() (byte, error) {
	buf := make([]byte, 1)
	_, err := os.Stdin.Read(buf)
	return buf[0], err
}
