// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
//go:build windows

// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package monitor

import (
	"os"

	"golang.org/x/sys/windows"
)

// consoleState preserves the console mode RawLine restores when it returns,
// adapted from the teacher's console_windows.go.
type consoleState struct {
	modeStdin uint32
}

func setRawConsole() (*consoleState, error) {
	var st uint32
	stdinFd := os.Stdin.Fd()

	if err := windows.GetConsoleMode(windows.Handle(stdinFd), &st); err != nil {
		return nil, err
	}
	raw := st &^ (windows.ENABLE_ECHO_INPUT | windows.ENABLE_PROCESSED_INPUT | windows.ENABLE_LINE_INPUT)
	raw |= windows.ENABLE_VIRTUAL_TERMINAL_INPUT
	if err := windows.SetConsoleMode(windows.Handle(stdinFd), raw); err != nil {
		return nil, err
	}
	return &consoleState{modeStdin: st}, nil
}

func restoreConsole(st *consoleState) error {
	return windows.SetConsoleMode(windows.Handle(os.Stdin.Fd()), st.modeStdin)
}

func readConsoleByte() (byte, error) {
	buf := make([]byte, 1)
	_, err := os.Stdin.Read(buf)
	return buf[0], err
}
