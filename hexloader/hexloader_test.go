// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package hexloader

import (
	"errors"
	"strings"
	"testing"

	"risc32sim/bitvec/testutil"
)

func TestLoadSkipsBlankLines(t *testing.T) {
	input := "00500093\n\n0000006F\n   \n"
	words, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("len(words) = %d, want 2", len(words))
	}
	if got := testutil.ToUint(words[0]); got != 0x00500093 {
		t.Fatalf("words[0] = %#x, want 0x00500093", got)
	}
	if got := testutil.ToUint(words[1]); got != 0x0000006F {
		t.Fatalf("words[1] = %#x, want 0x0000006F", got)
	}
}

func TestLoadAcceptsOptional0xPrefix(t *testing.T) {
	words, err := Load(strings.NewReader("0x00500093\n0X0000006F\n"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("len(words) = %d, want 2", len(words))
	}
}

func TestLoadTrimsSurroundingWhitespace(t *testing.T) {
	words, err := Load(strings.NewReader("   00500093   \n"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(words) != 1 || testutil.ToUint(words[0]) != 0x00500093 {
		t.Fatalf("words = %v, want one word 0x00500093", words)
	}
}

func TestLoadRejectsWrongDigitCount(t *testing.T) {
	_, err := Load(strings.NewReader("500093\n"))
	if err == nil {
		t.Fatalf("expected error for a 6-digit line")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Line != 1 {
		t.Fatalf("perr.Line = %d, want 1", perr.Line)
	}
}

func TestLoadRejectsNonHexCharacters(t *testing.T) {
	_, err := Load(strings.NewReader("0050009G\n"))
	if err == nil {
		t.Fatalf("expected error for a non-hex digit")
	}
}

func TestLoadReportsLineNumberOfFirstFailure(t *testing.T) {
	input := "00500093\n0000006F\nbadline!\n00100093\n"
	_, err := Load(strings.NewReader(input))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Line != 3 {
		t.Fatalf("perr.Line = %d, want 3", perr.Line)
	}
}

func TestLoadReturnsDecodedPrefixOnFailure(t *testing.T) {
	input := "00500093\nnotvalid\n"
	words, err := Load(strings.NewReader(input))
	if err == nil {
		t.Fatalf("expected an error")
	}
	if len(words) != 1 {
		t.Fatalf("len(words) = %d, want 1 (the prefix decoded before the failure)", len(words))
	}
	if got := testutil.ToUint(words[0]); got != 0x00500093 {
		t.Fatalf("words[0] = %#x, want 0x00500093", got)
	}
}

func TestLoadEmptyInputYieldsNoWords(t *testing.T) {
	words, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(words) != 0 {
		t.Fatalf("len(words) = %d, want 0", len(words))
	}
}
