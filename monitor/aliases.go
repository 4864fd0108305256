// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
package monitor

// regAlias gives the standard RISC-V ABI name for integer register n, used
// only by the monitor's human-readable dumps (spec.md Section 6: "aliases
// appear only in human-readable dumps"; the core never uses them).
var regAlias = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}
