// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details
// Package fpu implements the IEEE-754 single-precision floating-point unit
// from spec.md Section 4.6: pack/unpack at the host-float I/O boundary, and
// an align -> operate -> normalize -> round -> repack pipeline for add,
// subtract, and multiply built entirely from the alu, shifter, and mdu
// packages. No host floating-point arithmetic appears outside Pack/Unpack.
package fpu

import (
	"math"

	"risc32sim/alu"
	"risc32sim/bitvec"
	"risc32sim/mdu"
	"risc32sim/shifter"
	"risc32sim/twoscomp"
)

const (
	signWidth = 1
	expWidth  = 8
	fracWidth = 23
	sigWidth  = fracWidth + 1 // hidden bit + fraction
	extWidth  = 8             // guard/round/sticky working room
	bias      = 127
)

// RoundingMode identifies the FCSR rounding mode. Only RNE is implemented
// per spec.md Section 9's open question; the others are accepted as input
// but rounded as RNE.
type RoundingMode int

const (
	RNE RoundingMode = iota
	RTZ
	RDN
	RUP
	RMM
)

// Flags carries the IEEE-754 sticky exception flags this operation raised.
// They are OR-accumulated into FCSR by the caller; arithmetic never clears
// them.
type Flags struct {
	Invalid     bool
	DivByZero   bool
	Overflow    bool
	Underflow   bool
	Inexact     bool
}

// Result is a 32-bit FPU output paired with the flags it raised.
type Result struct {
	Value bitvec.Vector
	Flags Flags
}

// Pack converts a host float32 to its IEEE-754 bit vector. This is the one
// permitted I/O boundary: it uses the host's memory-punning primitive, not
// floating-point arithmetic.
func Pack(value float32) bitvec.Vector {
	bits := math.Float32bits(value)
	out := make(bitvec.Vector, 32)
	for i := 0; i < 32; i++ {
		out[i] = int((bits >> (31 - i)) & 1)
	}
	return out
}

// Unpack converts an IEEE-754 bit vector to a host float32. Like Pack, this
// is an I/O boundary only; it is never called from inside Add/Sub/Mul.
func Unpack(v bitvec.Vector) float32 {
	var bits uint32
	for _, b := range v {
		bits = (bits << 1) | uint32(b)
	}
	return math.Float32frombits(bits)
}

type class int

const (
	classZero class = iota
	classSubnormal
	classNormal
	classInfinity
	classNaN
)

type unpacked struct {
	sign int
	exp  bitvec.Vector // 8-bit biased exponent field, as stored
	sig  bitvec.Vector // 24-bit significand: hidden bit ++ 23-bit fraction
	cls  class
}

func allOnes(v bitvec.Vector) bool {
	for _, b := range v {
		if b != 1 {
			return false
		}
	}
	return true
}

func classify(exp, frac bitvec.Vector) class {
	expZero, expOnes, fracZero := exp.IsZero(), allOnes(exp), frac.IsZero()
	switch {
	case expZero && fracZero:
		return classZero
	case expZero && !fracZero:
		return classSubnormal
	case expOnes && fracZero:
		return classInfinity
	case expOnes && !fracZero:
		return classNaN
	default:
		return classNormal
	}
}

func unpackFields(v bitvec.Vector) unpacked {
	sign := v.MSB()
	exp := v.Slice(1, 1+expWidth)
	frac := v.Slice(1+expWidth, 32)
	cls := classify(exp, frac)
	hidden := 0
	if cls == classNormal {
		hidden = 1
	}
	return unpacked{
		sign: sign,
		exp:  exp,
		sig:  bitvec.Concat(bitvec.Vector{hidden}, frac),
		cls:  cls,
	}
}

func repack(sign int, exp, frac bitvec.Vector) bitvec.Vector {
	return bitvec.Concat(bitvec.Vector{sign}, exp, frac)
}

func onesVec(w int) bitvec.Vector {
	v := bitvec.New(w)
	for i := range v {
		v[i] = 1
	}
	return v
}

func quietNaN() bitvec.Vector {
	frac := bitvec.New(fracWidth)
	frac[0] = 1
	return repack(0, onesVec(expWidth), frac)
}

func infinity(sign int) bitvec.Vector {
	return repack(sign, onesVec(expWidth), bitvec.New(fracWidth))
}

func signedZero(sign int) bitvec.Vector {
	return repack(sign, bitvec.New(expWidth), bitvec.New(fracWidth))
}

// to32 zero-extends an 8-bit exponent field to 32 bits for ALU arithmetic.
func to32(exp bitvec.Vector) bitvec.Vector { return bitvec.ZeroExtend(exp, 32) }

// expAsHostInt bridges an 8-bit exponent field to a host int via the
// twoscomp codec, to drive shift-amount, loop-bound and exponent-range
// decisions (spec.md Section 9's array-index/loop-counter allowance).
// finishFinite also re-encodes the in-range value it returns as the result's
// exponent field; no arithmetic is done on it in host form.
func expAsHostInt(exp32 bitvec.Vector) int { return int(twoscomp.Decode(exp32)) }

func hostIntToExp8(n int) bitvec.Vector {
	enc := twoscomp.Encode(int64(n))
	return enc.Bin.Slice(24, 32)
}

func shamt(n int) bitvec.Vector {
	if n < 0 {
		n = 0
	}
	if n > 31 {
		n = 31
	}
	v := bitvec.New(5)
	rem := n
	for i := 4; i >= 0; i-- {
		w := 1 << i
		if rem >= w {
			v[4-i] = 1
			rem -= w
		}
	}
	return v
}

func compareMagnitude(a, b bitvec.Vector) int {
	r := alu.Sub(a, b)
	if r.Flags.Z {
		return 0
	}
	if r.Flags.C {
		return 1
	}
	return -1
}

func leadingZeros(v bitvec.Vector) int {
	n := 0
	for _, b := range v {
		if b != 0 {
			break
		}
		n++
	}
	return n
}

// shiftLeftN shifts a vector of any width left by n bits (0 <= n <= v.Len()),
// zero-filling the vacated low bits, using only slicing and concatenation. It
// exists because the multiply pipeline's working container (48 bits) is
// wider than the fixed 32-bit width the shifter package's barrel stages are
// wired for.
func shiftLeftN(v bitvec.Vector, n int) bitvec.Vector {
	if n <= 0 {
		return v
	}
	if n >= v.Len() {
		return bitvec.New(v.Len())
	}
	return bitvec.Concat(v.Slice(n, v.Len()), bitvec.New(n))
}

func orReduce(v bitvec.Vector) bool {
	for _, b := range v {
		if b != 0 {
			return true
		}
	}
	return false
}

// effectiveExp returns the biased exponent field to use for alignment
// comparisons: subnormals are treated as having the smallest normal
// exponent (field value 1) with an implicit hidden bit of 0, matching the
// usual hardware treatment of denormals during alignment.
func effectiveExp(u unpacked) bitvec.Vector {
	if u.cls == classSubnormal {
		v := bitvec.New(expWidth)
		v[expWidth-1] = 1
		return v
	}
	return u.exp
}

// alignedContainer builds the 32-bit working container (24-bit significand
// plus an 8-bit guard/round/sticky working area) for operand u, shifted
// right by diff bits when u is the smaller-exponent operand. It reports
// whether any bits were lost off the bottom (contributing to the sticky
// flag).
func alignedContainer(sig bitvec.Vector, diff int) (bitvec.Vector, bool) {
	container := bitvec.Concat(sig, bitvec.New(extWidth))
	if diff == 0 {
		return container, false
	}
	if diff >= 32 {
		return bitvec.New(32), !container.IsZero()
	}
	lost := container.Slice(32-diff, 32)
	sticky := orReduce(lost)
	shifted := shifter.Shift(container, shamt(diff), shifter.OpSRL)
	return shifted, sticky
}

// Add computes a + b to IEEE-754 single precision.
func Add(a, b bitvec.Vector, rm RoundingMode) Result {
	ua, ub := unpackFields(a), unpackFields(b)
	var flags Flags

	if ua.cls == classNaN || ub.cls == classNaN {
		flags.Invalid = true
		return Result{quietNaN(), flags}
	}
	if ua.cls == classInfinity && ub.cls == classInfinity {
		if ua.sign != ub.sign {
			flags.Invalid = true
			return Result{quietNaN(), flags}
		}
		return Result{infinity(ua.sign), flags}
	}
	if ua.cls == classInfinity {
		return Result{a.Clone(), flags}
	}
	if ub.cls == classInfinity {
		return Result{b.Clone(), flags}
	}
	if ua.cls == classZero && ub.cls == classZero {
		sign := 0
		if ua.sign == 1 && ub.sign == 1 {
			sign = 1
		}
		return Result{signedZero(sign), flags}
	}
	if ua.cls == classZero {
		return Result{b.Clone(), flags}
	}
	if ub.cls == classZero {
		return Result{a.Clone(), flags}
	}

	return addFinite(ua, ub, flags)
}

// Sub computes a - b as Add(a, b-with-sign-flipped).
func Sub(a, b bitvec.Vector, rm RoundingMode) Result {
	bNeg := b.Clone()
	bNeg[0] = 1 ^ bNeg[0]
	return Add(a, bNeg, rm)
}

func addFinite(ua, ub unpacked, flags Flags) Result {
	expA32, expB32 := to32(effectiveExp(ua)), to32(effectiveExp(ub))
	cmp := alu.Sub(expA32, expB32)

	var big, small unpacked
	var diffVec bitvec.Vector
	switch {
	case cmp.Flags.Z:
		big, small = ua, ub
		diffVec = bitvec.New(32)
	case cmp.Flags.N:
		big, small = ub, ua
		diffVec = alu.Sub(expB32, expA32).Value
	default:
		big, small = ua, ub
		diffVec = cmp.Value
	}
	diff := expAsHostInt(diffVec)

	bigContainer := bitvec.Concat(big.sig, bitvec.New(extWidth))
	smallContainer, stickyFromAlign := alignedContainer(small.sig, diff)

	resultExp32 := to32(effectiveExp(big))
	var sumContainer bitvec.Vector
	var resultSign int
	sticky := stickyFromAlign

	if big.sign == small.sign {
		sumResult := alu.Add(bigContainer, smallContainer)
		sumContainer = sumResult.Value
		resultSign = big.sign
		if sumResult.Flags.C {
			lostBit := sumContainer.LSB()
			if lostBit != 0 {
				sticky = true
			}
			sumContainer = shifter.Shift(sumContainer, shamt(1), shifter.OpSRL)
			sumContainer[0] = 1
			resultExp32 = alu.Add(resultExp32, one32()).Value
		}
	} else {
		a, b := bigContainer, smallContainer
		resultSign = big.sign
		if compareMagnitude(a, b) < 0 {
			a, b = b, a
			resultSign = small.sign
		}
		sumContainer = alu.Sub(a, b).Value
	}

	if sumContainer.IsZero() {
		return Result{signedZero(0), flags}
	}

	lz := leadingZeros(sumContainer.Slice(0, sigWidth))
	if lz > 0 {
		curExp := expAsHostInt(resultExp32)
		maxShift := curExp - 1
		if maxShift < 0 {
			maxShift = 0
		}
		shift := lz
		underflow := false
		if shift > maxShift {
			shift = maxShift
			underflow = true
		}
		if shift > 0 {
			sumContainer = shifter.Shift(sumContainer, shamt(shift), shifter.OpSLL)
			resultExp32 = alu.Sub(resultExp32, hostIntToExp32(shift)).Value
		}
		if underflow {
			flags.Underflow = true
		}
	}

	return finishFinite(resultSign, resultExp32, sumContainer, sticky, flags)
}

func one32() bitvec.Vector {
	v := bitvec.New(32)
	v[31] = 1
	return v
}

func hostIntToExp32(n int) bitvec.Vector {
	return to32(hostIntToExp8(n))
}

// finishFinite performs rounding (ties-to-even), exponent-range detection,
// and repacking shared by the add/sub and multiply pipelines. container's
// top sigWidth bits are the (already normalized-as-far-as-possible)
// significand; the remaining low bits are guard/round material, with
// extraSticky carrying any precision already known lost upstream.
func finishFinite(sign int, exp32 bitvec.Vector, container bitvec.Vector, extraSticky bool, flags Flags) Result {
	sig := container.Slice(0, sigWidth)
	rest := container.Slice(sigWidth, container.Len())

	// halfBit is the discarded bit worth exactly half an ULP; stickyRest is
	// whether anything beyond it (plus whatever alignment/normalization
	// already lost) was nonzero. Together they drive round-to-nearest-even.
	halfBit := 0
	if rest.Len() > 0 {
		halfBit = rest[0]
	}
	stickyRest := extraSticky
	if rest.Len() > 1 && orReduce(rest.Slice(1, rest.Len())) {
		stickyRest = true
	}
	if halfBit == 1 || stickyRest {
		flags.Inexact = true
	}

	roundUp := halfBit == 1 && (stickyRest || sig.LSB() == 1)
	if roundUp {
		incremented := alu.Add(bitvec.ZeroExtend(sig, 32), one32()).Value
		sig = incremented.Slice(32-sigWidth, 32)
		if sig.IsZero() {
			// The significand field carried out of its top bit: the value
			// is now an exact power of two one exponent higher.
			sig[0] = 1
			exp32 = alu.Add(exp32, one32()).Value
		}
	}

	expVal := expAsHostInt(exp32)

	if expVal >= 255 {
		flags.Overflow = true
		flags.Inexact = true
		return Result{infinity(sign), flags}
	}

	if expVal <= 0 || sig[0] == 0 {
		// Result belongs to the subnormal range or underflows to zero. The
		// normalize step stops at exponent 1, so a significand whose hidden
		// bit is still 0 is repacked as a subnormal, with exponent field 0.
		flags.Underflow = true
		return Result{repack(sign, bitvec.New(expWidth), sig.Slice(1, sigWidth)), flags}
	}

	expBits := hostIntToExp8(expVal)
	return Result{repack(sign, expBits, sig.Slice(1, sigWidth)), flags}
}

// Mul computes a * b to IEEE-754 single precision.
func Mul(a, b bitvec.Vector, rm RoundingMode) Result {
	ua, ub := unpackFields(a), unpackFields(b)
	var flags Flags
	resultSign := ua.sign ^ ub.sign

	if ua.cls == classNaN || ub.cls == classNaN {
		flags.Invalid = true
		return Result{quietNaN(), flags}
	}
	if (ua.cls == classZero && ub.cls == classInfinity) || (ua.cls == classInfinity && ub.cls == classZero) {
		flags.Invalid = true
		return Result{quietNaN(), flags}
	}
	if ua.cls == classInfinity || ub.cls == classInfinity {
		return Result{infinity(resultSign), flags}
	}
	if ua.cls == classZero || ub.cls == classZero {
		return Result{signedZero(resultSign), flags}
	}

	sigA32 := bitvec.ZeroExtend(ua.sig, 32)
	sigB32 := bitvec.ZeroExtend(ub.sig, 32)
	prod := mdu.Multiply(sigA32, sigB32, mdu.MULHU)
	// mdu.Multiply treats both words as full 32-bit operands; our
	// significands occupy only their low 24 bits, so the 48-bit true
	// product occupies the low 48 bits of the 64-bit (Hi:Lo) result.
	container := bitvec.Concat(prod.Hi.Slice(16, 32), prod.Lo) // 48 significant bits

	expSum := alu.Add(to32(effectiveExp(ua)), to32(effectiveExp(ub))).Value
	expBiased := alu.Sub(expSum, hostIntToExp32(bias)).Value

	// container holds the raw 48-bit product of two 24-bit hidden-bit
	// significands, one bit wider than either operand: left-shifting it by
	// its leading-zero count brings the product's MSB into container[0],
	// and that shift is exactly what expBiased must be corrected by (plus
	// the one extra bit the wider product is worth).
	expBiased = alu.Add(expBiased, one32()).Value
	totalLZ := leadingZeros(container)
	curExp := expAsHostInt(expBiased)
	maxShift := curExp - 1
	if maxShift < 0 {
		maxShift = 0
	}
	shift := totalLZ
	underflow := false
	if shift > maxShift {
		shift = maxShift
		underflow = true
	}
	if shift > 0 {
		container = shiftLeftN(container, shift)
		expBiased = alu.Sub(expBiased, hostIntToExp32(shift)).Value
	}
	if underflow {
		flags.Underflow = true
	}

	if container.IsZero() {
		return Result{signedZero(resultSign), flags}
	}

	return finishFinite(resultSign, expBiased, container, false, flags)
}
