/*
NAME
  reedsolomon.go

DESCRIPTION
  reedsolomon.go implements the RS(120,110) code over GF(2^8) used to
  protect DAB+ super-frames (EN 300 401 / ETSI TS 102 563), correcting up
  to 5 byte errors per 120-byte codeword (10 parity bytes). Decoding uses
  the Peterson-Gorenstein-Zierler method: syndromes, a linear solve for the
  error locator polynomial tried at decreasing error counts, a Chien-style
  root search, and a second linear solve for the error magnitudes.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package fec

import "fmt"

const (
	// RSN is the RS(120,110) codeword length in bytes.
	RSN = 120
	// RSK is the number of message (payload) bytes.
	RSK = 110
	// RSNsym is the number of parity bytes (n-k), correcting up to
	// RSNsym/2 byte errors.
	RSNsym = RSN - RSK
	// RSMaxErrors is the number of byte errors RS(120,110) can correct.
	RSMaxErrors = RSNsym / 2
)

var rsGen = rsGenPoly(RSNsym)

// rsGenPoly builds the RS generator polynomial, high-degree-first with a
// monic leading coefficient, with roots alpha^1 .. alpha^nsym (fcr=1).
func rsGenPoly(nsym int) []byte {
	g := []byte{1}
	for i := 1; i <= nsym; i++ {
		g = gfPolyMul(g, []byte{1, gfPow(2, i)})
	}
	return g
}

// RSEncode computes the RSNsym parity bytes for a RSK-byte message and
// returns the RSN-byte systematic codeword (message followed by parity,
// both high-degree first: codeword[0] is the most significant message
// byte, codeword[RSK:] the parity).
func RSEncode(data []byte) ([]byte, error) {
	if len(data) != RSK {
		return nil, fmt.Errorf("fec: RSEncode expects %d data bytes, got %d", RSK, len(data))
	}
	codeword := make([]byte, RSN)
	copy(codeword, data)
	for i := 0; i < RSK; i++ {
		coef := codeword[i]
		if coef == 0 {
			continue
		}
		for j, g := range rsGen {
			codeword[i+j] ^= gfMul(g, coef)
		}
	}
	copy(codeword, data)
	return codeword, nil
}

// RSDecode corrects up to RSMaxErrors byte errors in a RSN-byte codeword
// and returns the RSK-byte message. numErrors reports how many byte
// corrections were applied. An error is returned if the codeword cannot
// be corrected (too many errors).
func RSDecode(codeword []byte) (data []byte, numErrors int, err error) {
	if len(codeword) != RSN {
		return nil, 0, fmt.Errorf("fec: RSDecode expects %d bytes, got %d", RSN, len(codeword))
	}
	cw := append([]byte{}, codeword...)

	syn := make([]byte, RSNsym)
	allZero := true
	for j := 0; j < RSNsym; j++ {
		syn[j] = evalHF(cw, gfPow(2, j+1))
		if syn[j] != 0 {
			allZero = false
		}
	}
	if allZero {
		return cw[:RSK], 0, nil
	}

	for v := RSMaxErrors; v >= 1; v-- {
		lambda, ok := solveErrorLocator(syn, v)
		if !ok {
			continue
		}

		// lambda holds Lambda_v..Lambda_1; the reversed locator is
		// 1, Lambda_1, .., Lambda_v (high-degree-first).
		lCoeffs := make([]byte, v+1)
		lCoeffs[0] = 1
		for k := 0; k < v; k++ {
			lCoeffs[k+1] = lambda[v-1-k]
		}
		errExp := findErrorExponents(lCoeffs, v)
		if errExp == nil {
			continue
		}

		mags, ok := solveErrorMagnitudes(syn, errExp)
		if !ok {
			continue
		}

		for l, e := range errExp {
			idx := RSN - 1 - e
			cw[idx] ^= mags[l]
		}

		// Verify: recompute syndromes; a genuine correction drives them
		// all to zero.
		ok = true
		for j := 0; j < RSNsym; j++ {
			if evalHF(cw, gfPow(2, j+1)) != 0 {
				ok = false
				break
			}
		}
		if ok {
			return cw[:RSK], v, nil
		}
	}

	return nil, 0, fmt.Errorf("fec: RS(120,110) uncorrectable codeword")
}

// evalHF evaluates a high-degree-first polynomial (p[0] is the coefficient
// of the highest-degree term) at x via Horner's method.
func evalHF(p []byte, x byte) byte {
	var y byte
	for _, c := range p {
		y = gfMul(y, x) ^ c
	}
	return y
}

// solveErrorLocator solves the v x v syndrome linear system for the error
// locator coefficients Lambda_1..Lambda_v, returning ok=false if the
// system is singular (meaning v is not the actual error count).
func solveErrorLocator(syn []byte, v int) ([]byte, bool) {
	a := make([][]byte, v)
	b := make([]byte, v)
	for r := 0; r < v; r++ {
		a[r] = make([]byte, v)
		for c := 0; c < v; c++ {
			a[r][c] = syn[r+c]
		}
		b[r] = syn[v+r]
	}
	return gaussSolve(a, b)
}

// findErrorExponents searches all RSN candidate exponents for roots of the
// (reversed) error locator polynomial, returning nil if it does not find
// exactly v distinct roots.
func findErrorExponents(lCoeffs []byte, v int) []int {
	var exps []int
	for e := 0; e < RSN; e++ {
		if evalHF(lCoeffs, gfPow(2, e)) == 0 {
			exps = append(exps, e)
			if len(exps) > v {
				return nil
			}
		}
	}
	if len(exps) != v {
		return nil
	}
	return exps
}

// solveErrorMagnitudes solves the Vandermonde-like system S_j =
// sum_l e_l * X_l^j (j=1..v) for the error magnitudes e_l, where X_l =
// alpha^(errExp[l]).
func solveErrorMagnitudes(syn []byte, errExp []int) ([]byte, bool) {
	v := len(errExp)
	a := make([][]byte, v)
	b := make([]byte, v)
	for r := 0; r < v; r++ {
		a[r] = make([]byte, v)
		for c := 0; c < v; c++ {
			x := gfPow(2, errExp[c])
			a[r][c] = gfPow(x, r+1)
		}
		b[r] = syn[r]
	}
	return gaussSolve(a, b)
}

// gaussSolve solves a*x=b over GF(256) using Gaussian elimination with
// partial pivoting, returning ok=false if a is singular.
func gaussSolve(a [][]byte, b []byte) ([]byte, bool) {
	n := len(b)
	m := make([][]byte, n)
	for i := range m {
		m[i] = append(append([]byte{}, a[i]...), b[i])
	}

	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if m[row][col] != 0 {
				pivot = row
				break
			}
		}
		if pivot == -1 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]

		inv := gfInv(m[col][col])
		for c := col; c <= n; c++ {
			m[col][c] = gfMul(m[col][c], inv)
		}

		for row := 0; row < n; row++ {
			if row == col || m[row][col] == 0 {
				continue
			}
			factor := m[row][col]
			for c := col; c <= n; c++ {
				m[row][c] ^= gfMul(factor, m[col][c])
			}
		}
	}

	x := make([]byte, n)
	for i := range x {
		x[i] = m[i][n]
	}
	return x, true
}
