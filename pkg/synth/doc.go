// Package synth produces synthetic measurement histograms for order finding.
//
// It does not simulate a circuit. For a small modulus the order r of a is
// found classically and the ideal phase-register distribution
//
//	P(y) = (1/r) Σ_s sin²(πQδ) / (Q² sin²(πδ)),  δ = y/Q − s/r,  Q = 2^t
//
// is evaluated directly. Sampling from it gives histograms shaped like the
// counts an ideal device would return, which is enough to exercise the
// post-processing pipeline end to end.
package synth
