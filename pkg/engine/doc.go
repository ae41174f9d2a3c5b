// Package engine implements the classical half of quantum order finding.
//
// # Overview
//
// A phase-estimation register of t qubits, measured after the modular
// exponentiation circuit for base a and modulus N, yields integers y whose
// phases y/2^t approximate s/r, where r is the multiplicative order of a
// modulo N. The engine turns such readings into factors of N:
//
//  1. Estimate - y/2^t as an exact fraction (EstimatePhase)
//  2. Expand - continued-fraction convergents p/q with q < N (ContinuedFractionExpand)
//  3. Validate - a^q ≡ 1 (mod N) by modular exponentiation (ValidateOrder)
//  4. Factor - gcd(a^(r/2) - 1, N) for even r with a^(r/2) ≢ -1 (RecoverFactors)
//
// Run drives the pipeline over a batch of outcomes, most frequent first, and
// stops at the first non-trivial factor pair.
//
// # Failures
//
// Invalid parameters (N < 2, a < 1, gcd(a, N) != 1, t < 1, or an outcome that
// does not fit in the register) are reported as configuration errors before
// any outcome is processed. Everything else is expected noise: an outcome
// whose convergents do not validate, an odd order, the -1 case, or an
// expansion that hits its step cap is recorded as a Reason on the Attempt and
// the run moves on. Those never surface as errors.
//
// All arithmetic uses math/big. Values passed in are never modified and every
// call builds its own state, so Run is safe to call concurrently.
package engine
