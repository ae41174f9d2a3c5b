package engine_test

import (
	"fmt"
	"math/big"

	"github.com/qaclearn/shorpost/pkg/engine"
)

// Example_pipeline walks one reading through each stage for N=15, a=7 and an
// 8-qubit phase register.
func Example_pipeline() {
	n, a := big.NewInt(15), big.NewInt(7)
	outcome := engine.NewOutcome(192, 1024)

	phase := engine.EstimatePhase(outcome, 8)
	fmt.Println("phase:", phase, "=", phase.Rat())

	convergents, _ := engine.ContinuedFractionExpand(phase, big.NewInt(14))
	for _, c := range convergents {
		fmt.Println("convergent:", c, "valid order:", engine.ValidateOrder(c.Denominator, a, n))
	}

	factors, _ := engine.RecoverFactors(big.NewInt(4), a, n)
	fmt.Println("factors:", factors.Pair)

	// Output:
	// phase: 192/2^8 = 3/4
	// convergent: 0/1 valid order: false
	// convergent: 1/1 valid order: false
	// convergent: 3/4 valid order: true
	// factors: 3 x 5
}

// Example_run shows a batch where the most frequent readings are uninformative.
func Example_run() {
	outcomes := []engine.MeasurementOutcome{
		engine.NewOutcome(0, 260),
		engine.NewOutcome(128, 250),
		engine.NewOutcome(64, 240),
		engine.NewOutcome(192, 250),
	}

	report, err := engine.Run(outcomes, 8, big.NewInt(7), big.NewInt(15))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(report.Status, report.Factors, "after", report.Tried, "outcomes")
	for _, at := range report.Attempts {
		fmt.Printf("  %s -> %q\n", at.Phase, at.Reason)
	}

	// Output:
	// factored 3 x 5 after 3 outcomes
	//   0/2^8 -> "no_valid_convergent"
	//   128/2^8 -> "no_valid_convergent"
	//   192/2^8 -> ""
}
