// cmd/bernoulli/main.go: solve one Bernoulli equation from the command line.
//
// Usage:
//
//	bernoulli -p "-1/x" -q "-x^2" -n 2 -x0 1 -y0 1
//	bernoulli -p 1 -q x -n 3 -json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/qiniu/x/log"

	bernoulli "github.com/njchilds90/gobernoulli"
	"github.com/njchilds90/gobernoulli/internal/trace"
)

func main() {
	var in bernoulli.Input
	flag.StringVar(&in.P, "p", "", "coefficient p(x)")
	flag.StringVar(&in.Q, "q", "", "coefficient q(x)")
	flag.StringVar(&in.N, "n", "", "exponent n")
	flag.StringVar(&in.X0, "x0", "", "initial point x0 (optional)")
	flag.StringVar(&in.Y0, "y0", "", "initial value y0 (optional)")
	asJSON := flag.Bool("json", false, "print the result as JSON")
	digits := flag.Int("digits", bernoulli.DefaultRoundDigits, "significant figures shown for C1")
	timeout := flag.Duration("timeout", 5*time.Second, "solve deadline, 0 for none")
	verbose := flag.Bool("v", false, "log pipeline steps")
	flag.Parse()

	if *verbose {
		log.SetOutputLevel(log.Ldebug)
	} else {
		log.SetOutputLevel(log.Lwarn)
	}

	ctx := trace.NewContext(context.Background(), trace.NewTraceID(trace.CLIPrefix))
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	res := bernoulli.New(bernoulli.WithRoundDigits(*digits)).Solve(ctx, in)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatalf("encode result: %v", err)
		}
	} else {
		for _, step := range res.Steps {
			fmt.Printf("== %s ==\n", step.Header())
			for _, line := range bernoulli.Text(step) {
				fmt.Printf("  %s\n", line)
			}
		}
	}

	if res.Failed() {
		os.Exit(1)
	}
}
