// Command airvm runs a layered-IR document (§3's JSON format) through
// the AIR/CIR/EIR/PIR/LIR evaluator stack.
package main

import (
	"fmt"
	"os"

	"github.com/go-air/airvm/cmd/airvm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
