package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/go-air/airvm/internal/builtins"
	"github.com/go-air/airvm/internal/env"
	"github.com/go-air/airvm/internal/pir"
	"github.com/go-air/airvm/internal/registry"
	"github.com/go-air/airvm/internal/scheduler"
	"github.com/go-air/airvm/internal/value"
	"github.com/go-air/airvm/pkg/document"
)

var (
	capsOverride []string
	stepBudget   int
	iterBudget   int
	metricsAddr  string
	format       string
	sets         []string
	strategyName string
)

var runCmd = &cobra.Command{
	Use:   "run [document]",
	Short: "Evaluate an IR document",
	Long: `Parse and evaluate a JSON (or YAML, with --format yaml) IR
document through the AIR/CIR/EIR/PIR/LIR evaluator stack, printing its
result value to stdout.

Examples:
  # Run a document, patching its first node's literal before evaluating.
  airvm run doc.json --set nodes.0.expr.value=500

  # Run a YAML-authored document, exposing Prometheus metrics.
  airvm run doc.yaml --format yaml --metrics-addr :9090`,
	Args: cobra.ExactArgs(1),
	RunE: runDocument,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVar(&capsOverride, "capabilities", nil, "override the document's capability tags (comma-separated)")
	runCmd.Flags().IntVar(&stepBudget, "step-budget", 0, "override the scheduler's global step budget (0 keeps the default)")
	runCmd.Flags().IntVar(&iterBudget, "iter-budget", 0, "override EIR's per-loop iteration budget (0 keeps the default)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090); empty disables metrics")
	runCmd.Flags().StringVar(&format, "format", "json", "input document format: json or yaml")
	runCmd.Flags().StringArrayVar(&sets, "set", nil, "patch the document before evaluating, as path=value (sjson path syntax, may repeat)")
	runCmd.Flags().StringVar(&strategyName, "strategy", "default", "scheduler strategy: default, sequential, parallel, breadthFirst, depthFirst")
}

func runDocument(c *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("airvm: reading %s: %w", args[0], err)
	}

	switch format {
	case "json", "":
	case "yaml":
		raw, err = yamlToJSON(raw)
		if err != nil {
			return fmt.Errorf("airvm: decoding YAML: %w", err)
		}
	default:
		return fmt.Errorf("airvm: unknown --format %q (want json or yaml)", format)
	}

	for _, patch := range sets {
		raw, err = applySet(raw, patch)
		if err != nil {
			return fmt.Errorf("airvm: applying --set %q: %w", patch, err)
		}
	}

	doc, err := document.Parse(raw)
	if err != nil {
		return fmt.Errorf("airvm: %w", err)
	}
	if len(capsOverride) > 0 {
		doc.Capabilities = capsOverride
	}

	node, ok := doc.Node(doc.Result)
	if !ok {
		return fmt.Errorf("airvm: result node %q not found", doc.Result)
	}

	strategy, err := resolveStrategy(strategyName)
	if err != nil {
		return err
	}

	ops := registry.NewOperators()
	effs := registry.NewEffects()
	builtins.RegisterCore(ops)
	verbose, _ := c.Flags().GetBool("verbose")
	builtins.RegisterEffects(effs, os.Stdout, os.Stdin)

	ev := pir.NewWithStrategy(doc, env.NewDefinitions(doc.AirDefs), ops, effs, env.NewRefCellStore(), strategy)
	if stepBudget > 0 {
		ev.Scheduler.SetStepBudget(stepBudget)
	}
	if iterBudget > 0 {
		ev.IterBudget = iterBudget
	}

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		ev.EnableMetrics(scheduler.NewMetrics(reg))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			fmt.Fprintf(os.Stderr, "airvm: serving metrics on %s/metrics\n", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				fmt.Fprintf(os.Stderr, "airvm: metrics server: %v\n", err)
			}
		}()
	}

	var result value.Value
	if node.IsBlock {
		result, err = ev.RunTop(node, env.New())
	} else {
		result, err = ev.EvalTop(node.Expr, env.New())
	}
	if err != nil {
		return fmt.Errorf("airvm: evaluation failed: %w", err)
	}

	fmt.Println(result.String())

	if verbose {
		for _, e := range ev.EffectLog {
			fmt.Fprintf(os.Stderr, "effect %s(%v) = %s\n", e.Name, e.Args, e.Result.String())
		}
	}
	return nil
}

// yamlToJSON decodes data as YAML into a generic value and re-encodes
// it as JSON, the format pkg/document.Parse actually understands —
// goccy/go-yaml already maps YAML scalars/mappings/sequences onto the
// same Go types encoding/json would produce from equivalent JSON.
func yamlToJSON(data []byte) ([]byte, error) {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// applySet patches raw at an sjson path ("a.b.0.c") with value, typed
// by sniffing value as JSON first (so --set stepBudget=500 or --set
// capabilities.0=async writes a number/bool/array rather than the
// string "500") and falling back to a plain string.
func applySet(raw []byte, patch string) ([]byte, error) {
	path, val, ok := strings.Cut(patch, "=")
	if !ok {
		return nil, fmt.Errorf("expected path=value, got %q", patch)
	}
	if gjson.Valid(val) {
		return sjson.SetRawBytes(raw, path, []byte(val))
	}
	return sjson.SetBytes(raw, path, val)
}

func resolveStrategy(name string) (scheduler.Strategy, error) {
	switch name {
	case "", "default":
		return scheduler.Default{}, nil
	case "sequential":
		return &scheduler.DeterministicSequential{}, nil
	case "parallel":
		return &scheduler.DeterministicParallel{}, nil
	case "breadthFirst":
		return &scheduler.DeterministicBreadthFirst{}, nil
	case "depthFirst":
		return &scheduler.DeterministicDepthFirst{}, nil
	default:
		return nil, fmt.Errorf("airvm: unknown --strategy %q", name)
	}
}
