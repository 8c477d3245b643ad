// Command netpath-trace prints the path between this host and a target,
// and grades a throughput measurement against it when one is given.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/lcalzada-xor/netpath/internal/adapters/console"
	"github.com/lcalzada-xor/netpath/internal/app"
	"github.com/lcalzada-xor/netpath/internal/config"
	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/telemetry"
)

type measurement struct {
	req    domain.AnalyzeRequest
	asJSON bool
}

func (m *measurement) register(fs *flag.FlagSet) {
	fs.Float64Var(&m.req.FromMbps, "from", 0, "Measured Mbps from the target to the server")
	fs.Float64Var(&m.req.ToMbps, "to", 0, "Measured Mbps from the server to the target")
	fs.Int64Var(&m.req.Retransmits.FromRetransmits, "from-retrans", 0, "TCP retransmits, target to server")
	fs.Int64Var(&m.req.Retransmits.ToRetransmits, "to-retrans", 0, "TCP retransmits, server to target")
	fs.Int64Var(&m.req.Retransmits.FromBytes, "from-bytes", 0, "Bytes transferred, target to server")
	fs.Int64Var(&m.req.Retransmits.ToBytes, "to-bytes", 0, "Bytes transferred, server to target")
	fs.BoolVar(&m.asJSON, "json", false, "Print JSON instead of tables")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var m measurement
	cfg, err := config.Load("netpath-trace", args, m.register)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if len(cfg.Args) != 1 {
		fmt.Fprintln(stderr, "usage: netpath-trace [flags] <target>")
		return 2
	}
	m.req.Target = cfg.Args[0]

	logger := telemetry.NewLogger(stderr, cfg.Log.Level, "text")
	telemetry.InitMetrics()

	inventory, err := app.NewInventory(cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	svc, _, err := app.NewPathService(cfg, inventory, nil, logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	r := console.NewRenderer()
	graded := m.req.FromMbps > 0 || m.req.ToMbps > 0

	var result domain.PathAnalysisResult
	if graded {
		rec, err := svc.Analyze(ctx, m.req)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		result = rec.Result
	} else {
		result.Path = svc.ComputePath(ctx, m.req.Target)
	}

	if m.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	} else {
		if pos, err := svc.ServerPosition(ctx); err == nil {
			fmt.Fprintln(stdout, r.RenderServer(pos))
		}
		fmt.Fprintln(stdout, r.RenderPath(result.Path))
		if graded {
			fmt.Fprint(stdout, r.RenderAnalysis(result))
		}
	}

	if result.Path == nil || !result.Path.IsValid {
		return 1
	}
	return 0
}
