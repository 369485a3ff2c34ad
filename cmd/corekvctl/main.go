// Copyright 2024 Atomstate Technologies Private Limited
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command corekvctl is a thin read-only admin tool exposing the info
// package's text formatters (spec.md §1's "admin info-command text
// formatting... covered minimally because it is the observable surface").
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/atomstate/corekv/config"
	"github.com/atomstate/corekv/info"
	"github.com/atomstate/corekv/namespace"
	"github.com/atomstate/corekv/partition"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "corekvctl:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: corekvctl <master-map|replica-map|partition-info|replica-stats> -config <path>")
	}
	subcommand := args[0]

	fs := flag.NewFlagSet(subcommand, flag.ContinueOnError)
	configPath := fs.String("config", "", "path to the namespace YAML config")
	selfNode := fs.Uint64("self", 0, "this node's id")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *configPath == "" {
		return fmt.Errorf("-config is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := zap.NewNop()
	ns := namespace.New(cfg, partition.NodeID(*selfNode), logger)
	if err := ns.InitAll(false); err != nil {
		return fmt.Errorf("initializing namespace: %w", err)
	}

	view := ns.View()
	switch subcommand {
	case "master-map":
		fmt.Fprintln(out, info.MasterMapText([]info.Namespace{view}))
	case "replica-map":
		fmt.Fprintln(out, info.AllReplicasMapText([]info.Namespace{view}))
	case "partition-info":
		fmt.Fprintln(out, info.PartitionInfoText([]info.Namespace{view}))
	case "replica-stats":
		stats := info.GetReplicaStats(view)
		fmt.Fprintf(out, "%+v\n", stats)
	default:
		return fmt.Errorf("unknown subcommand %q", subcommand)
	}
	return nil
}
