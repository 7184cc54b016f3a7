package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tkordic/anamnesis/internal/model"
	"github.com/tkordic/anamnesis/internal/probe"
	"github.com/tkordic/anamnesis/internal/registry"
	"github.com/tkordic/anamnesis/internal/worker"
)

// registryCmd groups registry diagnostics
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the reference-case registry",
	Long: `Operator diagnostics for the reference-case registry:
- info:  snapshot statistics (source, case count, diagnoses)
- probe: run the health probe and print per-node status`,
}

var registryInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show snapshot statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if snapshotPath != "" {
			cfg.Registry.SnapshotPath = snapshotPath
		}

		reg, err := registry.Load(cfg.Registry)
		if err != nil {
			return err
		}

		fmt.Printf("Source:    %s\n", reg.Source())
		fmt.Printf("Cases:     %d\n", reg.Len())
		diagnoses := reg.Diagnoses()
		fmt.Printf("Diagnoses: %d distinct\n", len(diagnoses))
		for _, d := range diagnoses {
			fmt.Printf("  - %s\n", d)
		}
		return nil
	},
}

var registryProbeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run the registry health probe",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if mode != "" {
			cfg.Mode = model.Mode(mode)
		}
		setupLogging(cfg)

		var healthProbe probe.HealthProbe
		if cfg.Mode == model.ModeLive {
			limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
			healthProbe = probe.NewLiveProbe(cfg.Probe, cfg.HTTP, cfg.Concurrency.ProbeWorkers, limiter)
		} else {
			healthProbe = probe.NewDemoProbe(cfg.Probe.Nodes)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		statuses, err := healthProbe.Check(ctx)
		for _, status := range statuses {
			marker := "✓"
			if status.Status == model.NodeOffline {
				marker = "✗"
			}
			fmt.Printf("%s %-20s %-10s %4dms\n", marker, status.NodeName, status.Status, status.LatencyMs)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nRegistry unavailable: %v\n", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registryCmd)
	registryCmd.AddCommand(registryInfoCmd)
	registryCmd.AddCommand(registryProbeCmd)

	registryInfoCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "registry snapshot YAML (default: bundled demo snapshot)")
	registryProbeCmd.Flags().StringVar(&mode, "mode", "", "probe mode (demo, live); default from config")
}
