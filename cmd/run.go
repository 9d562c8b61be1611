package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCfg simConfig

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single simulation configuration to completion",
	Run: func(cmd *cobra.Command, args []string) {
		logrus.Infof("running scheduler=%s cluster=%s workload=%s", runCfg.Scheduler, runCfg.ClusterPath, runCfg.WorkloadPath)

		e, err := runOne(runCfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		fmt.Printf("sim_id:        %s\n", e.SimID)
		fmt.Printf("scheduler:     %s\n", e.Scheduler.Name())
		fmt.Printf("makespan:      %.2f\n", e.Cluster.Makespan)
		fmt.Printf("jobs:          %d\n", len(e.Logger.Jobs))
		fmt.Printf("total_cores:   %d\n", e.Cluster.TotalCores)
	},
}

func init() {
	runCmd.Flags().StringVar(&runCfg.ClusterPath, "cluster", "", "Path to cluster config YAML (required)")
	runCmd.Flags().StringVar(&runCfg.WorkloadPath, "workload", "", "Path to workload file (required)")
	runCmd.Flags().StringVar(&runCfg.WorkloadFormat, "workload-format", "swf", "Workload file format: swf or csv")
	runCmd.Flags().StringVar(&runCfg.HeatmapPath, "heatmap", "", "Path to interference heatmap JSON (optional)")
	runCmd.Flags().StringVar(&runCfg.Scheduler, "scheduler", "fifo", "Scheduling policy: fifo, easy, conservative, ranks-random, ranks-filler, ranks-bester, ranks-jungle, rules")

	_ = runCmd.MarkFlagRequired("cluster")
	_ = runCmd.MarkFlagRequired("workload")
}
