package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	compareCfg        simConfig
	compareSchedulers string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run the same cluster and workload through several scheduling policies",
	Long:  "Drives an identical (cluster, workload, heatmap) input through each named scheduler and reports makespan side by side — spec.md §1's \"multiple policies can be driven against identical workloads to compare them.\"",
	Run: func(cmd *cobra.Command, args []string) {
		names := strings.Split(compareSchedulers, ",")
		if len(names) == 0 {
			logrus.Fatalf("--schedulers must name at least one policy")
		}

		fmt.Printf("%-20s %12s\n", "scheduler", "makespan")
		for _, name := range names {
			name = strings.TrimSpace(name)
			cfg := compareCfg
			cfg.Scheduler = name

			e, err := runOne(cfg)
			if err != nil {
				logrus.Errorf("%s: %v", name, err)
				fmt.Printf("%-20s %12s\n", name, "FAILED")
				continue
			}
			fmt.Printf("%-20s %12.2f\n", e.Scheduler.Name(), e.Cluster.Makespan)
		}
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareCfg.ClusterPath, "cluster", "", "Path to cluster config YAML (required)")
	compareCmd.Flags().StringVar(&compareCfg.WorkloadPath, "workload", "", "Path to workload file (required)")
	compareCmd.Flags().StringVar(&compareCfg.WorkloadFormat, "workload-format", "swf", "Workload file format: swf or csv")
	compareCmd.Flags().StringVar(&compareCfg.HeatmapPath, "heatmap", "", "Path to interference heatmap JSON (optional)")
	compareCmd.Flags().StringVar(&compareSchedulers, "schedulers", "fifo,easy,conservative", "Comma-separated scheduler names to compare")

	_ = compareCmd.MarkFlagRequired("cluster")
	_ = compareCmd.MarkFlagRequired("workload")
}
