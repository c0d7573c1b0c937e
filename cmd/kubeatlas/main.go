// Copyright (C) Kubeatlas Authors.
// SPDX-License-Identifier: MIT

// Command kubeatlas enumerates the workloads of a Kubernetes cluster and
// writes one Mermaid diagram file per workload describing the Pods it owns
// and the Services selecting them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

var (
	// BuildTag is set during build
	BuildTag = "dev"
	// BuildDate is set during build
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "kubeatlas",
	Short: "Draw ownership diagrams for cluster workloads",
	Long: `kubeatlas - draw ownership diagrams for cluster workloads

kubeatlas lists Deployments, StatefulSets, and DaemonSets across all
namespaces, resolves the Pods each one owns (through ReplicaSets for
Deployments) and the Services selecting those Pods, and writes one
Mermaid-flowchart Markdown file per workload into a directory named
after the active cluster context.

Fetch failures are logged and treated as empty results; the run always
visits every namespace and exits 0. A machine-readable atlas-report.yaml
in the output directory records which fetches failed.

Environment Variables:
  KUBECONFIG              Path to kubeconfig file (default: ~/.kube/config)
`,
	RunE:          runGenerate,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&kubeconfigPath, "kubeconfig", "", "Path to kubeconfig file (default: in-cluster, then $KUBECONFIG, then ~/.kube/config)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kubeatlas version %s (built %s)\n", BuildTag, BuildDate)
		},
	})
}

// buildConfig builds a Kubernetes client config
func buildConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig != "" {
		return clientcmd.BuildConfigFromFlags("", kubeconfig)
	}

	// Try in-cluster config first
	cfg, err := rest.InClusterConfig()
	if err == nil {
		return cfg, nil
	}

	// Fall back to kubeconfig
	path := os.Getenv("KUBECONFIG")
	if path == "" {
		home, _ := os.UserHomeDir()
		path = home + "/.kube/config"
	}

	return clientcmd.BuildConfigFromFlags("", path)
}

// getCurrentContext returns the current kubectl context name
func getCurrentContext(kubeconfig string) string {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		loadingRules.ExplicitPath = kubeconfig
	}
	configOverrides := &clientcmd.ConfigOverrides{}
	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)

	rawConfig, err := kubeConfig.RawConfig()
	if err != nil {
		return "unknown"
	}

	return rawConfig.CurrentContext
}
