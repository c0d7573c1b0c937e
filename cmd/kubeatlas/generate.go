// Copyright (C) Kubeatlas Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kubeatlas/kubeatlas/internal/clustername"
	"github.com/kubeatlas/kubeatlas/pkg/cluster"
	"github.com/kubeatlas/kubeatlas/pkg/graph"
	"github.com/kubeatlas/kubeatlas/pkg/mermaid"
)

var kubeconfigPath string

// lister is the subset of cluster.Client the driver needs; tests substitute
// a client backed by a fake clientset.
type lister interface {
	Namespaces(ctx context.Context) ([]string, error)
	Workloads(ctx context.Context, namespace string) ([]graph.Workload, error)
	Pods(ctx context.Context, namespace, labelSelector string) ([]graph.Pod, error)
	Services(ctx context.Context, namespace, labelSelector string) ([]graph.Service, error)
	ReplicaSets(ctx context.Context, namespace string) ([]graph.ReplicaSet, error)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := buildConfig(kubeconfigPath)
	if err != nil {
		return fmt.Errorf("build kubernetes config: %w", err)
	}

	client, err := cluster.New(cfg)
	if err != nil {
		return err
	}

	name := clustername.FromContext(getCurrentContext(kubeconfigPath))
	outDir := "output_" + name

	report := generate(ctx, client, outDir, name)

	if err := writeReport(outDir, report); err != nil {
		logrus.Errorf("Error writing run report: %v", err)
	}
	printSummary(os.Stdout, report, outDir)

	// Per-namespace and per-workload failures never fail the run.
	return nil
}

// generate walks every namespace and workload, resolves each ownership
// graph, and writes one diagram file per workload. Every fetch failure is
// logged, recorded in the report, and degraded to an empty result.
func generate(ctx context.Context, client lister, outDir, clusterName string) *RunReport {
	report := newRunReport(clusterName)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		logrus.Errorf("Error creating output directory %s: %v", outDir, err)
		report.recordWriteFailure(outDir, err)
	}

	namespaces, err := client.Namespaces(ctx)
	if err != nil {
		logrus.Errorf("Error fetching namespaces: %v", err)
		report.recordFetchFailure("", "namespaces", err)
		namespaces = nil
	}

	for _, namespace := range namespaces {
		logrus.Infof("Processing namespace: %s", namespace)
		nsReport := report.namespace(namespace)

		workloads, err := client.Workloads(ctx, namespace)
		if err != nil {
			logrus.Errorf("Error fetching workloads for namespace %s: %v", namespace, err)
			report.recordFetchFailure(namespace, "workloads", err)
			continue
		}
		nsReport.Workloads = len(workloads)

		for _, workload := range workloads {
			resolved := resolveWorkload(ctx, client, workload, report)

			content := mermaid.Render(workload, resolved)
			filename := fmt.Sprintf("%s_%s.md", namespace, workload.Name)
			if resolved.Empty() {
				content = mermaid.RenderMetadata(workload)
				filename = fmt.Sprintf("%s_%s_meta.md", namespace, workload.Name)
			}

			path := filepath.Join(outDir, filename)
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				logrus.Errorf("Error writing diagram %s: %v", path, err)
				report.recordWriteFailure(path, err)
				continue
			}
			nsReport.Diagrams++
			report.FilesWritten++
		}
	}

	return report
}

// resolveWorkload fetches the unfiltered per-namespace snapshots and runs
// resolution. Each failed fetch degrades to an empty list so a workload
// still gets a diagram from whatever data did load.
func resolveWorkload(ctx context.Context, client lister, w graph.Workload, report *RunReport) graph.Resolved {
	pods, err := client.Pods(ctx, w.Namespace, "")
	if err != nil {
		logrus.Errorf("Error fetching pods for namespace %s: %v", w.Namespace, err)
		report.recordFetchFailure(w.Namespace, "pods", err)
		pods = nil
	}

	services, err := client.Services(ctx, w.Namespace, "")
	if err != nil {
		logrus.Errorf("Error fetching services for namespace %s: %v", w.Namespace, err)
		report.recordFetchFailure(w.Namespace, "services", err)
		services = nil
	}

	replicaSets, err := client.ReplicaSets(ctx, w.Namespace)
	if err != nil {
		logrus.Errorf("Error fetching replicasets for namespace %s: %v", w.Namespace, err)
		report.recordFetchFailure(w.Namespace, "replicasets", err)
		replicaSets = nil
	}

	return graph.Resolve(w, pods, services, replicaSets)
}
