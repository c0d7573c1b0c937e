// Copyright (C) Kubeatlas Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"sigs.k8s.io/yaml"

	"github.com/kubeatlas/kubeatlas/internal/clierr"
)

// reportFilename is written into the output directory alongside the diagrams.
const reportFilename = "atlas-report.yaml"

// RunReport records what a generation run actually covered. Fetch failures
// degrade to empty results while the run continues, so the report is the
// only place partial data is distinguishable from genuinely empty data.
type RunReport struct {
	Cluster       string             `json:"cluster"`
	GeneratedAt   time.Time          `json:"generatedAt"`
	Namespaces    []*NamespaceReport `json:"namespaces,omitempty"`
	FailedFetches []FetchFailure     `json:"failedFetches,omitempty"`
	FailedWrites  []WriteFailure     `json:"failedWrites,omitempty"`
	FilesWritten  int                `json:"filesWritten"`
}

// NamespaceReport summarizes one namespace. Incomplete means at least one
// fetch scoped to the namespace failed, so its diagrams may understate what
// the cluster holds.
type NamespaceReport struct {
	Name       string `json:"name"`
	Workloads  int    `json:"workloads"`
	Diagrams   int    `json:"diagrams"`
	Incomplete bool   `json:"incomplete,omitempty"`
}

// FetchFailure is one failed list call.
type FetchFailure struct {
	Namespace string `json:"namespace,omitempty"`
	Resource  string `json:"resource"`
	Type      string `json:"type"`
	Error     string `json:"error"`
}

// WriteFailure is one diagram file (or the output directory) that could not
// be written.
type WriteFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func newRunReport(cluster string) *RunReport {
	return &RunReport{
		Cluster:     cluster,
		GeneratedAt: time.Now().UTC(),
	}
}

// namespace returns the report entry for a namespace, creating it on first
// use.
func (r *RunReport) namespace(name string) *NamespaceReport {
	for _, ns := range r.Namespaces {
		if ns.Name == name {
			return ns
		}
	}
	ns := &NamespaceReport{Name: name}
	r.Namespaces = append(r.Namespaces, ns)
	return ns
}

func (r *RunReport) recordFetchFailure(namespace, resource string, err error) {
	r.FailedFetches = append(r.FailedFetches, FetchFailure{
		Namespace: namespace,
		Resource:  resource,
		Type:      clierr.Classify(err),
		Error:     err.Error(),
	})
	if namespace != "" {
		r.namespace(namespace).Incomplete = true
	}
}

func (r *RunReport) recordWriteFailure(path string, err error) {
	r.FailedWrites = append(r.FailedWrites, WriteFailure{Path: path, Error: err.Error()})
}

func writeReport(outDir string, report *RunReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	path := filepath.Join(outDir, reportFilename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write run report: %w", err)
	}
	return nil
}

var (
	summaryHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	summaryOkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	summaryWarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	summaryDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
)

// printSummary writes the one-screen end-of-run summary.
func printSummary(w io.Writer, report *RunReport, outDir string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, summaryHeaderStyle.Render(fmt.Sprintf("kubeatlas: cluster %s", report.Cluster)))

	workloads := 0
	incomplete := 0
	for _, ns := range report.Namespaces {
		workloads += ns.Workloads
		if ns.Incomplete {
			incomplete++
		}
	}

	fmt.Fprintf(w, "  %s\n", summaryOkStyle.Render(fmt.Sprintf("%d diagrams written for %d workloads in %d namespaces",
		report.FilesWritten, workloads, len(report.Namespaces))))
	if len(report.FailedFetches) > 0 || len(report.FailedWrites) > 0 {
		fmt.Fprintf(w, "  %s\n", summaryWarnStyle.Render(fmt.Sprintf("%d fetches failed (%d namespaces incomplete), %d writes failed",
			len(report.FailedFetches), incomplete, len(report.FailedWrites))))
	}
	fmt.Fprintf(w, "  %s\n", summaryDimStyle.Render(fmt.Sprintf("output: %s (report: %s)", outDir, reportFilename)))
}
