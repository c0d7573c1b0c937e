// Copyright (C) Kubeatlas Authors.
// SPDX-License-Identifier: MIT

// Package mermaid renders a resolved workload graph as a Mermaid flowchart
// fenced inside Markdown. Node ids are derived from (kind, name) so a
// resource appears once per file no matter how many edges touch it.
package mermaid

import (
	"fmt"
	"strings"

	"github.com/kubeatlas/kubeatlas/pkg/graph"
)

// Render produces the Markdown diagram for one workload and its resolved
// graph. Edges run workload -> Pod for ownership (the ReplicaSet hop of a
// Deployment is collapsed) and Service -> Pod for selection.
func Render(w graph.Workload, resolved graph.Resolved) string {
	lines := []string{"graph TD"}

	wk := workloadKind(w)
	lines = append(lines, node(wk, w.Name))

	for _, pod := range resolved.Pods {
		lines = append(lines, node("Pod", pod.Name))
		lines = append(lines, edge(wk, w.Name, "Pod", pod.Name))
	}

	for _, svc := range resolved.Services {
		lines = append(lines, node("Service", svc.Name))
		for _, pod := range resolved.Pods {
			if graph.SelectorMatches(svc.Selector, pod.Labels) {
				lines = append(lines, edge("Service", svc.Name, "Pod", pod.Name))
			}
		}
	}

	return fence(lines)
}

// RenderMetadata produces the diagram variant for a workload whose resolved
// graph is empty: the workload node alone.
func RenderMetadata(w graph.Workload) string {
	return fence([]string{"graph TD", node(workloadKind(w), w.Name)})
}

func workloadKind(w graph.Workload) string {
	if w.Kind == graph.KindStandalone {
		return "Pod"
	}
	return string(w.Kind)
}

// node declares a uniquely-identified node. Pod nodes are labeled with the
// bare name; everything else carries its kind in the label.
func node(kind, name string) string {
	label := fmt.Sprintf("%s: %s", kind, name)
	if kind == "Pod" {
		label = name
	}
	return fmt.Sprintf("%s[%q]", nodeID(kind, name), label)
}

func edge(fromKind, fromName, toKind, toName string) string {
	return fmt.Sprintf("%s --> %s", nodeID(fromKind, fromName), nodeID(toKind, toName))
}

// nodeID builds a deterministic Mermaid-safe identifier from a resource's
// kind and name.
func nodeID(kind, name string) string {
	return sanitize(kind) + "_" + sanitize(name)
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func fence(lines []string) string {
	return "```mermaid\n" + strings.Join(dedupe(lines), "\n") + "\n```\n"
}

// dedupe drops repeated lines while preserving first-seen order, so a Pod
// matched by several Services is declared once.
func dedupe(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}
