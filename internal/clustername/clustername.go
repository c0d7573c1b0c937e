// Copyright (C) Kubeatlas Authors.
// SPDX-License-Identifier: MIT

// Package clustername derives a short cluster name from a kubectl context,
// used to name the diagram output directory.
package clustername

import "strings"

// Default is used when no context name is available.
const Default = "default"

// FromContext extracts a canonical cluster name from a kubectl context name.
// Handles AWS EKS ARNs, GKE context formats, and kind clusters; anything
// else is used as-is. Empty or unknown contexts fall back to Default.
func FromContext(contextName string) string {
	if contextName == "" || contextName == "unknown" {
		return Default
	}

	// AWS EKS: arn:aws:eks:region:account:cluster/name
	if strings.HasPrefix(contextName, "arn:aws:eks:") {
		if idx := strings.LastIndex(contextName, "/"); idx != -1 {
			return contextName[idx+1:]
		}
	}

	// GKE: gke_project_zone_cluster
	if strings.HasPrefix(contextName, "gke_") {
		parts := strings.Split(contextName, "_")
		if len(parts) >= 4 {
			return parts[len(parts)-1]
		}
	}

	// kind: kind-name
	if strings.HasPrefix(contextName, "kind-") {
		return strings.TrimPrefix(contextName, "kind-")
	}

	return contextName
}
