// Copyright (C) Kubeatlas Authors.
// SPDX-License-Identifier: MIT

// Package graph models cluster workloads and resolves the resources they
// own or select. It is pure in-memory matching: callers fetch the
// per-namespace snapshots, Resolve does the filtering.
package graph

import (
	"k8s.io/apimachinery/pkg/types"
)

// Kind identifies the workload variety driving ownership resolution.
type Kind string

const (
	KindDeployment  Kind = "Deployment"
	KindStatefulSet Kind = "StatefulSet"
	KindDaemonSet   Kind = "DaemonSet"
	KindReplicaSet  Kind = "ReplicaSet"
	// KindStandalone covers bare Pods and any kind the resolver does not
	// recognize as a managing controller.
	KindStandalone Kind = "Standalone"
)

// ParseKind maps an API object kind string onto a resolver Kind.
// Unknown kinds resolve as standalone.
func ParseKind(kind string) Kind {
	switch kind {
	case "Deployment":
		return KindDeployment
	case "StatefulSet":
		return KindStatefulSet
	case "DaemonSet":
		return KindDaemonSet
	case "ReplicaSet":
		return KindReplicaSet
	default:
		return KindStandalone
	}
}

// Workload is one enumerated controller (or bare Pod) to resolve.
type Workload struct {
	Kind      Kind              `json:"kind"`
	UID       types.UID         `json:"uid"`
	Namespace string            `json:"namespace"`
	Name      string            `json:"name"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// Pod is the snapshot of a Pod relevant to matching.
type Pod struct {
	UID       types.UID         `json:"uid"`
	Name      string            `json:"name"`
	Namespace string            `json:"namespace"`
	Labels    map[string]string `json:"labels,omitempty"`
	OwnerUIDs []types.UID       `json:"ownerUIDs,omitempty"`
}

// ReplicaSet is the snapshot of a ReplicaSet relevant to matching.
type ReplicaSet struct {
	UID       types.UID   `json:"uid"`
	Name      string      `json:"name"`
	Namespace string      `json:"namespace"`
	OwnerUIDs []types.UID `json:"ownerUIDs,omitempty"`
}

// Service is the snapshot of a Service relevant to matching.
type Service struct {
	Name      string            `json:"name"`
	Namespace string            `json:"namespace"`
	Selector  map[string]string `json:"selector,omitempty"`
}

// Resolved is the per-workload output of ownership/selection resolution.
// Slices preserve input order so diagram output is reproducible; treat
// them as sets for equality purposes.
type Resolved struct {
	ReplicaSets []ReplicaSet `json:"replicaSets,omitempty"`
	Pods        []Pod        `json:"pods,omitempty"`
	Services    []Service    `json:"services,omitempty"`
}

// Empty reports whether resolution found nothing to draw beyond the
// workload itself.
func (r Resolved) Empty() bool {
	return len(r.ReplicaSets) == 0 && len(r.Pods) == 0 && len(r.Services) == 0
}
