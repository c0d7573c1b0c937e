// Copyright (C) Kubeatlas Authors.
// SPDX-License-Identifier: MIT

package graph

import (
	"k8s.io/apimachinery/pkg/types"
)

// Resolve computes the resources a workload owns or selects from the
// unfiltered per-namespace snapshots. Ownership is uid equality between a
// child's owner references and the parent's uid; Deployments resolve in two
// hops through their ReplicaSets. Standalone workloads collect every
// owner-less Pod in the namespace, matching the long-standing behavior of
// the diagram output (each standalone diagram shows all unmanaged Pods).
//
// Resolve is pure: no I/O, inputs are never mutated, and identical inputs
// produce identical output.
func Resolve(w Workload, pods []Pod, services []Service, replicaSets []ReplicaSet) Resolved {
	var out Resolved

	switch w.Kind {
	case KindDeployment:
		for _, rs := range replicaSets {
			if ownedBy(rs.OwnerUIDs, w.UID) {
				out.ReplicaSets = append(out.ReplicaSets, rs)
			}
		}

		rsUIDs := make(map[types.UID]bool, len(out.ReplicaSets))
		for _, rs := range out.ReplicaSets {
			rsUIDs[rs.UID] = true
		}
		for _, pod := range pods {
			for _, owner := range pod.OwnerUIDs {
				if rsUIDs[owner] {
					out.Pods = append(out.Pods, pod)
					break
				}
			}
		}

	case KindStatefulSet, KindDaemonSet, KindReplicaSet:
		for _, pod := range pods {
			if len(pod.OwnerUIDs) > 0 && ownedBy(pod.OwnerUIDs, w.UID) {
				out.Pods = append(out.Pods, pod)
			}
		}

	default: // KindStandalone
		for _, pod := range pods {
			if len(pod.OwnerUIDs) == 0 {
				out.Pods = append(out.Pods, pod)
			}
		}
	}

	for _, svc := range services {
		if len(svc.Selector) == 0 {
			continue
		}
		for _, pod := range out.Pods {
			if SelectorMatches(svc.Selector, pod.Labels) {
				out.Services = append(out.Services, svc)
				break
			}
		}
	}

	return out
}

// SelectorMatches reports whether every selector pair is present in labels.
// An empty or nil selector matches nothing: a Service without a selector
// must not fan out to every Pod in the namespace.
func SelectorMatches(selector, labels map[string]string) bool {
	if len(selector) == 0 {
		return false
	}
	for k, v := range selector {
		if labels[k] != v {
			return false
		}
	}
	return true
}

func ownedBy(owners []types.UID, uid types.UID) bool {
	for _, owner := range owners {
		if owner == uid {
			return true
		}
	}
	return false
}
