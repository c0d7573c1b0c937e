// Copyright (C) Kubeatlas Authors.
// SPDX-License-Identifier: MIT

// Package clierr classifies cluster query failures so log lines and user
// output can say what actually went wrong (permissions vs connectivity vs
// missing resources) instead of echoing raw client-go errors.
package clierr

import (
	"fmt"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Failure classes for query errors.
const (
	TypeNotFound  = "not_found" // Resource kind or namespace not found
	TypeForbidden = "forbidden" // RBAC access denied
	TypeNetwork   = "network"   // Connection/network errors
	TypeInternal  = "internal"  // Internal/unexpected errors
)

// IsForbidden checks if the error is an access denied (RBAC) error.
func IsForbidden(err error) bool {
	if err == nil {
		return false
	}
	if apierrors.IsForbidden(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "forbidden") ||
		strings.Contains(msg, "access denied") ||
		strings.Contains(msg, "unauthorized")
}

// IsNotFound checks if the error indicates a missing resource.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if apierrors.IsNotFound(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "the server could not find")
}

// IsNetworkError checks if the error is a connection/network error.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "network is unreachable") ||
		strings.Contains(msg, "dial tcp") ||
		strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "context deadline exceeded")
}

// Classify determines the failure class of an error.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if IsForbidden(err) {
		return TypeForbidden
	}
	if IsNotFound(err) {
		return TypeNotFound
	}
	if IsNetworkError(err) {
		return TypeNetwork
	}
	return TypeInternal
}

// Pretty formats an error with an actionable hint for terminal output.
func Pretty(err error) string {
	if err == nil {
		return ""
	}

	switch Classify(err) {
	case TypeForbidden:
		return fmt.Sprintf("Access denied: %v\n\nHint: Check your RBAC permissions. This tool needs\n"+
			"  list permissions on namespaces, deployments, statefulsets, daemonsets,\n"+
			"  replicasets, pods, and services.\n"+
			"  kubectl auth can-i list pods --all-namespaces to verify.", err)

	case TypeNetwork:
		return fmt.Sprintf("Connection error: %v\n\nHint: Check your cluster connectivity:\n"+
			"  - kubectl cluster-info to verify connection\n"+
			"  - Ensure your kubeconfig is correct", err)

	case TypeNotFound:
		return fmt.Sprintf("Not found: %v", err)

	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
