// Copyright (C) Kubeatlas Authors.
// SPDX-License-Identifier: MIT

// Package cluster performs the read-only list queries that feed graph
// resolution. Every method returns the error from the API server wrapped
// in a QueryError; degrade-vs-abort policy belongs to the caller.
package cluster

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/kubeatlas/kubeatlas/pkg/graph"
)

// QueryError wraps a failed list call with the namespace and resource kind
// it was scoped to.
type QueryError struct {
	Namespace string
	Resource  string
	Err       error
}

func (e *QueryError) Error() string {
	if e.Namespace == "" {
		return fmt.Sprintf("list %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("list %s in namespace %s: %v", e.Resource, e.Namespace, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Client lists namespaces, workloads, Pods, Services, and ReplicaSets.
type Client struct {
	clientset kubernetes.Interface
}

// New creates a Client from a rest config.
func New(cfg *rest.Config) (*Client, error) {
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create clientset: %w", err)
	}
	return &Client{clientset: clientset}, nil
}

// NewWithClientset creates a Client from an existing clientset.
func NewWithClientset(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

// Namespaces returns the names of all namespaces in the cluster.
func (c *Client) Namespaces(ctx context.Context) ([]string, error) {
	list, err := c.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, &QueryError{Resource: "namespaces", Err: err}
	}
	names := make([]string, 0, len(list.Items))
	for _, ns := range list.Items {
		names = append(names, ns.Name)
	}
	return names, nil
}

// Workloads returns the union of Deployments, StatefulSets, and DaemonSets
// in a namespace, in that order. Any of the three lists failing fails the
// whole call.
func (c *Client) Workloads(ctx context.Context, namespace string) ([]graph.Workload, error) {
	var workloads []graph.Workload

	deployments, err := c.clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, &QueryError{Namespace: namespace, Resource: "deployments", Err: err}
	}
	for _, d := range deployments.Items {
		workloads = append(workloads, workloadFromObject(graph.KindDeployment, &d.ObjectMeta))
	}

	statefulSets, err := c.clientset.AppsV1().StatefulSets(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, &QueryError{Namespace: namespace, Resource: "statefulsets", Err: err}
	}
	for _, s := range statefulSets.Items {
		workloads = append(workloads, workloadFromObject(graph.KindStatefulSet, &s.ObjectMeta))
	}

	daemonSets, err := c.clientset.AppsV1().DaemonSets(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, &QueryError{Namespace: namespace, Resource: "daemonsets", Err: err}
	}
	for _, d := range daemonSets.Items {
		workloads = append(workloads, workloadFromObject(graph.KindDaemonSet, &d.ObjectMeta))
	}

	return workloads, nil
}

// Pods lists Pods in a namespace, optionally restricted by a label selector.
func (c *Client) Pods(ctx context.Context, namespace, labelSelector string) ([]graph.Pod, error) {
	list, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: labelSelector})
	if err != nil {
		return nil, &QueryError{Namespace: namespace, Resource: "pods", Err: err}
	}
	pods := make([]graph.Pod, 0, len(list.Items))
	for _, p := range list.Items {
		pods = append(pods, podFromObject(&p))
	}
	return pods, nil
}

// Services lists Services in a namespace, optionally restricted by a label
// selector.
func (c *Client) Services(ctx context.Context, namespace, labelSelector string) ([]graph.Service, error) {
	list, err := c.clientset.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{LabelSelector: labelSelector})
	if err != nil {
		return nil, &QueryError{Namespace: namespace, Resource: "services", Err: err}
	}
	services := make([]graph.Service, 0, len(list.Items))
	for _, s := range list.Items {
		services = append(services, serviceFromObject(&s))
	}
	return services, nil
}

// ReplicaSets lists all ReplicaSets in a namespace.
func (c *Client) ReplicaSets(ctx context.Context, namespace string) ([]graph.ReplicaSet, error) {
	list, err := c.clientset.AppsV1().ReplicaSets(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, &QueryError{Namespace: namespace, Resource: "replicasets", Err: err}
	}
	replicaSets := make([]graph.ReplicaSet, 0, len(list.Items))
	for _, rs := range list.Items {
		replicaSets = append(replicaSets, replicaSetFromObject(&rs))
	}
	return replicaSets, nil
}

func workloadFromObject(kind graph.Kind, meta *metav1.ObjectMeta) graph.Workload {
	return graph.Workload{
		Kind:      kind,
		UID:       meta.UID,
		Namespace: meta.Namespace,
		Name:      meta.Name,
		Labels:    copyLabels(meta.Labels),
	}
}

func podFromObject(pod *corev1.Pod) graph.Pod {
	return graph.Pod{
		UID:       pod.UID,
		Name:      pod.Name,
		Namespace: pod.Namespace,
		Labels:    copyLabels(pod.Labels),
		OwnerUIDs: ownerUIDs(pod.OwnerReferences),
	}
}

func replicaSetFromObject(rs *appsv1.ReplicaSet) graph.ReplicaSet {
	return graph.ReplicaSet{
		UID:       rs.UID,
		Name:      rs.Name,
		Namespace: rs.Namespace,
		OwnerUIDs: ownerUIDs(rs.OwnerReferences),
	}
}

func serviceFromObject(svc *corev1.Service) graph.Service {
	return graph.Service{
		Name:      svc.Name,
		Namespace: svc.Namespace,
		Selector:  copyLabels(svc.Spec.Selector),
	}
}

func ownerUIDs(refs []metav1.OwnerReference) []types.UID {
	if len(refs) == 0 {
		return nil
	}
	uids := make([]types.UID, 0, len(refs))
	for _, ref := range refs {
		uids = append(uids, ref.UID)
	}
	return uids
}

func copyLabels(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
