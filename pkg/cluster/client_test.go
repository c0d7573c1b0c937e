// Copyright (C) Kubeatlas Authors.
// SPDX-License-Identifier: MIT

package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/kubeatlas/kubeatlas/pkg/graph"
)

func newDeployment(namespace, name, uid string) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: namespace,
			Name:      name,
			UID:       types.UID(uid),
		},
	}
}

func newStatefulSet(namespace, name, uid string) *appsv1.StatefulSet {
	return &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: namespace,
			Name:      name,
			UID:       types.UID(uid),
		},
	}
}

func newDaemonSet(namespace, name, uid string) *appsv1.DaemonSet {
	return &appsv1.DaemonSet{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: namespace,
			Name:      name,
			UID:       types.UID(uid),
		},
	}
}

func newPod(namespace, name, uid string, labels map[string]string, ownerUIDs ...string) *corev1.Pod {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: namespace,
			Name:      name,
			UID:       types.UID(uid),
			Labels:    labels,
		},
	}
	for _, owner := range ownerUIDs {
		pod.OwnerReferences = append(pod.OwnerReferences, metav1.OwnerReference{
			APIVersion: "apps/v1",
			Kind:       "ReplicaSet",
			Name:       "owner",
			UID:        types.UID(owner),
		})
	}
	return pod
}

func TestWorkloadsUnionOrder(t *testing.T) {
	clientset := fake.NewClientset(
		newDaemonSet("prod", "node-agent", "ds-1"),
		newStatefulSet("prod", "db", "ss-1"),
		newDeployment("prod", "web", "dep-1"),
		newDeployment("other", "elsewhere", "dep-2"),
	)
	client := NewWithClientset(clientset)

	workloads, err := client.Workloads(context.Background(), "prod")
	require.NoError(t, err)
	require.Len(t, workloads, 3)

	// Deployments first, then StatefulSets, then DaemonSets.
	assert.Equal(t, graph.KindDeployment, workloads[0].Kind)
	assert.Equal(t, "web", workloads[0].Name)
	assert.Equal(t, graph.KindStatefulSet, workloads[1].Kind)
	assert.Equal(t, graph.KindDaemonSet, workloads[2].Kind)
}

func TestWorkloadsFailsWhole(t *testing.T) {
	clientset := fake.NewClientset(newDeployment("prod", "web", "dep-1"))
	clientset.PrependReactor("list", "statefulsets", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("boom")
	})
	client := NewWithClientset(clientset)

	_, err := client.Workloads(context.Background(), "prod")
	require.Error(t, err)

	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, "prod", qerr.Namespace)
	assert.Equal(t, "statefulsets", qerr.Resource)
}

func TestPodsConversion(t *testing.T) {
	clientset := fake.NewClientset(
		newPod("prod", "web-1", "p-1", map[string]string{"app": "web"}, "rs-1"),
		newPod("prod", "loner", "p-2", nil),
	)
	client := NewWithClientset(clientset)

	pods, err := client.Pods(context.Background(), "prod", "")
	require.NoError(t, err)
	require.Len(t, pods, 2)

	byName := map[string]graph.Pod{}
	for _, p := range pods {
		byName[p.Name] = p
	}
	assert.Equal(t, []types.UID{"rs-1"}, byName["web-1"].OwnerUIDs)
	assert.Equal(t, map[string]string{"app": "web"}, byName["web-1"].Labels)
	assert.Empty(t, byName["loner"].OwnerUIDs)
}

func TestServicesSelectorCopied(t *testing.T) {
	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Namespace: "prod", Name: "web-svc"},
		Spec:       corev1.ServiceSpec{Selector: map[string]string{"app": "web"}},
	}
	headless := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Namespace: "prod", Name: "no-selector"},
	}
	client := NewWithClientset(fake.NewClientset(svc, headless))

	services, err := client.Services(context.Background(), "prod", "")
	require.NoError(t, err)
	require.Len(t, services, 2)

	byName := map[string]graph.Service{}
	for _, s := range services {
		byName[s.Name] = s
	}
	assert.Equal(t, map[string]string{"app": "web"}, byName["web-svc"].Selector)
	assert.Nil(t, byName["no-selector"].Selector)

	// The returned selector is a copy, not an alias of the API object.
	byName["web-svc"].Selector["app"] = "mutated"
	assert.Equal(t, "web", svc.Spec.Selector["app"])
}

func TestNamespacesAndQueryErrorContext(t *testing.T) {
	clientset := fake.NewClientset(
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "default"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "prod"}},
	)
	client := NewWithClientset(clientset)

	namespaces, err := client.Namespaces(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"default", "prod"}, namespaces)

	clientset.PrependReactor("list", "pods", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("forbidden")
	})
	_, err = client.Pods(context.Background(), "prod", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pods")
	assert.Contains(t, err.Error(), "prod")
}
