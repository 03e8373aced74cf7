// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logresource

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	mrpb "google.golang.org/genproto/googleapis/api/monitoredres"
)

const (
	testProjectID    = "test-project"
	testRegionID     = "us-central1"
	testFunctionName = "test-function"
	testServiceName  = "test-service"
	testVersion      = "1.0"
)

// fakeResourceGetter mocks the ResourceAttributesGetter interface to retrieve
// env vars, metadata and file contents from maps.
type fakeResourceGetter struct {
	envVars  map[string]string
	metaVars map[string]string
	fsPaths  map[string]string
}

func (g *fakeResourceGetter) EnvVar(name string) (string, bool) {
	v, ok := g.envVars[name]
	return v, ok
}

func (g *fakeResourceGetter) Metadata(path string) (string, bool) {
	v, ok := g.metaVars[path]
	return v, ok
}

func (g *fakeResourceGetter) ReadAll(path string) (string, error) {
	if v, ok := g.fsPaths[path]; ok {
		return v, nil
	}
	return "", os.ErrNotExist
}

// fakeIdentityProvider counts lookups so tests can assert that cached or
// short-circuited paths perform no I/O.
type fakeIdentityProvider struct {
	projectID  string
	projectErr error
	flags      EnvironmentFlags
	envErr     error

	projectCalls int
	envCalls     int
}

func (p *fakeIdentityProvider) ProjectID(ctx context.Context) (string, error) {
	p.projectCalls++
	if p.projectErr != nil {
		return "", p.projectErr
	}
	return p.projectID, nil
}

func (p *fakeIdentityProvider) Environment(ctx context.Context) (EnvironmentFlags, error) {
	p.envCalls++
	if p.envErr != nil {
		return EnvironmentFlags{}, p.envErr
	}
	return p.flags, nil
}

func TestResolveDefaultDescriptor(t *testing.T) {
	tests := []struct {
		name      string
		projectID string
		flags     EnvironmentFlags
		envVars   map[string]string
		want      *mrpb.MonitoredResource
	}{
		{
			name:      "cloud function resource",
			projectID: "proj-1",
			flags:     EnvironmentFlags{OnCloudFunction: true},
			envVars:   map[string]string{"FUNCTION_NAME": "myFn", "SUPERVISOR_REGION": testRegionID},
			want: &mrpb.MonitoredResource{
				Type: "cloud_function",
				Labels: map[string]string{
					"project_id":    "proj-1",
					"function_name": "myFn",
					"region":        testRegionID,
				},
			},
		},
		{
			name:      "cloud function resource without optional region",
			projectID: testProjectID,
			flags:     EnvironmentFlags{OnCloudFunction: true},
			envVars:   map[string]string{"FUNCTION_NAME": testFunctionName},
			want: &mrpb.MonitoredResource{
				Type: "cloud_function",
				Labels: map[string]string{
					"project_id":    testProjectID,
					"function_name": testFunctionName,
					"region":        "",
				},
			},
		},
		{
			name:      "app engine resource",
			projectID: testProjectID,
			flags:     EnvironmentFlags{OnAppEngine: true},
			envVars:   map[string]string{"GAE_SERVICE": testServiceName, "GAE_VERSION": testVersion},
			want: &mrpb.MonitoredResource{
				Type: "gae_app",
				Labels: map[string]string{
					"project_id": testProjectID,
					"module_id":  testServiceName,
					"version_id": testVersion,
				},
			},
		},
		{
			name:      "app engine resource with legacy module name",
			projectID: testProjectID,
			flags:     EnvironmentFlags{OnAppEngine: true},
			envVars:   map[string]string{"GAE_MODULE_NAME": testServiceName, "GAE_VERSION": testVersion},
			want: &mrpb.MonitoredResource{
				Type: "gae_app",
				Labels: map[string]string{
					"project_id": testProjectID,
					"module_id":  testServiceName,
					"version_id": testVersion,
				},
			},
		},
		{
			name:      "GAE_SERVICE wins over GAE_MODULE_NAME",
			projectID: testProjectID,
			flags:     EnvironmentFlags{OnAppEngine: true},
			envVars:   map[string]string{"GAE_SERVICE": testServiceName, "GAE_MODULE_NAME": "legacy", "GAE_VERSION": testVersion},
			want: &mrpb.MonitoredResource{
				Type: "gae_app",
				Labels: map[string]string{
					"project_id": testProjectID,
					"module_id":  testServiceName,
					"version_id": testVersion,
				},
			},
		},
		{
			name:      "compute engine resource",
			projectID: testProjectID,
			flags:     EnvironmentFlags{OnComputeEngine: true},
			want: &mrpb.MonitoredResource{
				Type: "gce_instance",
				Labels: map[string]string{
					"project_id": testProjectID,
				},
			},
		},
		{
			name:      "global resource when nothing matches",
			projectID: "proj-2",
			flags:     EnvironmentFlags{},
			want: &mrpb.MonitoredResource{
				Type: "global",
				Labels: map[string]string{
					"project_id": "proj-2",
				},
			},
		},
		{
			name:      "app engine wins over all other flags",
			projectID: testProjectID,
			flags:     EnvironmentFlags{OnAppEngine: true, OnCloudFunction: true, OnComputeEngine: true},
			envVars:   map[string]string{"GAE_SERVICE": testServiceName, "GAE_VERSION": testVersion, "FUNCTION_NAME": testFunctionName},
			want: &mrpb.MonitoredResource{
				Type: "gae_app",
				Labels: map[string]string{
					"project_id": testProjectID,
					"module_id":  testServiceName,
					"version_id": testVersion,
				},
			},
		},
		{
			name:      "cloud function wins over compute engine",
			projectID: testProjectID,
			flags:     EnvironmentFlags{OnCloudFunction: true, OnComputeEngine: true},
			envVars:   map[string]string{"FUNCTION_NAME": testFunctionName, "SUPERVISOR_REGION": testRegionID},
			want: &mrpb.MonitoredResource{
				Type: "cloud_function",
				Labels: map[string]string{
					"project_id":    testProjectID,
					"function_name": testFunctionName,
					"region":        testRegionID,
				},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(
				WithIdentityProvider(&fakeIdentityProvider{projectID: tc.projectID, flags: tc.flags}),
				WithResourceAttributes(&fakeResourceGetter{envVars: tc.envVars}),
			)
			got, err := r.ResolveDefaultDescriptor(context.Background())
			if err != nil {
				t.Fatalf("ResolveDefaultDescriptor: %v", err)
			}
			if diff := cmp.Diff(got, tc.want, cmpopts.IgnoreUnexported(mrpb.MonitoredResource{})); diff != "" {
				t.Errorf("got(-),want(+):\n%s", diff)
			}
		})
	}
}

func TestResolveDefaultDescriptorErrors(t *testing.T) {
	projectErr := errors.New("project lookup failed")
	envErr := errors.New("environment lookup failed")

	for _, tc := range []struct {
		name     string
		provider *fakeIdentityProvider
		want     error
	}{
		{
			name:     "project ID error is surfaced unchanged",
			provider: &fakeIdentityProvider{projectErr: projectErr},
			want:     projectErr,
		},
		{
			name:     "environment error is surfaced unchanged",
			provider: &fakeIdentityProvider{projectID: testProjectID, envErr: envErr},
			want:     envErr,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(
				WithIdentityProvider(tc.provider),
				WithResourceAttributes(&fakeResourceGetter{}),
			)
			got, err := r.ResolveDefaultDescriptor(context.Background())
			if got != nil {
				t.Errorf("descriptor: got %v, want nil", got)
			}
			if err != tc.want {
				t.Errorf("error: got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestResolveProjectID(t *testing.T) {
	ctx := context.Background()

	t.Run("pre-configured ID needs no lookup", func(t *testing.T) {
		provider := &fakeIdentityProvider{projectID: "other"}
		r := NewResolver(WithProjectID(testProjectID), WithIdentityProvider(provider))
		got, err := r.ResolveProjectID(ctx)
		if err != nil {
			t.Fatalf("ResolveProjectID: %v", err)
		}
		if got != testProjectID {
			t.Errorf("got %q, want %q", got, testProjectID)
		}
		if provider.projectCalls != 0 {
			t.Errorf("provider calls: got %d, want 0", provider.projectCalls)
		}
	})

	t.Run("resolved ID is cached", func(t *testing.T) {
		provider := &fakeIdentityProvider{projectID: testProjectID}
		r := NewResolver(WithIdentityProvider(provider))
		for i := 0; i < 2; i++ {
			got, err := r.ResolveProjectID(ctx)
			if err != nil {
				t.Fatalf("call %d: %v", i, err)
			}
			if got != testProjectID {
				t.Errorf("call %d: got %q, want %q", i, got, testProjectID)
			}
		}
		if provider.projectCalls != 1 {
			t.Errorf("provider calls: got %d, want 1", provider.projectCalls)
		}
	})

	t.Run("failed lookups are not cached", func(t *testing.T) {
		lookupErr := errors.New("lookup failed")
		provider := &fakeIdentityProvider{projectErr: lookupErr}
		r := NewResolver(WithIdentityProvider(provider))
		for i := 0; i < 2; i++ {
			if _, err := r.ResolveProjectID(ctx); err != lookupErr {
				t.Errorf("call %d: got %v, want %v", i, err, lookupErr)
			}
		}
		if provider.projectCalls != 2 {
			t.Errorf("provider calls: got %d, want 2", provider.projectCalls)
		}
	})

	t.Run("disabled lookup fails fast", func(t *testing.T) {
		provider := &fakeIdentityProvider{projectID: testProjectID}
		r := NewResolver(WithoutProjectLookup(), WithIdentityProvider(provider))
		_, err := r.ResolveProjectID(ctx)
		if !errors.Is(err, ErrProjectLookupDisabled) {
			t.Errorf("got %v, want ErrProjectLookupDisabled", err)
		}
		if provider.projectCalls != 0 {
			t.Errorf("provider calls: got %d, want 0", provider.projectCalls)
		}
	})

	t.Run("disabled lookup still honors a configured ID", func(t *testing.T) {
		r := NewResolver(WithoutProjectLookup(), WithProjectID(testProjectID),
			WithIdentityProvider(&fakeIdentityProvider{}))
		got, err := r.ResolveProjectID(ctx)
		if err != nil {
			t.Fatalf("ResolveProjectID: %v", err)
		}
		if got != testProjectID {
			t.Errorf("got %q, want %q", got, testProjectID)
		}
	})
}

func TestEnsureEntryHasResource(t *testing.T) {
	ctx := context.Background()

	t.Run("existing resource short-circuits", func(t *testing.T) {
		provider := &fakeIdentityProvider{projectID: testProjectID}
		r := NewResolver(WithIdentityProvider(provider), WithResourceAttributes(&fakeResourceGetter{}))
		res := &mrpb.MonitoredResource{Type: "global", Labels: map[string]string{}}
		e := &Entry{Resource: res}
		for i := 0; i < 2; i++ {
			got, err := r.EnsureEntryHasResource(ctx, e)
			if err != nil {
				t.Fatalf("call %d: %v", i, err)
			}
			if got != e {
				t.Errorf("call %d: returned a different entry", i)
			}
			if got.Resource != res {
				t.Errorf("call %d: resource was replaced", i)
			}
		}
		if provider.projectCalls != 0 || provider.envCalls != 0 {
			t.Errorf("provider calls: got %d/%d, want 0/0", provider.projectCalls, provider.envCalls)
		}
	})

	t.Run("missing resource is resolved in place", func(t *testing.T) {
		provider := &fakeIdentityProvider{projectID: "proj-2"}
		r := NewResolver(WithIdentityProvider(provider), WithResourceAttributes(&fakeResourceGetter{}))
		e := &Entry{Payload: "hello"}
		got, err := r.EnsureEntryHasResource(ctx, e)
		if err != nil {
			t.Fatalf("EnsureEntryHasResource: %v", err)
		}
		if got != e {
			t.Error("returned a different entry")
		}
		want := &mrpb.MonitoredResource{
			Type:   "global",
			Labels: map[string]string{"project_id": "proj-2"},
		}
		if diff := cmp.Diff(e.Resource, want, cmpopts.IgnoreUnexported(mrpb.MonitoredResource{})); diff != "" {
			t.Errorf("got(-),want(+):\n%s", diff)
		}
	})

	t.Run("lookup error leaves the entry untouched", func(t *testing.T) {
		lookupErr := errors.New("lookup failed")
		r := NewResolver(WithIdentityProvider(&fakeIdentityProvider{projectErr: lookupErr}))
		e := &Entry{}
		got, err := r.EnsureEntryHasResource(ctx, e)
		if err != lookupErr {
			t.Errorf("error: got %v, want %v", err, lookupErr)
		}
		if got != nil {
			t.Errorf("entry: got %v, want nil", got)
		}
		if e.Resource != nil {
			t.Errorf("entry resource: got %v, want nil", e.Resource)
		}
	})
}

var benchmarkResultHolder *mrpb.MonitoredResource

func BenchmarkResolveDefaultDescriptor(b *testing.B) {
	r := NewResolver(
		WithIdentityProvider(&fakeIdentityProvider{projectID: testProjectID, flags: EnvironmentFlags{OnCloudFunction: true}}),
		WithResourceAttributes(&fakeResourceGetter{envVars: map[string]string{"FUNCTION_NAME": testFunctionName}}),
	)
	ctx := context.Background()

	var result *mrpb.MonitoredResource
	for n := 0; n < b.N; n++ {
		result, _ = r.ResolveDefaultDescriptor(ctx)
	}
	benchmarkResultHolder = result
}
