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
	"sync"

	mrpb "google.golang.org/genproto/googleapis/api/monitoredres"
)

// ErrProjectLookupDisabled is returned by ResolveProjectID, and by operations
// that depend on it, when the Resolver was built with WithoutProjectLookup
// and no project ID was configured. Callers in restricted environments should
// treat it as a skipped lookup, not a transient failure.
var ErrProjectLookupDisabled = errors.New("logresource: project ID lookup disabled")

// A Resolver maps the running compute environment to a monitored resource
// descriptor. It caches the project ID for its lifetime; all other state is
// read-only after construction, so a Resolver is safe for concurrent use.
type Resolver struct {
	provider             IdentityProvider
	attrs                ResourceAttributesGetter
	disableProjectLookup bool

	// mu guards projectID, which is written at most once.
	mu        sync.Mutex
	projectID string
}

// NewResolver returns a Resolver configured by opts. With no options the
// Resolver consults application default credentials and the metadata server
// through the default IdentityProvider.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		attrs: ResourceAttributes(),
	}
	for _, opt := range opts {
		opt.set(r)
	}
	if r.provider == nil {
		r.provider = &defaultIdentityProvider{attrs: r.attrs}
	}
	return r
}

// ResolveProjectID returns the project ID associated with this Resolver.
// A configured or previously resolved ID is returned without any I/O.
// Otherwise the lookup is delegated to the identity provider; its error, if
// any, is returned unchanged. When project lookup is disabled the sentinel
// ErrProjectLookupDisabled is returned instead.
func (r *Resolver) ResolveProjectID(ctx context.Context) (string, error) {
	r.mu.Lock()
	cached := r.projectID
	r.mu.Unlock()
	if cached != "" {
		return cached, nil
	}
	if r.disableProjectLookup {
		return "", ErrProjectLookupDisabled
	}
	id, err := r.provider.ProjectID(ctx)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	if r.projectID == "" {
		r.projectID = id
	}
	id = r.projectID
	r.mu.Unlock()
	return id, nil
}

// ResolveDefaultDescriptor resolves the project ID, queries the environment
// classification from the identity provider and dispatches to exactly one
// descriptor builder. Priority: App Engine > Cloud Functions > Compute
// Engine > global. Lookup errors are surfaced unchanged; there are no
// retries.
func (r *Resolver) ResolveDefaultDescriptor(ctx context.Context) (*mrpb.MonitoredResource, error) {
	projectID, err := r.ResolveProjectID(ctx)
	if err != nil {
		return nil, err
	}
	flags, err := r.provider.Environment(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range detectors {
		if d.match(flags) {
			return d.build(projectID, r.attrs), nil
		}
	}
	return globalDescriptor(projectID, r.attrs), nil
}

// EnsureEntryHasResource populates e.Resource from the detected environment
// and returns e. If the entry already carries a resource it is returned
// unchanged without consulting the identity provider. The entry is mutated
// in place.
func (r *Resolver) EnsureEntryHasResource(ctx context.Context, e *Entry) (*Entry, error) {
	if e.Resource != nil {
		return e, nil
	}
	res, err := r.ResolveDefaultDescriptor(ctx)
	if err != nil {
		return nil, err
	}
	e.Resource = res
	return e, nil
}
