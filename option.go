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

// An Option is a configuration option for a Resolver.
type Option interface {
	set(*Resolver)
}

// WithProjectID pre-configures the project ID, bypassing the identity
// provider's project lookup entirely.
func WithProjectID(projectID string) Option { return withProjectID(projectID) }

type withProjectID string

func (w withProjectID) set(r *Resolver) { r.projectID = string(w) }

// WithIdentityProvider replaces the provider used for project-ID and
// environment lookups.
func WithIdentityProvider(p IdentityProvider) Option { return withIdentityProvider{p} }

type withIdentityProvider struct{ p IdentityProvider }

func (w withIdentityProvider) set(r *Resolver) { r.provider = w.p }

// WithoutProjectLookup disables project-ID resolution. ResolveProjectID then
// fails fast with ErrProjectLookupDisabled unless a project ID was configured
// with WithProjectID. Intended for restricted execution environments where
// credential or metadata lookups must not be attempted.
func WithoutProjectLookup() Option { return withoutProjectLookup{} }

type withoutProjectLookup struct{}

func (withoutProjectLookup) set(r *Resolver) { r.disableProjectLookup = true }

// WithResourceAttributes replaces the environment reader used when building
// descriptor labels and by the default identity provider.
func WithResourceAttributes(g ResourceAttributesGetter) Option { return withResourceAttributes{g} }

type withResourceAttributes struct{ g ResourceAttributesGetter }

func (w withResourceAttributes) set(r *Resolver) { r.attrs = w.g }
