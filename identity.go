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

	"golang.org/x/oauth2/google"
)

// An IdentityProvider supplies the project ID and the compute environment
// classification used during resource detection. Implementations may perform
// network I/O; both methods honor ctx cancellation. Errors are propagated to
// callers of the Resolver unchanged.
type IdentityProvider interface {
	ProjectID(ctx context.Context) (string, error)
	Environment(ctx context.Context) (EnvironmentFlags, error)
}

// defaultIdentityProvider derives identity from application default
// credentials, well-known environment variables and the metadata server, in
// that order. All process access goes through the attribute getter so tests
// can substitute a fake.
type defaultIdentityProvider struct {
	attrs ResourceAttributesGetter
}

func (p *defaultIdentityProvider) ProjectID(ctx context.Context) (string, error) {
	for _, name := range []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT"} {
		if v, ok := p.attrs.EnvVar(name); ok && v != "" {
			return v, nil
		}
	}
	creds, credsErr := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if credsErr == nil && creds.ProjectID != "" {
		return creds.ProjectID, nil
	}
	if id, ok := p.attrs.Metadata("project/project-id"); ok && id != "" {
		return id, nil
	}
	if credsErr != nil {
		return "", credsErr
	}
	return "", errors.New("logresource: unable to determine project ID")
}

func (p *defaultIdentityProvider) Environment(ctx context.Context) (EnvironmentFlags, error) {
	var flags EnvironmentFlags
	if _, ok := p.attrs.EnvVar(envGAEService); ok {
		flags.OnAppEngine = true
	} else if _, ok := p.attrs.EnvVar(envGAEModuleName); ok {
		flags.OnAppEngine = true
	}
	if _, ok := p.attrs.EnvVar(envFunctionName); ok {
		flags.OnCloudFunction = true
	}
	// querying the metadata server root is the documented way to tell
	// whether we are on GCE at all
	if _, ok := p.attrs.Metadata(""); ok {
		flags.OnComputeEngine = true
	}
	return flags, nil
}
