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
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/compute/metadata"
)

// ResourceAttributesGetter abstracts the process environment consulted during
// resource detection: environment variables, the GCE metadata service and the
// local filesystem. Replacing it (see WithResourceAttributes) allows
// deterministic testing without mutating the process environment.
type ResourceAttributesGetter interface {
	// EnvVar looks up an environment variable.
	EnvVar(name string) (string, bool)
	// Metadata queries the metadata server for the given path suffix.
	Metadata(path string) (string, bool)
	// ReadAll returns the trimmed contents of the file at path.
	ReadAll(path string) (string, error)
}

var defaultAttributes ResourceAttributesGetter = &osResourceGetter{
	client: metadata.NewClient(&http.Client{
		Transport: &http.Transport{
			// Keep probes of an absent metadata server short.
			DialContext: (&net.Dialer{
				Timeout:   500 * time.Millisecond,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}),
}

// ResourceAttributes returns the default getter backed by the process
// environment and the metadata server.
func ResourceAttributes() ResourceAttributesGetter { return defaultAttributes }

type osResourceGetter struct {
	client *metadata.Client
}

func (g *osResourceGetter) EnvVar(name string) (string, bool) {
	return os.LookupEnv(name)
}

func (g *osResourceGetter) Metadata(path string) (string, bool) {
	val, err := g.client.Get(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(val), true
}

func (g *osResourceGetter) ReadAll(path string) (string, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bytes)), nil
}
