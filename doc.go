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

/*
Package logresource determines which Google Cloud compute environment the
current process runs in (App Engine, Cloud Functions, Compute Engine, or none)
and builds the monitored resource descriptor used to tag log entries before
they are handed to a log transport.

A Resolver owns a cached project ID and an identity provider. The zero
configuration path works on any GCP runtime:

	r := logresource.NewResolver()
	res, err := r.ResolveDefaultDescriptor(ctx)

Resolution follows a strict priority: App Engine wins over Cloud Functions,
which wins over Compute Engine; when none match, a "global" descriptor is
returned. Entries can be stamped in place:

	entry := &logresource.Entry{Payload: "hello"}
	if _, err := r.EnsureEntryHasResource(ctx, entry); err != nil {
		// handle err
	}

The package performs no log transmission, retries or authentication of its
own; project IDs and environment classification come from an IdentityProvider
which may be replaced for testing or restricted environments.
*/
package logresource // import "cloud.google.com/go/logresource"
