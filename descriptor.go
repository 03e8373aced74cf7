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
	mrpb "google.golang.org/genproto/googleapis/api/monitoredres"
)

// Environment variables consulted when building descriptor labels. Values
// that are unset produce empty labels, never errors.
const (
	envFunctionName     = "FUNCTION_NAME"
	envSupervisorRegion = "SUPERVISOR_REGION"
	envGAEService       = "GAE_SERVICE"
	envGAEModuleName    = "GAE_MODULE_NAME"
	envGAEVersion       = "GAE_VERSION"
)

// EnvironmentFlags is the compute environment classification reported by an
// IdentityProvider. The flags are not required to be mutually exclusive;
// resolution always picks the highest-priority match.
type EnvironmentFlags struct {
	// OnAppEngine reports an App Engine runtime (standard or flex).
	OnAppEngine bool
	// OnCloudFunction reports a Cloud Functions runtime.
	OnCloudFunction bool
	// OnComputeEngine reports a Compute Engine VM.
	OnComputeEngine bool
}

type descriptorBuilder func(projectID string, attrs ResourceAttributesGetter) *mrpb.MonitoredResource

// detectors map environment flags to descriptor builders. Order matters:
// the first match wins, so App Engine shadows Cloud Functions which shadows
// Compute Engine even when several flags are set at once.
var detectors = []struct {
	match func(EnvironmentFlags) bool
	build descriptorBuilder
}{
	{func(f EnvironmentFlags) bool { return f.OnAppEngine }, appEngineDescriptor},
	{func(f EnvironmentFlags) bool { return f.OnCloudFunction }, cloudFunctionDescriptor},
	{func(f EnvironmentFlags) bool { return f.OnComputeEngine }, computeEngineDescriptor},
}

func appEngineDescriptor(projectID string, attrs ResourceAttributesGetter) *mrpb.MonitoredResource {
	moduleID, ok := attrs.EnvVar(envGAEService)
	if !ok {
		// second generation runtimes renamed the variable; older ones
		// still export GAE_MODULE_NAME
		moduleID, _ = attrs.EnvVar(envGAEModuleName)
	}
	versionID, _ := attrs.EnvVar(envGAEVersion)
	return &mrpb.MonitoredResource{
		Type: "gae_app",
		Labels: map[string]string{
			"project_id": projectID,
			"module_id":  moduleID,
			"version_id": versionID,
		},
	}
}

func cloudFunctionDescriptor(projectID string, attrs ResourceAttributesGetter) *mrpb.MonitoredResource {
	functionName, _ := attrs.EnvVar(envFunctionName)
	region, _ := attrs.EnvVar(envSupervisorRegion)
	return &mrpb.MonitoredResource{
		Type: "cloud_function",
		Labels: map[string]string{
			"project_id":    projectID,
			"function_name": functionName,
			"region":        region,
		},
	}
}

func computeEngineDescriptor(projectID string, attrs ResourceAttributesGetter) *mrpb.MonitoredResource {
	return &mrpb.MonitoredResource{
		Type: "gce_instance",
		Labels: map[string]string{
			"project_id": projectID,
		},
	}
}

// globalDescriptor is the fallback when no environment flag matches.
func globalDescriptor(projectID string, attrs ResourceAttributesGetter) *mrpb.MonitoredResource {
	return &mrpb.MonitoredResource{
		Type: "global",
		Labels: map[string]string{
			"project_id": projectID,
		},
	}
}
