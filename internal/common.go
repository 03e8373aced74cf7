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

// Package internal holds helpers shared by the logresource packages.
package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"unicode/utf8"

	structpb "google.golang.org/protobuf/types/known/structpb"
)

// TraceHeader is the HTTP header that carries the Cloud Trace context.
const TraceHeader = "X-Cloud-Trace-Context"

// ToProtoStruct converts v, which must marshal into a JSON object, into a
// proto struct.
func ToProtoStruct(v interface{}) (*structpb.Struct, error) {
	// Fast path: if v is already a proto struct, nothing to do.
	if s, ok := v.(*structpb.Struct); ok {
		return s, nil
	}
	// v is a Go value that supports JSON marshalling. We want a proto struct.
	// Marshal to JSON bytes, then unmarshal to a generic map and convert.
	var jb []byte
	var err error
	if raw, ok := v.(json.RawMessage); ok {
		jb = raw
	} else {
		jb, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("logresource: json.Marshal: %v", err)
		}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(jb, &m); err != nil {
		return nil, fmt.Errorf("logresource: json.Unmarshal: %v", err)
	}
	return jsonMapToProtoStruct(m), nil
}

func jsonMapToProtoStruct(m map[string]interface{}) *structpb.Struct {
	fields := map[string]*structpb.Value{}
	for k, v := range m {
		fields[k] = jsonValueToProtoValue(v)
	}
	return &structpb.Struct{Fields: fields}
}

func jsonValueToProtoValue(v interface{}) *structpb.Value {
	switch x := v.(type) {
	case bool:
		return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: x}}
	case float64:
		return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: x}}
	case string:
		return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: x}}
	case nil:
		return &structpb.Value{Kind: &structpb.Value_NullValue{}}
	case map[string]interface{}:
		return &structpb.Value{Kind: &structpb.Value_StructValue{StructValue: jsonMapToProtoStruct(x)}}
	case []interface{}:
		var vals []*structpb.Value
		for _, e := range x {
			vals = append(vals, jsonValueToProtoValue(e))
		}
		return &structpb.Value{Kind: &structpb.Value_ListValue{ListValue: &structpb.ListValue{Values: vals}}}
	default:
		panic(fmt.Sprintf("bad type %T for JSON value", v))
	}
}

// FixUTF8 is a helper that fixes an invalid UTF-8 string by replacing
// invalid UTF-8 runes with the Unicode replacement character (U+FFFD).
// See Issue https://github.com/googleapis/google-cloud-go/issues/1383.
func FixUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	// Otherwise time to build the sequence. Ranging over an invalid string
	// substitutes U+FFFD for each bad byte.
	buf := new(bytes.Buffer)
	buf.Grow(len(s))
	for _, r := range s {
		buf.WriteRune(r)
	}
	return buf.String()
}

// https://cloud.google.com/trace/docs/setup#force-trace contains detailed
// information on the header format.
var reCloudTraceContext = regexp.MustCompile(
	// Matches on "TRACE_ID"
	`([a-f\d]+)?` +
		// Matches on "/SPAN_ID"
		`(?:/([a-f\d]+))?` +
		// Matches on ";0=TRACE_TRUE"
		`(?:;o=(\d))?`)

// DeconstructXCloudTraceContext extracts trace ID, span ID and the sampling
// decision from the value of the TraceHeader header.
func DeconstructXCloudTraceContext(s string) (traceID, spanID string, traceSampled bool) {
	// As per the format described at https://cloud.google.com/trace/docs/setup#force-trace
	//    "X-Cloud-Trace-Context: TRACE_ID/SPAN_ID;o=TRACE_TRUE"
	// for example:
	//    "X-Cloud-Trace-Context: 105445aa7843bc8bf206b120001000/1;o=1"
	//
	// We expect:
	//   * traceID (optional):          "105445aa7843bc8bf206b120001000"
	//   * spanID (optional):           "1"
	//   * traceSampled (optional):     true
	matches := reCloudTraceContext.FindStringSubmatch(s)
	traceID, spanID, traceSampled = matches[1], matches[2], matches[3] == "1"
	if spanID == "0" {
		spanID = ""
	}
	return
}
