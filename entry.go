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
	"errors"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/logresource/internal"
	mrpb "google.golang.org/genproto/googleapis/api/monitoredres"
	logtypepb "google.golang.org/genproto/googleapis/logging/type"
	logpb "google.golang.org/genproto/googleapis/logging/v2"
	"google.golang.org/protobuf/types/known/anypb"
	durpb "google.golang.org/protobuf/types/known/durationpb"
	tspb "google.golang.org/protobuf/types/known/timestamppb"
)

// Severity is the severity of a log entry. Values mirror
// logtypepb.LogSeverity.
type Severity int

const (
	// Default means the entry has no assigned severity level.
	Default = Severity(logtypepb.LogSeverity_DEFAULT)
	// Debug means debug or trace information.
	Debug = Severity(logtypepb.LogSeverity_DEBUG)
	// Info means routine information, such as ongoing status or performance.
	Info = Severity(logtypepb.LogSeverity_INFO)
	// Notice means normal but significant events, such as start up, shut down, or configuration.
	Notice = Severity(logtypepb.LogSeverity_NOTICE)
	// Warning means events that might cause problems.
	Warning = Severity(logtypepb.LogSeverity_WARNING)
	// Error means events that are likely to cause problems.
	Error = Severity(logtypepb.LogSeverity_ERROR)
	// Critical means events that cause more severe problems or brief outages.
	Critical = Severity(logtypepb.LogSeverity_CRITICAL)
	// Alert means a person must take an action immediately.
	Alert = Severity(logtypepb.LogSeverity_ALERT)
	// Emergency means one or more systems are unusable.
	Emergency = Severity(logtypepb.LogSeverity_EMERGENCY)
)

// String converts the severity to its upper-case name ("DEBUG", "INFO", ...).
func (v Severity) String() string {
	return logtypepb.LogSeverity(v).String()
}

// ParseSeverity returns the Severity whose name equals s, ignoring case. It
// returns Default if no Severity matches.
func ParseSeverity(s string) Severity {
	sl := strings.ToLower(s)
	for sev := Debug; sev <= Emergency; sev += 100 {
		if strings.ToLower(sev.String()) == sl {
			return sev
		}
	}
	return Default
}

// An Entry is a log entry awaiting submission to a log transport. Only the
// Resource field matters to this package; the remaining fields are carried
// through to the transport representation unmodified.
type Entry struct {
	// Timestamp is the time of the entry. If zero, the current time is used
	// when the entry is converted.
	Timestamp time.Time

	// Severity is the entry's severity level. The zero value is Default.
	Severity Severity

	// Payload must be either a string, a proto.Message, a json.RawMessage or
	// something that marshals via encoding/json to a JSON object.
	Payload interface{}

	// Labels optionally specifies key/value labels for the log entry.
	Labels map[string]string

	// InsertID is a unique ID for the log entry.
	InsertID string

	// HTTPRequest optionally specifies metadata about the HTTP request
	// associated with this log entry, if applicable.
	HTTPRequest *HTTPRequest

	// Operation optionally provides information about an operation associated
	// with the log entry, if applicable.
	Operation *logpb.LogEntryOperation

	// Trace is the resource name of the trace associated with the log entry,
	// if any.
	Trace string

	// SpanID is the ID of the trace span associated with the log entry, if any.
	SpanID string

	// TraceSampled indicates whether the trace associated with the log entry
	// was sampled for storage.
	TraceSampled bool

	// SourceLocation is the source code location that produced the entry.
	SourceLocation *logpb.LogEntrySourceLocation

	// Resource is the monitored resource descriptor for the entry. When nil,
	// Resolver.EnsureEntryHasResource fills it from the detected environment.
	Resource *mrpb.MonitoredResource
}

// HTTPRequest contains an http.Request as well as additional information
// about the request and its response.
type HTTPRequest struct {
	// Request is the http.Request passed to the handler.
	Request *http.Request

	// RequestSize is the size of the HTTP request message in bytes, including
	// the request headers and the request body.
	RequestSize int64

	// Status is the response code indicating the status of the response.
	Status int

	// ResponseSize is the size of the HTTP response message sent back to the client, in bytes,
	// including the response headers and the response body.
	ResponseSize int64

	// Latency is the request processing latency on the server, from the time the request was
	// received until the response was sent.
	Latency time.Duration

	// LocalIP is the IP address (IPv4 or IPv6) of the origin server that the request
	// was sent to.
	LocalIP string

	// RemoteIP is the IP address (IPv4 or IPv6) of the client that issued the
	// HTTP request. Examples: "192.168.1.1", "FE80::0202:B3FF:FE1E:8329".
	RemoteIP string

	// CacheHit reports whether an entity was served from cache (with or without
	// validation).
	CacheHit bool

	// CacheValidatedWithOriginServer reports whether the response was
	// validated with the origin server before being served from cache. This
	// field is only meaningful if CacheHit is true.
	CacheValidatedWithOriginServer bool
}

func fromHTTPRequest(r *HTTPRequest) (*logtypepb.HttpRequest, error) {
	if r == nil {
		return nil, nil
	}
	if r.Request == nil {
		return nil, errors.New("logresource: HTTPRequest must have a non-nil Request")
	}
	u := *r.Request.URL
	u.Fragment = ""
	pb := &logtypepb.HttpRequest{
		RequestMethod:                  r.Request.Method,
		RequestUrl:                     internal.FixUTF8(u.String()),
		RequestSize:                    r.RequestSize,
		Status:                         int32(r.Status),
		ResponseSize:                   r.ResponseSize,
		UserAgent:                      r.Request.UserAgent(),
		ServerIp:                       r.LocalIP,
		RemoteIp:                       r.RemoteIP,
		Referer:                        r.Request.Referer(),
		CacheHit:                       r.CacheHit,
		CacheValidatedWithOriginServer: r.CacheValidatedWithOriginServer,
	}
	if r.Latency != 0 {
		pb.Latency = durpb.New(r.Latency)
	}
	return pb, nil
}

var now = time.Now

// ToLogEntry converts the entry to the wire representation consumed by log
// transports. The entry itself is not modified; in particular an unset
// Resource stays unset, use Resolver.EnsureEntryHasResource beforehand to
// populate it.
func (e *Entry) ToLogEntry() (*logpb.LogEntry, error) {
	t := e.Timestamp
	if t.IsZero() {
		t = now()
	}
	httpReq, err := fromHTTPRequest(e.HTTPRequest)
	if err != nil {
		return nil, err
	}
	ent := &logpb.LogEntry{
		Timestamp:      tspb.New(t),
		Severity:       logtypepb.LogSeverity(e.Severity),
		InsertId:       e.InsertID,
		HttpRequest:    httpReq,
		Operation:      e.Operation,
		Labels:         e.Labels,
		Trace:          e.Trace,
		SpanId:         e.SpanID,
		TraceSampled:   e.TraceSampled,
		SourceLocation: e.SourceLocation,
		Resource:       e.Resource,
	}
	switch p := e.Payload.(type) {
	case string:
		ent.Payload = &logpb.LogEntry_TextPayload{TextPayload: p}
	case *anypb.Any:
		ent.Payload = &logpb.LogEntry_ProtoPayload{ProtoPayload: p}
	case nil:
	default:
		s, err := internal.ToProtoStruct(p)
		if err != nil {
			return nil, err
		}
		ent.Payload = &logpb.LogEntry_JsonPayload{JsonPayload: s}
	}
	return ent, nil
}
