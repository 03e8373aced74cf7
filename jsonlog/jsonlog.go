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

// Package jsonlog provides a Logger that writes structured JSON entries to
// Stderr by default. It is a transport-free consumer of logresource entries:
// when configured with a Resolver, every entry is stamped with the detected
// monitored resource before it is encoded.
package jsonlog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/logresource"
	"cloud.google.com/go/logresource/internal"
	logtypepb "google.golang.org/genproto/googleapis/logging/type"
	logpb "google.golang.org/genproto/googleapis/logging/v2"
	"google.golang.org/protobuf/encoding/protojson"
)

const (
	debugSeverity     = "DEBUG"
	infoSeverity      = "INFO"
	noticeSeverity    = "NOTICE"
	warnSeverity      = "WARNING"
	errorSeverity     = "ERROR"
	criticalSeverity  = "CRITICAL"
	alertSeverity     = "ALERT"
	emergencySeverity = "EMERGENCY"
)

// NewLogger creates a Logger that logs structured JSON to Stderr. The value of
// parent must be in the format of:
//
//	projects/PROJECT_ID
//	folders/FOLDER_ID
//	billingAccounts/ACCOUNT_ID
//	organizations/ORG_ID
func NewLogger(parent string, opts ...LoggerOption) (*Logger, error) {
	if err := validateParent(parent); err != nil {
		return nil, err
	}
	l := &Logger{
		w:      os.Stderr,
		parent: parent,
	}
	for _, opt := range opts {
		opt.set(l)
	}
	return l, nil
}

// Logger is used for logging JSON entries.
type Logger struct {
	w        io.Writer
	now      func() time.Time
	errhook  func(error)
	resolver *logresource.Resolver

	// read-only fields
	parent  string
	labels  map[string]string
	req     *logtypepb.HttpRequest
	traceID string
	sampled bool
	spanID  string
}

// WithRequest creates a new Logger based off an existing one with the
// additional context the given request can provide (request metadata and the
// Cloud Trace context, if present).
func (l *Logger) WithRequest(r *http.Request) *Logger {
	new := l.clone()
	if r == nil {
		return new
	}
	u := *r.URL
	new.req = &logtypepb.HttpRequest{
		RequestMethod: r.Method,
		RequestUrl:    internal.FixUTF8(u.String()),
		UserAgent:     r.UserAgent(),
		Referer:       r.Referer(),
		Protocol:      r.Proto,
	}
	if r.Response != nil {
		new.req.Status = int32(r.Response.StatusCode)
	}
	if traceHeader := r.Header.Get(internal.TraceHeader); traceHeader != "" {
		traceID, spanID, traceSampled := internal.DeconstructXCloudTraceContext(traceHeader)
		new.traceID = fmt.Sprintf("%s/traces/%s", l.parent, traceID)
		new.spanID = spanID
		new.sampled = traceSampled
	}
	return new
}

// WithLabels creates a new Logger based off an existing one. The labels
// provided will be added to the loggers existing labels, replacing any
// overlapping keys with the new values.
func (l *Logger) WithLabels(labels map[string]string) *Logger {
	new := l.clone()
	newLabels := make(map[string]string, len(l.labels))
	for k, v := range l.labels {
		newLabels[k] = v
	}
	for k, v := range labels {
		newLabels[k] = v
	}
	new.labels = newLabels
	return new
}

func (l *Logger) clone() *Logger {
	return &Logger{
		w:        l.w,
		now:      l.now,
		errhook:  l.errhook,
		resolver: l.resolver,
		parent:   l.parent,
		labels:   l.labels,
		req:      l.req,
		traceID:  l.traceID,
		sampled:  l.sampled,
		spanID:   l.spanID,
	}
}

// Debugf is a convenience method for writing an entry with a DEBUG severity
// and the provided formatted message.
func (l *Logger) Debugf(format string, a ...interface{}) {
	l.logf(debugSeverity, format, a...)
}

// Infof is a convenience method for writing an entry with an INFO severity
// and the provided formatted message.
func (l *Logger) Infof(format string, a ...interface{}) {
	l.logf(infoSeverity, format, a...)
}

// Noticef is a convenience method for writing an entry with a NOTICE severity
// and the provided formatted message.
func (l *Logger) Noticef(format string, a ...interface{}) {
	l.logf(noticeSeverity, format, a...)
}

// Warnf is a convenience method for writing an entry with a WARNING severity
// and the provided formatted message.
func (l *Logger) Warnf(format string, a ...interface{}) {
	l.logf(warnSeverity, format, a...)
}

// Errorf is a convenience method for writing an entry with an ERROR severity
// and the provided formatted message.
func (l *Logger) Errorf(format string, a ...interface{}) {
	l.logf(errorSeverity, format, a...)
}

// Criticalf is a convenience method for writing an entry with a CRITICAL
// severity and the provided formatted message.
func (l *Logger) Criticalf(format string, a ...interface{}) {
	l.logf(criticalSeverity, format, a...)
}

// Alertf is a convenience method for writing an entry with an ALERT severity
// and the provided formatted message.
func (l *Logger) Alertf(format string, a ...interface{}) {
	l.logf(alertSeverity, format, a...)
}

// Emergencyf is a convenience method for writing an entry with an EMERGENCY
// severity and the provided formatted message.
func (l *Logger) Emergencyf(format string, a ...interface{}) {
	l.logf(emergencySeverity, format, a...)
}

func (l *Logger) logf(severity, format string, a ...interface{}) {
	l.log(entry{
		Message:  fmt.Sprintf(format, a...),
		Severity: severity,
	})
}

// Log writes an Entry. When the Logger carries a Resolver, the entry's
// resource is resolved and stamped first; the caller's entry value is not
// modified. Not all fields are used when writing the log message, only those
// mentioned at https://cloud.google.com/logging/docs/structured-logging plus
// the resource are encoded.
func (l *Logger) Log(e logresource.Entry) {
	if l.resolver != nil && e.Resource == nil {
		if _, err := l.resolver.EnsureEntryHasResource(context.Background(), &e); err != nil {
			if l.errhook != nil {
				l.errhook(err)
			}
			return
		}
	}
	le := entry{
		Severity:       e.Severity.String(),
		Labels:         e.Labels,
		InsertID:       e.InsertID,
		Operation:      e.Operation,
		SourceLocation: e.SourceLocation,
		SpanID:         e.SpanID,
		Trace:          e.Trace,
		TraceSampled:   e.TraceSampled,
	}
	if e.Resource != nil {
		le.Resource = &resource{
			Type:   e.Resource.GetType(),
			Labels: e.Resource.GetLabels(),
		}
	}
	if e.HTTPRequest != nil {
		le.HTTPRequest = toLogpbHTTPRequest(e.HTTPRequest.Request)
	}
	if !e.Timestamp.IsZero() {
		le.Timestamp = e.Timestamp.Format(time.RFC3339)
	}
	switch p := e.Payload.(type) {
	case string:
		le.Message = p
	default:
		s, err := internal.ToProtoStruct(p)
		if err != nil {
			if l.errhook != nil {
				l.errhook(err)
			}
			return
		}
		b, err := protojson.Marshal(s)
		if err != nil {
			if l.errhook != nil {
				l.errhook(err)
			}
			return
		}
		le.Message = string(b)
	}
	l.log(le)
}

func (l *Logger) log(e entry) {
	if e.Timestamp == "" && l.now != nil {
		e.Timestamp = l.now().Format(time.RFC3339)
	}
	if e.Trace == "" {
		e.Trace = l.traceID
	}
	if e.SpanID == "" {
		e.SpanID = l.spanID
	}
	if !e.TraceSampled {
		e.TraceSampled = l.sampled
	}
	if e.HTTPRequest == nil && l.req != nil {
		e.HTTPRequest = l.req
	}
	if l.labels != nil {
		if e.Labels == nil {
			e.Labels = l.labels
		} else {
			for k, v := range l.labels {
				if _, ok := e.Labels[k]; !ok {
					e.Labels[k] = v
				}
			}
		}
	}
	if err := json.NewEncoder(l.w).Encode(e); err != nil && l.errhook != nil {
		l.errhook(err)
	}
}

// validateParent checks to make sure name is in the expected format.
func validateParent(parent string) error {
	if !strings.HasPrefix(parent, "projects/") &&
		!strings.HasPrefix(parent, "folders/") &&
		!strings.HasPrefix(parent, "billingAccounts/") &&
		!strings.HasPrefix(parent, "organizations/") {
		return fmt.Errorf("jsonlog: name formatting incorrect")
	}
	return nil
}

// resource mirrors the monitored resource shape for local consumers of the
// JSON stream; the Cloud Logging agent derives its own resource and ignores
// unknown fields.
type resource struct {
	Type   string            `json:"type"`
	Labels map[string]string `json:"labels,omitempty"`
}

// entry represents the fields of a logresource.Entry that can be parsed by
// the Logging agent. To see a list of these mappings see
// https://cloud.google.com/logging/docs/structured-logging.
type entry struct {
	Message        string                        `json:"message"`
	Severity       string                        `json:"severity,omitempty"`
	HTTPRequest    *logtypepb.HttpRequest        `json:"httpRequest,omitempty"`
	Timestamp      string                        `json:"timestamp,omitempty"`
	Resource       *resource                     `json:"resource,omitempty"`
	Labels         map[string]string             `json:"logging.googleapis.com/labels,omitempty"`
	InsertID       string                        `json:"logging.googleapis.com/insertId,omitempty"`
	Operation      *logpb.LogEntryOperation      `json:"logging.googleapis.com/operation,omitempty"`
	SourceLocation *logpb.LogEntrySourceLocation `json:"logging.googleapis.com/sourceLocation,omitempty"`
	SpanID         string                        `json:"logging.googleapis.com/spanId,omitempty"`
	Trace          string                        `json:"logging.googleapis.com/trace,omitempty"`
	TraceSampled   bool                          `json:"logging.googleapis.com/trace_sampled,omitempty"`
}

func toLogpbHTTPRequest(r *http.Request) *logtypepb.HttpRequest {
	if r == nil {
		return nil
	}
	u := *r.URL
	req := &logtypepb.HttpRequest{
		RequestMethod: r.Method,
		RequestUrl:    internal.FixUTF8(u.String()),
		UserAgent:     r.UserAgent(),
		Referer:       r.Referer(),
		Protocol:      r.Proto,
	}
	if r.Response != nil {
		req.Status = int32(r.Response.StatusCode)
	}
	return req
}
