// Package metrics defines the metric names and tags emitted by the SLA summary store.
package metrics

import (
	"time"

	obserrors "github.com/target/sla-summary/internal/observability/errors"
	"github.com/target/sla-summary/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// StoreMetric captures one summary store operation for metric emission.
type StoreMetric struct {
	Op       string
	Duration time.Duration
	Err      error
}

// EmitStoreOperation emits sla_summary.op and, when timed, sla_summary.op.duration.
func EmitStoreOperation(sink statsd.Sink, in StoreMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"op": in.Op, "result": ResultSuccess}
	if in.Err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("sla_summary.op", 1, tags)
	if in.Duration > 0 {
		sink.Timing("sla_summary.op.duration", in.Duration, CloneTags(tags))
	}
}

// EmitCacheLookup counts summary cache hits and misses.
func EmitCacheLookup(sink statsd.Sink, hit bool) {
	if sink == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	sink.Count("sla_summary.cache", 1, map[string]string{"outcome": outcome})
}

// RetentionMetric captures one retention purge pass.
type RetentionMetric struct {
	Deleted  int64
	Duration time.Duration
	Err      error
}

// EmitRetentionPurge emits the outcome of a retention pass.
func EmitRetentionPurge(sink statsd.Sink, in RetentionMetric) {
	if sink == nil {
		return
	}

	result := ResultSuccess
	switch {
	case in.Err != nil:
		result = ResultError
	case in.Deleted == 0:
		result = ResultNoop
	}
	tags := map[string]string{"result": result}
	if in.Err != nil {
		tags["error_class"] = obserrors.Classify(in.Err)
	}

	sink.Count("sla_summary.retention.run", 1, tags)
	if in.Deleted > 0 {
		sink.Count("sla_summary.retention.deleted", in.Deleted, nil)
	}
	if in.Duration > 0 {
		sink.Timing("sla_summary.retention.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
