package httpx

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/target/sla-summary/internal/domain/model"
	apperrors "github.com/target/sla-summary/internal/errors"
)

const (
	defaultSummaryPageSize = 50
	maxSummaryPageSize     = 1000
)

// ParseSummaryListOptions maps list query parameters onto list options.
// Times are RFC 3339; blank parameters are ignored.
func ParseSummaryListOptions(r *http.Request) (model.SLASummaryListOptions, error) {
	q := r.URL.Query()
	var opts model.SLASummaryListOptions

	opts.AppName = optionalString(q, "app_name")
	opts.ParentID = optionalString(q, "parent_id")

	var err error
	if opts.NominalFrom, err = optionalTime(q, "nominal_from"); err != nil {
		return opts, err
	}
	if opts.NominalTo, err = optionalTime(q, "nominal_to"); err != nil {
		return opts, err
	}
	if opts.ModifiedSince, err = optionalTime(q, "modified_since"); err != nil {
		return opts, err
	}

	if raw := strings.TrimSpace(q.Get("sla_processed")); raw != "" {
		n, perr := strconv.Atoi(raw)
		if perr != nil || n < 0 || n > math.MaxInt8 {
			return opts, apperrors.ValidationField("sla_processed", "sla_processed must be between 0 and 127")
		}
		stage := int8(n) // #nosec G115 - bounds checked above
		opts.SLAProcessed = &stage
	}

	if opts.Limit, err = optionalInt(q, "limit", defaultSummaryPageSize); err != nil {
		return opts, err
	}
	if opts.Offset, err = optionalInt(q, "offset", 0); err != nil {
		return opts, err
	}
	opts.Limit = min(max(opts.Limit, 1), maxSummaryPageSize)
	opts.Offset = max(opts.Offset, 0)
	return opts, nil
}

// optionalInt rejects non-numeric values; range clamping is left to the caller.
func optionalInt(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ValidationField(key, key+" must be an integer")
	}
	return n, nil
}

func optionalString(q url.Values, key string) *string {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil
	}
	return &v
}

func optionalTime(q url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, apperrors.ValidationField(key, key+" must be an RFC 3339 timestamp")
	}
	return &t, nil
}
