package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/sla-summary/internal/domain/model"
	apperrors "github.com/target/sla-summary/internal/errors"
	"github.com/target/sla-summary/internal/mocks"
	"github.com/target/sla-summary/internal/service"
	"github.com/target/sla-summary/internal/testutil"
)

func newRouterWithMock(t *testing.T) (http.Handler, *mocks.MockSLASummaryRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSLASummaryRepository(ctrl)
	svc, err := service.NewSLASummaryService(service.SLASummaryServiceOptions{Repo: repo})
	require.NoError(t, err)
	return NewRouter(RouterServices{Summaries: svc}), repo
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	r := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSLASummaryHandlers_Get(t *testing.T) {
	stored := testutil.NewSLASummary("job-1").
		WithApp("billing", "etl").
		WithStatus("RUNNING", model.SLAStatusInProcess, model.EventStatusStartMet).
		Build()

	t.Run("renders in the requested zone", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().GetByJobID(gomock.Any(), "job-1").Return(stored.Clone(), nil)

		w := doRequest(t, h, http.MethodGet, "/api/sla/summaries/job-1?tz=America/New_York", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "job-1", body["job_id"])
		assert.Equal(t, "2024-01-01T07:00:00-05:00", body["nominal_time"])
		assert.Equal(t, "IN_PROCESS", body["sla_status"])
		assert.Nil(t, body["actual_start"])
		assert.InDelta(t, -1, body["actual_duration"], 0)
	})

	t.Run("defaults to UTC", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().GetByJobID(gomock.Any(), "job-1").Return(stored.Clone(), nil)

		w := doRequest(t, h, http.MethodGet, "/api/sla/summaries/job-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2024-01-01T12:00:00Z", decodeBody(t, w)["nominal_time"])
	})

	t.Run("unknown zone", func(t *testing.T) {
		h, _ := newRouterWithMock(t)
		w := doRequest(t, h, http.MethodGet, "/api/sla/summaries/job-1?tz=Mars/Olympus", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decodeBody(t, w)["error"])
	})

	t.Run("not found", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().GetByJobID(gomock.Any(), "nope").Return(nil, apperrors.NotFoundf("sla summary %q not found", "nope"))

		w := doRequest(t, h, http.MethodGet, "/api/sla/summaries/nope", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "not_found", body["error"])
		assert.Contains(t, body["message"], "nope")
	})

	t.Run("internal errors hide details", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().GetByJobID(gomock.Any(), "job-1").Return(nil, errors.New("pq: connection refused"))

		w := doRequest(t, h, http.MethodGet, "/api/sla/summaries/job-1", nil)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "internal", body["error"])
		assert.Equal(t, "internal error", body["message"])
	})
}

func TestSLASummaryHandlers_List(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, opts model.SLASummaryListOptions) ([]*model.SLASummary, error) {
				require.NotNil(t, opts.AppName)
				assert.Equal(t, "billing", *opts.AppName)
				require.NotNil(t, opts.SLAProcessed)
				assert.Equal(t, int8(0), *opts.SLAProcessed)
				require.NotNil(t, opts.NominalFrom)
				assert.True(t, opts.NominalFrom.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
				assert.Equal(t, 20, opts.Limit)
				return []*model.SLASummary{model.NewSLASummary("a")}, nil
			})

		w := doRequest(t, h, http.MethodGet,
			"/api/sla/summaries?app_name=billing&sla_processed=0&nominal_from=2024-01-01T00:00:00Z&limit=20", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		items, ok := body["items"].([]any)
		require.True(t, ok)
		require.Len(t, items, 1)
		assert.InDelta(t, 20, body["limit"], 0)
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)

		w := doRequest(t, h, http.MethodGet, "/api/sla/summaries", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"items":[]`)
	})

	t.Run("bad timestamp", func(t *testing.T) {
		h, _ := newRouterWithMock(t)
		w := doRequest(t, h, http.MethodGet, "/api/sla/summaries?modified_since=yesterday", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSLASummaryHandlers_Put(t *testing.T) {
	t.Run("upserts with path job id", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *model.SLASummary) error {
			assert.Equal(t, "job-7", s.JobID)
			assert.Equal(t, "billing", s.AppName)
			assert.NotNil(t, s.LastModified)
			return nil
		})

		w := doRequest(t, h, http.MethodPut, "/api/sla/summaries/job-7", `{"app_name":"billing","sla_processed":1}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "job-7", decodeBody(t, w)["job_id"])
	})

	t.Run("actual duration is derived from the actual times", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *model.SLASummary) error {
			assert.Equal(t, int64(3_600_000), s.ActualDuration)
			return nil
		})

		w := doRequest(t, h, http.MethodPut, "/api/sla/summaries/j1",
			`{"actual_start":"2024-01-01T00:00:00Z","actual_end":"2024-01-01T01:00:00Z"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.InDelta(t, 3_600_000, decodeBody(t, w)["actual_duration"], 0)
	})

	t.Run("supplied actual duration without times is ignored", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *model.SLASummary) error {
			assert.Equal(t, model.UnknownDuration, s.ActualDuration)
			return nil
		})

		w := doRequest(t, h, http.MethodPut, "/api/sla/summaries/j2", `{"actual_duration":999}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.InDelta(t, -1, decodeBody(t, w)["actual_duration"], 0)
	})

	t.Run("mismatched job id", func(t *testing.T) {
		h, _ := newRouterWithMock(t)
		w := doRequest(t, h, http.MethodPut, "/api/sla/summaries/job-7", `{"job_id":"job-8"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid status value", func(t *testing.T) {
		h, _ := newRouterWithMock(t)
		w := doRequest(t, h, http.MethodPut, "/api/sla/summaries/job-7", `{"sla_status":"LATE"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_json", decodeBody(t, w)["error"])
	})

	t.Run("conflict", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).
			Return(&apperrors.AppError{Code: apperrors.ErrCodeConflict, Message: "duplicate"})

		w := doRequest(t, h, http.MethodPut, "/api/sla/summaries/job-7", `{}`)
		require.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestSLASummaryHandlers_Create(t *testing.T) {
	t.Run("registers from calc", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)

		calc := model.SLACalcStatus{
			JobID:        "job-5",
			JobStatus:    "PREP",
			Registration: &model.SLARegistration{AppName: "billing", User: "etl"},
		}
		w := doRequest(t, h, http.MethodPost, "/api/sla/summaries", calc)
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "job-5", body["job_id"])
		assert.Equal(t, "etl", body["user"])
	})

	t.Run("stage outside column range", func(t *testing.T) {
		h, _ := newRouterWithMock(t)
		w := doRequest(t, h, http.MethodPost, "/api/sla/summaries",
			`{"job_id":"job-5","sla_processed":300,"registration":{"app_name":"billing"}}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "validation", body["error"])
		assert.Equal(t, "sla_processed", body["field"])
	})

	t.Run("missing registration", func(t *testing.T) {
		h, _ := newRouterWithMock(t)
		w := doRequest(t, h, http.MethodPost, "/api/sla/summaries", `{"job_id":"job-5"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decodeBody(t, w)["error"])
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		h, _ := newRouterWithMock(t)
		w := doRequest(t, h, http.MethodPost, "/api/sla/summaries", `{"job_id":"job-5","bogus":true}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_json", decodeBody(t, w)["error"])
	})
}

func TestSLASummaryHandlers_RecordActuals(t *testing.T) {
	h, repo := newRouterWithMock(t)
	repo.EXPECT().GetByJobID(gomock.Any(), "job-2").Return(model.NewSLASummary("job-2"), nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	w := doRequest(t, h, http.MethodPost, "/api/sla/summaries/job-2/actuals",
		`{"actual_start":"2024-01-01T10:00:00Z","actual_end":"2024-01-01T10:00:30Z"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 30000, decodeBody(t, w)["actual_duration"], 0)
}

func TestSLASummaryHandlers_MarkProcessed(t *testing.T) {
	t.Run("sets stage", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().MarkProcessed(gomock.Any(), "job-3", int8(2)).Return(nil)

		w := doRequest(t, h, http.MethodPost, "/api/sla/summaries/job-3/processed", `{"stage":2}`)
		require.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("stage is required", func(t *testing.T) {
		h, _ := newRouterWithMock(t)
		w := doRequest(t, h, http.MethodPost, "/api/sla/summaries/job-3/processed", `{}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decodeBody(t, w)["error"])
	})
}

func TestSLASummaryHandlers_Delete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().Delete(gomock.Any(), "job-4").Return(true, nil)

		w := doRequest(t, h, http.MethodDelete, "/api/sla/summaries/job-4", nil)
		require.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		h, repo := newRouterWithMock(t)
		repo.EXPECT().Delete(gomock.Any(), "job-4").Return(false, nil)

		w := doRequest(t, h, http.MethodDelete, "/api/sla/summaries/job-4", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.NotFoundf("x"), http.StatusNotFound},
		{&apperrors.AppError{Code: apperrors.ErrCodeConflict}, http.StatusConflict},
		{apperrors.Validation("x"), http.StatusBadRequest},
		{&apperrors.AppError{Code: apperrors.ErrCodeTimeout}, http.StatusGatewayTimeout},
		{&apperrors.AppError{Code: apperrors.ErrCodeCanceled}, http.StatusServiceUnavailable},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForError(tt.err), "error %v", tt.err)
	}
}
