// Package mocks provides gomock implementations of the SLA summary ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockSLASummaryRepository(ctrl)
//	repo.EXPECT().GetByJobID(gomock.Any(), "wf-1").Return(summary, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=sla_summary_repository_mock.go github.com/target/sla-summary/internal/core SLASummaryRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=retention_repository_mock.go github.com/target/sla-summary/internal/core RetentionRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/target/sla-summary/internal/core CacheRepository
