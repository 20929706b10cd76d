// internal/resolvers/audit.go
package resolvers

import (
	"context"
	"errors"

	"waste-docket-api-server/internal/auditlog"
	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/repository"
)

func (r *Resolver) auditOperations() []*Operation {
	return []*Operation{
		query("getLogFilter", admin403, r.getLogFilter),
		mutation("updateLogFilter", admin403, r.updateLogFilter),
		query("getApiLogsForAdmin", admin403, r.getApiLogsForAdmin),
	}
}

var errAuditNotConfigured = errors.New("audit log is not configured")

type LogFilterResult struct {
	Types    []auditlog.Type  `json:"types"`
	Levels   []auditlog.Level `json:"levels"`
	Response `json:"response"`
}

func (r *Resolver) getLogFilter(_ context.Context, _ *Call, _ struct{}) LogFilterResult {
	if r.Audit == nil {
		return LogFilterResult{Response: internal(errAuditNotConfigured)}
	}
	types, levels := r.Audit.Filter().Snapshot()
	return LogFilterResult{Types: types, Levels: levels, Response: ok("Log filter found")}
}

type LogFilterInput struct {
	Types  []string `json:"types"`
	Levels []string `json:"levels"`
}

// updateLogFilter replaces both allow-lists; an empty list suppresses everything.
func (r *Resolver) updateLogFilter(_ context.Context, _ *Call, in LogFilterInput) LogFilterResult {
	if r.Audit == nil {
		return LogFilterResult{Response: internal(errAuditNotConfigured)}
	}
	types, err := auditlog.ParseTypes(in.Types)
	if err != nil {
		return LogFilterResult{Response: badRequest(err.Error())}
	}
	levels, err := auditlog.ParseLevels(in.Levels)
	if err != nil {
		return LogFilterResult{Response: badRequest(err.Error())}
	}
	f := r.Audit.Filter()
	f.Set(types, levels)
	types, levels = f.Snapshot()
	return LogFilterResult{Types: types, Levels: levels, Response: ok("Log filter updated")}
}

type ApiLogsInput struct {
	Type         string `json:"type"`
	Level        string `json:"level"`
	FunctionName string `json:"functionName"`
	PageInput
}

func (r *Resolver) getApiLogsForAdmin(ctx context.Context, _ *Call, in ApiLogsInput) PageResult[models.ApiLog] {
	items, total, err := r.ApiLogs.List(ctx, repository.ApiLogFilter{
		Type:         in.Type,
		Level:        in.Level,
		FunctionName: in.FunctionName,
	}, in.page())
	if err != nil {
		return PageResult[models.ApiLog]{Response: internal(err)}
	}
	return PageResult[models.ApiLog]{Items: items, TotalCount: total, Response: ok("Logs found")}
}

// track brackets fn with a start and an end audit record. fn's message or
// error becomes the end record's additional message.
func (r *Resolver) track(ctx context.Context, start, end auditlog.Type, name string, params []auditlog.Param, fn func() (string, error)) error {
	startID := r.Audit.CreateApiLog(ctx, start, auditlog.Info, name, params, "", "")
	msg, err := fn()
	level := auditlog.Info
	if err != nil {
		level, msg = auditlog.Error, err.Error()
	}
	r.Audit.CreateApiLog(ctx, end, level, name, params, msg, startID)
	return err
}

// processing records one step of a larger operation.
func (r *Resolver) processing(ctx context.Context, name string, params []auditlog.Param, fn func() error) error {
	return r.track(ctx, auditlog.APIProcessingStart, auditlog.APIProcessingEnd, name, params, func() (string, error) {
		return "", fn()
	})
}
