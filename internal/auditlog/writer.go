// internal/auditlog/writer.go
package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"waste-docket-api-server/internal/models"

	"go.uber.org/zap"
)

// Store persists audit records and returns the new record id.
type Store interface {
	Insert(ctx context.Context, rec *models.ApiLog) (string, error)
}

// Param is one named argument of the logged operation.
type Param struct {
	Name  string
	Value any
}

func P(name string, value any) Param { return Param{Name: name, Value: value} }

// ParamsFromMap turns decoded operation variables into params ordered by name.
func ParamsFromMap(m map[string]any) []Param {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]Param, 0, len(names))
	for _, n := range names {
		out = append(out, Param{Name: n, Value: m[n]})
	}
	return out
}

type Writer struct {
	store  Store
	filter *Filter
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewWriter(store Store, filter *Filter, ttl time.Duration, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{store: store, filter: filter, ttl: ttl, log: log, now: time.Now}
}

// Filter exposes the shared allow-list for the admin operations.
func (w *Writer) Filter() *Filter { return w.filter }

// CreateApiLog writes one record and returns its id. It returns "" when the
// filter suppresses (typ, level) or when the write fails; it never panics.
func (w *Writer) CreateApiLog(ctx context.Context, typ Type, level Level, functionName string, params []Param, additionalMessage, startLogID string) (id string) {
	if w == nil || !w.filter.Allows(typ, level) {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("audit log write panicked", zap.String("functionName", functionName), zap.Any("panic", r))
			id = ""
		}
	}()

	now := w.now()
	rec := &models.ApiLog{
		Type:              string(typ),
		Level:             string(level),
		FunctionName:      functionName,
		FunctionParams:    stringify(params),
		AdditionalMessage: additionalMessage,
		StartLogID:        startLogID,
		CreatedAt:         now,
		ExpireAt:          now.Add(w.ttl),
	}

	id, err := w.store.Insert(ctx, rec)
	if err == nil {
		return id
	}

	w.log.Error("failed to write audit log", zap.String("functionName", functionName), zap.Error(err))
	fallback := &models.ApiLog{
		Type:              string(typ),
		Level:             string(Error),
		FunctionName:      "createApiLog",
		FunctionParams:    stringify([]Param{P("functionName", functionName)}),
		AdditionalMessage: fmt.Sprintf("failed to write log for %s: %v", functionName, err),
		StartLogID:        startLogID,
		CreatedAt:         now,
		ExpireAt:          now.Add(w.ttl),
	}
	if _, ferr := w.store.Insert(ctx, fallback); ferr != nil {
		w.log.Error("failed to write audit fallback record", zap.Error(ferr))
	}
	return ""
}

func stringify(params []Param) []models.FunctionParam {
	out := make([]models.FunctionParam, 0, len(params))
	for _, p := range params {
		out = append(out, models.FunctionParam{
			ParamName:  p.Name,
			ParamValue: stringValue(p.Value),
			ParamType:  typeName(p.Value),
		})
	}
	return out
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int32, int64, float32, float64, json.Number:
		return "number"
	case []any:
		return "array"
	default:
		return "object"
	}
}
