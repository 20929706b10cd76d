// internal/resolvers/registry.go
package resolvers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"waste-docket-api-server/internal/auditlog"
	"waste-docket-api-server/internal/models"
	"waste-docket-api-server/internal/secrets"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Kind uint8

const (
	Query Kind = iota
	Mutation
)

func (k Kind) auditTypes() (start, end auditlog.Type) {
	if k == Mutation {
		return auditlog.MutationStart, auditlog.MutationEnd
	}
	return auditlog.QueryStart, auditlog.QueryEnd
}

// Credentials are what the transport extracted from the request.
type Credentials struct {
	Token  string
	APIKey string
}

// Call carries the guard's findings into the handler.
type Call struct {
	Operation string
	User      *models.User // nil for Public and APIKey operations
	Bundle    *secrets.Bundle
}

type Operation struct {
	Name  string
	Kind  Kind
	Guard Guard
	run   func(ctx context.Context, r *Resolver, call *Call, raw json.RawMessage) Enveloped
}

func newOp[In any, Out Enveloped](kind Kind, name string, g Guard, h func(context.Context, *Call, In) Out) *Operation {
	return &Operation{
		Name:  name,
		Kind:  kind,
		Guard: g,
		run: func(ctx context.Context, r *Resolver, call *Call, raw json.RawMessage) Enveloped {
			var in In
			if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
				if err := json.Unmarshal(trimmed, &in); err != nil {
					return Failure{badRequest("Invalid input: " + err.Error())}
				}
			}
			if err := r.validateInput(in); err != nil {
				return Failure{badRequest(err.Error())}
			}
			return h(ctx, call, in)
		},
	}
}

func query[In any, Out Enveloped](name string, g Guard, h func(context.Context, *Call, In) Out) *Operation {
	return newOp(Query, name, g, h)
}

func mutation[In any, Out Enveloped](name string, g Guard, h func(context.Context, *Call, In) Out) *Operation {
	return newOp(Mutation, name, g, h)
}

// Operations lists the registered operation names.
func (r *Resolver) Operations() []string {
	names := make([]string, 0, len(r.ops))
	for n := range r.ops {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Resolver) Lookup(name string) (*Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Execute runs one operation and always returns an envelope. known is false
// when no operation has that name.
func (r *Resolver) Execute(ctx context.Context, name string, creds Credentials, variables json.RawMessage) (out Enveloped, known bool) {
	op, ok := r.ops[name]
	if !ok {
		return Failure{fail(http.StatusNotFound, fmt.Sprintf("Unknown operation %q", name))}, false
	}

	startType, endType := op.Kind.auditTypes()
	params := auditParams(variables)
	startID := r.Audit.CreateApiLog(ctx, startType, auditlog.Info, name, params, "", "")

	defer func() {
		if p := recover(); p != nil {
			r.Log.Error("operation panicked", zap.String("operation", name), zap.Any("panic", p), zap.Stack("stack"))
			out, known = Failure{internal(fmt.Errorf("%v", p))}, true
		}
		resp := out.Envelope()
		level := auditlog.Info
		if resp.Status >= http.StatusBadRequest {
			level = auditlog.Error
		}
		if resp.Status >= http.StatusInternalServerError {
			r.Log.Error("operation failed", zap.String("operation", name), zap.String("message", resp.Message))
		}
		r.Audit.CreateApiLog(ctx, endType, level, name, params, resp.Message, startID)
	}()

	call, denied := r.authorize(ctx, op, creds)
	if denied != nil {
		return Failure{*denied}, true
	}
	return op.run(ctx, r, call, variables), true
}

// Invoke marshals a typed input and executes the operation with it.
func (r *Resolver) Invoke(ctx context.Context, name string, creds Credentials, input any) (Enveloped, bool) {
	raw, err := json.Marshal(input)
	if err != nil {
		return Failure{badRequest("Invalid input: " + err.Error())}, true
	}
	return r.Execute(ctx, name, creds, raw)
}

// large or binary variables are logged by size only
var redactedParams = map[string]bool{"chunk": true, "file": true}

func auditParams(raw json.RawMessage) []auditlog.Param {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var vars map[string]any
	if err := json.Unmarshal(raw, &vars); err != nil {
		return []auditlog.Param{auditlog.P("variables", string(raw))}
	}
	for k, v := range vars {
		if redactedParams[k] {
			if s, ok := v.(string); ok {
				vars[k] = fmt.Sprintf("<%d bytes>", len(s))
			}
		}
	}
	return auditlog.ParamsFromMap(vars)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (r *Resolver) validateInput(in any) error {
	v := reflect.ValueOf(in)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	err := r.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email")
		case "oneof":
			msgs = append(msgs, fe.Field()+" must be one of "+fe.Param())
		default:
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
		}
	}
	return errors.New("Invalid input: " + strings.Join(msgs, "; "))
}
