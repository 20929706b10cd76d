// internal/auditlog/filter.go
package auditlog

import (
	"fmt"
	"sort"
	"sync"
)

type Type string

const (
	QueryStart         Type = "QUERY_START"
	QueryEnd           Type = "QUERY_END"
	MutationStart      Type = "MUTATION_START"
	MutationEnd        Type = "MUTATION_END"
	CronJobStart       Type = "CRON_JOB_START"
	CronJobEnd         Type = "CRON_JOB_END"
	APIProcessingStart Type = "API_PROCESSING_START"
	APIProcessingEnd   Type = "API_PROCESSING_END"
)

type Level string

const (
	Info  Level = "INFO"
	Error Level = "ERROR"
)

var knownTypes = map[Type]bool{
	QueryStart: true, QueryEnd: true,
	MutationStart: true, MutationEnd: true,
	CronJobStart: true, CronJobEnd: true,
	APIProcessingStart: true, APIProcessingEnd: true,
}

var knownLevels = map[Level]bool{Info: true, Error: true}

// ParseTypes validates raw type names.
func ParseTypes(raw []string) ([]Type, error) {
	out := make([]Type, 0, len(raw))
	for _, r := range raw {
		t := Type(r)
		if !knownTypes[t] {
			return nil, fmt.Errorf("unknown log type %q", r)
		}
		out = append(out, t)
	}
	return out, nil
}

// ParseLevels validates raw level names.
func ParseLevels(raw []string) ([]Level, error) {
	out := make([]Level, 0, len(raw))
	for _, r := range raw {
		l := Level(r)
		if !knownLevels[l] {
			return nil, fmt.Errorf("unknown log level %q", r)
		}
		out = append(out, l)
	}
	return out, nil
}

// Filter is the runtime-mutable (type, level) allow-list shared by every request.
// Readers racing an update see either the old or the new lists, never a mix.
type Filter struct {
	mu     sync.RWMutex
	types  map[Type]struct{}
	levels map[Level]struct{}
}

func NewFilter(types []Type, levels []Level) *Filter {
	f := &Filter{}
	f.Set(types, levels)
	return f
}

// Allows reports whether both t and l are in the allow-lists.
func (f *Filter) Allows(t Type, l Level) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, okType := f.types[t]
	_, okLevel := f.levels[l]
	return okType && okLevel
}

// Set replaces both allow-lists.
func (f *Filter) Set(types []Type, levels []Level) {
	nt := make(map[Type]struct{}, len(types))
	for _, t := range types {
		nt[t] = struct{}{}
	}
	nl := make(map[Level]struct{}, len(levels))
	for _, l := range levels {
		nl[l] = struct{}{}
	}

	f.mu.Lock()
	f.types = nt
	f.levels = nl
	f.mu.Unlock()
}

// Snapshot returns sorted copies of the current allow-lists.
func (f *Filter) Snapshot() ([]Type, []Level) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]Type, 0, len(f.types))
	for t := range f.types {
		types = append(types, t)
	}
	levels := make([]Level, 0, len(f.levels))
	for l := range f.levels {
		levels = append(levels, l)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return types, levels
}
