// internal/search/query.go
package search

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CaseInsensitive orders text columns ignoring case.
var CaseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// Page selects a window of results. A zero Size means no pagination.
type Page struct {
	Number int64
	Size   int64
}

func NewPage(number, size *int64) Page {
	var p Page
	if number != nil {
		p.Number = *number
	}
	if size != nil {
		p.Size = *size
	}
	return p
}

func (p Page) Paginated() bool { return p.Size > 0 }

// Skip is the number of results before the page; pages are 1-based.
func (p Page) Skip() int64 {
	if !p.Paginated() || p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

func (p Page) Limit() int64 {
	if !p.Paginated() {
		return 0
	}
	return p.Size
}

// Window returns the [lo, hi) slice bounds of the page over n results.
func (p Page) Window(n int) (lo, hi int) {
	if !p.Paginated() {
		return 0, n
	}
	lo = int(p.Skip())
	if lo > n {
		lo = n
	}
	hi = lo + int(p.Size)
	if hi > n {
		hi = n
	}
	return lo, hi
}

// Sort resolves a wire column and direction against an allow-list of columns.
// Unknown columns fall back to newest first.
func Sort(columns map[string]string, column, direction string) bson.D {
	path, ok := columns[column]
	if !ok {
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
	dir := -1
	if strings.EqualFold(direction, "asc") || direction == "1" {
		dir = 1
	}
	return bson.D{{Key: path, Value: dir}, {Key: "_id", Value: dir}}
}

// Query is a scoped, free-text searchable listing.
type Query struct {
	Scope     bson.D // fixed constraints applied before any join
	Term      string
	Fields    []string
	DateField string
	DateFrom  string
	DateTo    string
	Sort      bson.D
	Page      Page
}

// TermFilter is the disjunction of case-insensitive substring matches.
func TermFilter(term string, fields []string) bson.D {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return nil
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.D{{Key: f, Value: re}})
	}
	return bson.D{{Key: "$or", Value: or}}
}

// PostJoinFilter combines the term disjunction with the string date range.
// The range compares strings, so dates must be stored as YYYY-MM-DD.
func (q Query) PostJoinFilter() bson.D {
	var and bson.A
	if tf := TermFilter(q.Term, q.Fields); tf != nil {
		and = append(and, tf)
	}
	if q.DateField != "" && (q.DateFrom != "" || q.DateTo != "") {
		rng := bson.D{}
		if q.DateFrom != "" {
			rng = append(rng, bson.E{Key: "$gte", Value: q.DateFrom})
		}
		if q.DateTo != "" {
			rng = append(rng, bson.E{Key: "$lte", Value: q.DateTo})
		}
		and = append(and, bson.D{{Key: q.DateField, Value: rng}})
	}
	switch len(and) {
	case 0:
		return nil
	case 1:
		return and[0].(bson.D)
	}
	return bson.D{{Key: "$and", Value: and}}
}

// Pipelines builds the page pipeline and the matching count pipeline.
// joins are inserted between the scope match and the search match.
func (q Query) Pipelines(joins ...bson.D) (items mongo.Pipeline, count mongo.Pipeline) {
	var base mongo.Pipeline
	if len(q.Scope) > 0 {
		base = append(base, bson.D{{Key: "$match", Value: q.Scope}})
	}
	base = append(base, joins...)
	if f := q.PostJoinFilter(); f != nil {
		base = append(base, bson.D{{Key: "$match", Value: f}})
	}

	count = append(append(mongo.Pipeline{}, base...), bson.D{{Key: "$count", Value: "totalCount"}})

	items = append(mongo.Pipeline{}, base...)
	if len(q.Sort) > 0 {
		items = append(items, bson.D{{Key: "$sort", Value: q.Sort}})
	}
	if q.Page.Paginated() {
		items = append(items,
			bson.D{{Key: "$skip", Value: q.Page.Skip()}},
			bson.D{{Key: "$limit", Value: q.Page.Limit()}},
		)
	}
	return items, count
}

// LeftJoin is a $lookup by id followed by an $unwind that keeps parents
// without a match.
func LeftJoin(from, localField, as string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: from},
			{Key: "localField", Value: localField},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: as},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + as},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}
