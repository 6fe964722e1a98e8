package postgres

import (
	"fmt"
	"regexp"
	"strings"

	"example.com/greenpoints/internal/docstore"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type aggregatePlan struct {
	query   string
	args    []interface{}
	columns []string
}

// planAggregate translates a pipeline into one GROUP BY query.
// Field names travel as bind parameters; output aliases must be plain identifiers.
func planAggregate(collection string, pipeline docstore.Pipeline) (aggregatePlan, error) {
	stages := []docstore.Stage(pipeline)
	var match *docstore.Match
	if len(stages) > 0 {
		if m, ok := stages[0].(docstore.Match); ok {
			match = &m
			stages = stages[1:]
		}
	}
	if len(stages) == 0 {
		return aggregatePlan{}, fmt.Errorf("%w: missing group stage", docstore.ErrUnsupportedPipeline)
	}
	group, ok := stages[0].(docstore.Group)
	if !ok {
		return aggregatePlan{}, fmt.Errorf("%w: expected group, got %T", docstore.ErrUnsupportedPipeline, stages[0])
	}
	stages = stages[1:]

	var sort *docstore.Sort
	var limit *docstore.Limit
	for _, st := range stages {
		switch stage := st.(type) {
		case docstore.Sort:
			if sort != nil || limit != nil {
				return aggregatePlan{}, fmt.Errorf("%w: sort must precede limit and appear once", docstore.ErrUnsupportedPipeline)
			}
			sort = &stage
		case docstore.Limit:
			if limit != nil {
				return aggregatePlan{}, fmt.Errorf("%w: limit appears twice", docstore.ErrUnsupportedPipeline)
			}
			limit = &stage
		default:
			return aggregatePlan{}, fmt.Errorf("%w: unexpected stage %T after group", docstore.ErrUnsupportedPipeline, st)
		}
	}

	args := []interface{}{collection, group.By}
	bind := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	selects := []string{"body->>($2::text) AS grp"}
	columns := make([]string, 0, len(group.Accumulators))
	for _, acc := range group.Accumulators {
		if !identifierPattern.MatchString(acc.As) {
			return aggregatePlan{}, fmt.Errorf("%w: invalid accumulator name %q", docstore.ErrUnsupportedPipeline, acc.As)
		}
		if acc.Field == "" {
			selects = append(selects, fmt.Sprintf(`COUNT(*)::bigint AS "%s"`, acc.As))
		} else {
			selects = append(selects, fmt.Sprintf(`COALESCE(SUM((body->>(%s::text))::bigint), 0)::bigint AS "%s"`, bind(acc.Field), acc.As))
		}
		columns = append(columns, acc.As)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(selects, ", "))
	b.WriteString(" FROM documents WHERE collection = $1")
	if match != nil && len(match.Filter) > 0 {
		containment, err := encodeFilter(match.Filter)
		if err != nil {
			return aggregatePlan{}, err
		}
		b.WriteString(" AND body @> ")
		b.WriteString(bind(containment))
		b.WriteString("::jsonb")
	}
	b.WriteString(" GROUP BY grp")

	if sort != nil {
		target := ""
		switch {
		case sort.Field == docstore.IDField:
			target = "grp"
		case contains(columns, sort.Field):
			target = fmt.Sprintf(`"%s"`, sort.Field)
		default:
			return aggregatePlan{}, fmt.Errorf("%w: cannot sort by %q", docstore.ErrUnsupportedPipeline, sort.Field)
		}
		direction := "ASC"
		if sort.Descending {
			direction = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s", target, direction)
	}
	if limit != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(bind(limit.N))
	}

	return aggregatePlan{query: b.String(), args: args, columns: columns}, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
