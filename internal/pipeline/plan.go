package pipeline

import (
	"github.com/mavmaso/ficherors/internal/model"
	"github.com/mavmaso/ficherors/internal/template"
)

// DestinationHeader names the normalized phone column of every output.
const DestinationHeader = "destination"

// plan is the per-invocation layout of the output table.
type plan struct {
	specs     model.FunctionSpecs
	kinds     []template.Kind
	sources   []int // index into the non-phone columns, -1 when missing
	leftovers []int // non-phone columns carried after the generated ones
	header    []string
}

func newPlan(headers []string, specs model.FunctionSpecs) plan {
	var rest []string
	if len(headers) > 0 {
		rest = headers[1:]
	}

	p := plan{specs: specs}
	p.header = make([]string, 0, 1+len(specs)+len(rest))
	p.header = append(p.header, DestinationHeader)

	if len(specs) == 0 {
		p.header = append(p.header, rest...)
		return p
	}

	index := make(map[string]int, len(rest))
	for i, h := range rest {
		index[h] = i
	}

	// columns read by a function or shadowed by an output name
	used := make(map[string]struct{}, 2*len(specs))
	for _, s := range specs {
		kind := template.ParseKind(s.Fn)
		src := -1
		if s.Target != nil {
			if i, ok := index[*s.Target]; ok {
				src = i
				if kind.ReadsSource() {
					used[*s.Target] = struct{}{}
				}
			}
		}
		used[s.Name] = struct{}{}

		p.kinds = append(p.kinds, kind)
		p.sources = append(p.sources, src)
		p.header = append(p.header, s.Name)
	}

	for i, h := range rest {
		if _, ok := used[h]; ok {
			continue
		}
		p.leftovers = append(p.leftovers, i)
		p.header = append(p.header, h)
	}

	return p
}
