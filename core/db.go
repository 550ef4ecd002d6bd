package core

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// AllowedOrderings drops every ordering whose field is not in `fields`, then falls back to `defaults`.
func AllowedOrderings(orderings []DBOrdering, fields []string, defaults ...DBOrdering) []DBOrdering {
	allowed := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		for _, f := range fields {
			if ord.Field == f {
				allowed = append(allowed, ord)
				break
			}
		}
	}
	if len(allowed) == 0 {
		return defaults
	}
	return allowed
}

// PageRequest is a 1-based page of `Size` rows. A zero Size means "no limit".
type PageRequest struct {
	Number int
	Size   int
}

func (p PageRequest) Offset() int {
	if p.Size <= 0 || p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

func (p PageRequest) Limit() int { return p.Size }

// Window returns the [start, end) bounds of the page within a result set of `count` rows.
func (p PageRequest) Window(count int) (int, int) {
	if p.Size <= 0 {
		return 0, count
	}
	start := p.Offset()
	if start > count {
		start = count
	}
	end := start + p.Size
	if end > count {
		end = count
	}
	return start, end
}

// ListOptions carries the ordering and paging of a list query.
type ListOptions struct {
	Ordering []DBOrdering
	Page     PageRequest
}
