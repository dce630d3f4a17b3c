package preset

import "time"

// Preset is a saved routing configuration tied to one of the MB-76's
// 32 hardware banks. The routing matrix maps input numbers to the
// outputs they feed.
type Preset struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	BankNumber    int           `json:"bank_number"`
	Description   string        `json:"description"`
	RoutingMatrix map[int][]int `json:"routing_matrix"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// RouteCount returns the number of connections in the preset's matrix.
func (p *Preset) RouteCount() int {
	count := 0
	for _, outputs := range p.RoutingMatrix {
		count += len(outputs)
	}
	return count
}

func (p *Preset) clone() Preset {
	c := *p
	c.RoutingMatrix = cloneMatrix(p.RoutingMatrix)
	return c
}

func cloneMatrix(matrix map[int][]int) map[int][]int {
	if matrix == nil {
		return nil
	}
	c := make(map[int][]int, len(matrix))
	for input, outputs := range matrix {
		c[input] = append([]int(nil), outputs...)
	}
	return c
}

// Summary is the list view of a preset, with the routing matrix reduced
// to a connection count.
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	BankNumber  int       `json:"bank_number"`
	Description string    `json:"description"`
	RouteCount  int       `json:"route_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Preset) summary() Summary {
	return Summary{
		ID:          p.ID,
		Name:        p.Name,
		BankNumber:  p.BankNumber,
		Description: p.Description,
		RouteCount:  p.RouteCount(),
		UpdatedAt:   p.UpdatedAt,
	}
}
