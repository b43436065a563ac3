package seeder

import (
	"fmt"
	"sort"
)

type DependencyGraph struct {
	tables map[string]*TableSpec
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		tables: make(map[string]*TableSpec),
	}
}

func (g *DependencyGraph) AddTable(table *TableSpec) {
	g.tables[table.Name] = table
}

// BuildInsertionOrder returns table names so that every table follows the
// tables it depends on. Names are visited alphabetically, which makes the
// order stable between runs.
func (g *DependencyGraph) BuildInsertionOrder() ([]string, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	var order []string

	var visit func(string) error
	visit = func(tableName string) error {
		if temp[tableName] {
			return fmt.Errorf("%w involving table: %s", ErrCycle, tableName)
		}
		if visited[tableName] {
			return nil
		}

		table, ok := g.tables[tableName]
		if !ok {
			return fmt.Errorf("unknown table referenced as dependency: %s", tableName)
		}

		temp[tableName] = true
		for _, dep := range table.DependsOn {
			if dep != tableName { // Skip self-references
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		temp[tableName] = false
		visited[tableName] = true
		order = append(order, tableName)
		return nil
	}

	for _, tableName := range g.names() {
		if !visited[tableName] {
			if err := visit(tableName); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}

// BuildPhases groups tables into phases: a table lands in the phase right
// after its deepest dependency, so every table of a phase can be populated
// concurrently once the earlier phases are complete.
func (g *DependencyGraph) BuildPhases() ([][]*TableSpec, error) {
	if len(g.tables) == 0 {
		return nil, nil
	}
	order, err := g.BuildInsertionOrder()
	if err != nil {
		return nil, err
	}

	depth := make(map[string]int, len(order))
	maxDepth := 0
	for _, name := range order {
		d := 0
		for _, dep := range g.tables[name].DependsOn {
			if dep != name && depth[dep]+1 > d {
				d = depth[dep] + 1
			}
		}
		depth[name] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	phases := make([][]*TableSpec, maxDepth+1)
	for _, name := range g.names() {
		d := depth[name]
		phases[d] = append(phases[d], g.tables[name])
	}
	return phases, nil
}

func (g *DependencyGraph) names() []string {
	names := make([]string, 0, len(g.tables))
	for name := range g.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
