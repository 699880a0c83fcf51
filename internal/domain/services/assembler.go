package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/tasklink/tasklink/internal/domain/entities"
	"github.com/tasklink/tasklink/internal/domain/ports"
)

// AssemblerService builds presentation-ready relationship views.
type AssemblerService struct {
	relationalDB ports.RelationalDB
}

// NewAssemblerService creates a new AssemblerService.
func NewAssemblerService(relationalDB ports.RelationalDB) *AssemblerService {
	return &AssemblerService{relationalDB: relationalDB}
}

// GroupsForTask loads every relationship touching the task and groups the
// edges by type. Directional types split into forward and reverse entries
// with the matching label; non-directional types merge both orientations
// into a single undirected list. Each entry carries a summary of the task
// on the opposite side, and reverse entries are flagged when their source
// currently satisfies the type's blocking-source condition.
func (s *AssemblerService) GroupsForTask(ctx context.Context, taskID string) ([]entities.RelationshipGroup, error) {
	task, err := s.relationalDB.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("checking task: %w", err)
	}
	if task == nil {
		return nil, entities.NotFoundf("task not found: %s", taskID)
	}

	details, err := s.relationalDB.ListRelationshipDetailsForTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}

	groups := make(map[string]*entities.RelationshipGroup)
	for _, d := range details {
		g, ok := groups[d.Type.ID]
		if !ok {
			g = &entities.RelationshipGroup{Type: d.Type}
			groups[d.Type.ID] = g
		}

		forward := d.Relationship.SourceTaskID == taskID
		item := entities.GroupItem{
			RelationshipID: d.Relationship.ID,
			Label:          d.Type.Label(forward),
			Note:           d.Relationship.Note,
			Data:           d.Relationship.Data,
		}
		if forward {
			item.Task = d.TargetTask
		} else {
			item.Task = d.SourceTask
			item.IsBlocking = IsBlockingSource(&d.Type, d.SourceTask.Status)
			if item.IsBlocking {
				g.Blocked = true
			}
		}

		switch {
		case !d.Type.IsDirectional:
			g.Undirected = append(g.Undirected, item)
		case forward:
			g.Forward = append(g.Forward, item)
		default:
			g.Reverse = append(g.Reverse, item)
		}
	}

	result := make([]entities.RelationshipGroup, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Type.TypeName < result[j].Type.TypeName
	})
	return result, nil
}
