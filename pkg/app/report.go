package app

import (
	"sort"
	"time"

	"tableflip.dev/newday/pkg/task"
)

// ReportSection groups completed tasks of one category.
type ReportSection struct {
	Type  task.Type   `json:"type" yaml:"type"`
	Tasks []task.Task `json:"tasks" yaml:"tasks"`
}

// ReportResult lists the tasks completed inside a time window.
type ReportResult struct {
	Since    time.Time       `json:"since" yaml:"since"`
	Until    time.Time       `json:"until" yaml:"until"`
	Sections []ReportSection `json:"sections" yaml:"sections"`
	Total    int             `json:"total" yaml:"total"`
}

// Report returns tasks completed between since and until, grouped by category
// and ordered by completion time.
func (s *Service) Report(since, until time.Time) ReportResult {
	if since.After(until) {
		since, until = until, since
	}
	res := ReportResult{Since: since, Until: until}
	byType := make(map[task.Type][]task.Task)
	for _, tk := range s.Select.CompletedTasks() {
		if tk.Completed == nil {
			continue
		}
		at := tk.Completed.Time
		if at.Before(since) || at.After(until) {
			continue
		}
		byType[tk.Type] = append(byType[tk.Type], tk)
		res.Total++
	}
	for _, typ := range task.AllTypes() {
		tasks := byType[typ]
		if len(tasks) == 0 {
			continue
		}
		sortByCompletion(tasks)
		res.Sections = append(res.Sections, ReportSection{Type: typ, Tasks: tasks})
	}
	return res
}

func sortByCompletion(tasks []task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Completed.Before(tasks[j].Completed.Time)
	})
}
