package internal

import (
	"slices"
	"strings"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/jackc/pgx/v5/pgtype"
)

// ActivityStatisticsSource provides the rows, activity statistics are aggregated from.
type ActivityStatisticsSource struct {
	ActivityInstances []*ActivityInstanceEntity
	Incidents         []*IncidentEntity
	ProcessInstances  []*ProcessInstanceEntity
}

// AggregateActivityStatistics classifies activity instances and incidents per activity.
//
// Only rows of process instances, matching the criteria, are considered. Activities without any contribution to a
// running instance or a requested counter are omitted.
func AggregateActivityStatistics(c history.HistoricActivityStatisticsCriteria, source ActivityStatisticsSource) []history.HistoricActivityStatistics {
	processInstanceIds := make(map[string]bool)
	for _, e := range source.ProcessInstances {
		if matchesStatisticsProcessInstance(c, e) {
			processInstanceIds[e.Id] = true
		}
	}

	statistics := make(map[string]*history.HistoricActivityStatistics)
	get := func(activityId string) *history.HistoricActivityStatistics {
		s, ok := statistics[activityId]
		if !ok {
			s = &history.HistoricActivityStatistics{Id: activityId}
			statistics[activityId] = s
		}
		return s
	}

	for _, e := range source.ActivityInstances {
		if !processInstanceIds[e.ProcessInstanceId] {
			continue
		}

		s := get(e.ActivityId)
		if !e.EndTime.Valid {
			s.Instances++
			continue
		}

		if c.IncludeFinished {
			s.Finished++
		}
		if c.IncludeCanceled && e.EndState == history.ActivityCanceled {
			s.Canceled++
		}
		if c.IncludeCompleteScope && e.EndState == history.ActivityCompleteScope {
			s.CompleteScope++
		}
	}

	if c.IncludeIncidents {
		for _, e := range source.Incidents {
			if !e.ActivityId.Valid || !processInstanceIds[e.ProcessInstanceId.String] {
				continue
			}

			s := get(e.ActivityId.String)
			switch e.State {
			case history.IncidentOpen:
				s.OpenIncidents++
			case history.IncidentResolved:
				s.ResolvedIncidents++
			case history.IncidentDeleted:
				s.DeletedIncidents++
			}
		}
	}

	results := make([]history.HistoricActivityStatistics, 0, len(statistics))
	for _, s := range statistics {
		if s.Instances == 0 && s.Finished == 0 && s.Canceled == 0 && s.CompleteScope == 0 &&
			s.OpenIncidents == 0 && s.ResolvedIncidents == 0 && s.DeletedIncidents == 0 {
			continue
		}
		results = append(results, *s)
	}

	desc := slices.ContainsFunc(c.Sorting, func(s history.Sorting) bool {
		return s.Property == "activityId" && s.Direction == history.SortDesc
	})

	slices.SortFunc(results, func(a, b history.HistoricActivityStatistics) int {
		if desc {
			return strings.Compare(b.Id, a.Id)
		}
		return strings.Compare(a.Id, b.Id)
	})

	return results
}

func matchesStatisticsProcessInstance(c history.HistoricActivityStatisticsCriteria, e *ProcessInstanceEntity) bool {
	if e.ProcessDefinitionId != c.ProcessDefinitionId {
		return false
	}
	if len(c.ProcessInstanceIdIn) != 0 && !slices.Contains(c.ProcessInstanceIdIn, e.Id) {
		return false
	}
	if !InWindow(timestamp(e.StartTime), c.StartedAfter, c.StartedBefore) {
		return false
	}
	if !InWindow(e.EndTime, c.FinishedAfter, c.FinishedBefore) {
		return false
	}
	return true
}

// InWindow determines if a time lies within an inclusive window. A null time matches only an unbounded window.
func InWindow(t pgtype.Timestamp, after *time.Time, before *time.Time) bool {
	if after == nil && before == nil {
		return true
	}
	if !t.Valid {
		return false
	}
	if after != nil && t.Time.Before(*after) {
		return false
	}
	if before != nil && t.Time.After(*before) {
		return false
	}
	return true
}
