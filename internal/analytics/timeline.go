package analytics

import (
	"fmt"
	"sort"
	"time"

	"spacos/internal/models"
)

// EventType is the source of a timeline event.
type EventType string

const (
	EventIPO      EventType = "ipo"
	EventTask     EventType = "task"
	EventFiling   EventType = "filing"
	EventDeadline EventType = "deadline"
)

// EventStatus places an event relative to now.
type EventStatus string

const (
	EventCompleted EventStatus = "completed"
	EventCurrent   EventStatus = "current"
	EventUpcoming  EventStatus = "upcoming"
)

// TimelineEvent is one row of a SPAC's timeline. The deadline event also
// reports whether the date has elapsed and, separately, whether the business
// combination actually closed.
type TimelineEvent struct {
	ID                string      `json:"id"`
	Date              time.Time   `json:"date"`
	Type              EventType   `json:"type"`
	Title             string      `json:"title"`
	Description       string      `json:"description,omitempty"`
	Status            EventStatus `json:"status"`
	DeadlinePassed    bool        `json:"deadline_passed,omitempty"`
	CombinationClosed bool        `json:"combination_closed,omitempty"`
}

// TimelineTask is the part of a task the projector reads.
type TimelineTask struct {
	ID          string
	Title       string
	Description string
	DueDate     *time.Time
	CreatedAt   time.Time
	Status      models.TaskStatus
}

// TimelineFiling is the part of a filing the projector reads.
type TimelineFiling struct {
	ID        string
	FormType  string
	DueDate   *time.Time
	FiledDate *time.Time
	Status    models.FilingStatus
}

// TimelineInput gathers the dated records of one SPAC.
type TimelineInput struct {
	IPODate             *time.Time
	Tasks               []TimelineTask
	Filings             []TimelineFiling
	DeadlineDate        *time.Time
	CombinationClosedAt *time.Time
}

// ProjectTimeline merges the IPO date, tasks, filings with a due date and
// the deadline into one list sorted by date. Equal dates keep insertion
// order: IPO, tasks, filings, deadline.
func ProjectTimeline(in TimelineInput, now time.Time) ([]TimelineEvent, error) {
	events := make([]TimelineEvent, 0, len(in.Tasks)+len(in.Filings)+2)

	if in.IPODate != nil {
		events = append(events, TimelineEvent{
			ID:     "ipo",
			Date:   *in.IPODate,
			Type:   EventIPO,
			Title:  "IPO",
			Status: EventCompleted,
		})
	}

	for _, t := range in.Tasks {
		if !t.Status.Valid() {
			return nil, fmt.Errorf("timeline: task %s: task status %q: %w", t.ID, t.Status, models.ErrUnknownValue)
		}
		date := t.CreatedAt
		if t.DueDate != nil {
			date = *t.DueDate
		}
		status := EventUpcoming
		switch {
		case t.Status == models.TaskStatusCompleted:
			status = EventCompleted
		case date.Before(now):
			status = EventCurrent
		}
		events = append(events, TimelineEvent{
			ID:          "task-" + t.ID,
			Date:        date,
			Type:        EventTask,
			Title:       t.Title,
			Description: t.Description,
			Status:      status,
		})
	}

	for _, f := range in.Filings {
		if !f.Status.Valid() {
			return nil, fmt.Errorf("timeline: filing %s: filing status %q: %w", f.ID, f.Status, models.ErrUnknownValue)
		}
		if f.DueDate == nil {
			continue
		}
		status := EventUpcoming
		switch {
		case f.Status.IsFiled() || f.FiledDate != nil:
			status = EventCompleted
		case f.DueDate.Before(now):
			status = EventCurrent
		}
		events = append(events, TimelineEvent{
			ID:     "filing-" + f.ID,
			Date:   *f.DueDate,
			Type:   EventFiling,
			Title:  f.FormType + " due",
			Status: status,
		})
	}

	if in.DeadlineDate != nil {
		passed := in.DeadlineDate.Before(now)
		closed := in.CombinationClosedAt != nil && !in.CombinationClosedAt.After(now)
		status := EventUpcoming
		if passed {
			status = EventCompleted
		}
		events = append(events, TimelineEvent{
			ID:                "deadline",
			Date:              *in.DeadlineDate,
			Type:              EventDeadline,
			Title:             "Business combination deadline",
			Status:            status,
			DeadlinePassed:    passed,
			CombinationClosed: closed,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

// TimelineFromModels adapts persisted rows to a TimelineInput.
func TimelineFromModels(spac models.SPAC, tasks []models.Task, filings []models.Filing) TimelineInput {
	in := TimelineInput{
		IPODate:             spac.IPODate,
		DeadlineDate:        spac.DeadlineDate,
		CombinationClosedAt: spac.BusinessCombinationClosedAt,
		Tasks:               make([]TimelineTask, len(tasks)),
		Filings:             make([]TimelineFiling, len(filings)),
	}
	for i, t := range tasks {
		in.Tasks[i] = TimelineTask{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			DueDate:     t.DueDate,
			CreatedAt:   t.CreatedAt,
			Status:      t.Status,
		}
	}
	for i, f := range filings {
		in.Filings[i] = TimelineFiling{
			ID:        f.ID,
			FormType:  f.FormType,
			DueDate:   f.DueDate,
			FiledDate: f.FiledDate,
			Status:    f.Status,
		}
	}
	return in
}
