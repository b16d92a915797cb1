package reconciler

import "github.com/gminsights/roadmap-api/internal/models"

// Buckets partitions status updates by status tag, keeping input order.
type Buckets struct {
	Completed  []models.StatusUpdate `json:"completed"`
	InProgress []models.StatusUpdate `json:"inProgress"`
	NotStarted []models.StatusUpdate `json:"notStarted"`
}

func (b Buckets) Count() int {
	return len(b.Completed) + len(b.InProgress) + len(b.NotStarted)
}

// GroupByStatus drops updates with an unknown status.
func GroupByStatus(updates []models.StatusUpdate) Buckets {
	b := Buckets{
		Completed:  []models.StatusUpdate{},
		InProgress: []models.StatusUpdate{},
		NotStarted: []models.StatusUpdate{},
	}
	for _, u := range updates {
		switch u.Status {
		case models.StatusCompleted:
			b.Completed = append(b.Completed, u)
		case models.StatusInProgress:
			b.InProgress = append(b.InProgress, u)
		case models.StatusNotStarted:
			b.NotStarted = append(b.NotStarted, u)
		}
	}
	return b
}
