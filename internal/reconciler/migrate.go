package reconciler

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/gminsights/roadmap-api/internal/events"
	"github.com/gminsights/roadmap-api/internal/logger"
	"github.com/gminsights/roadmap-api/internal/metrics"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MigrationReport summarizes one MigrateLegacyNotes run.
type MigrationReport struct {
	Scanned    int `json:"scanned"`
	Milestones int `json:"milestones"`
	Notes      int `json:"notes"`
	Skipped    int `json:"skipped"`
}

type legacyNote struct {
	Type    string
	Content string
}

// MigrateLegacyNotes moves the embedded key->text notes of every milestone
// into milestone_notes rows and clears the embedded field. Lists, empty
// objects and scalars are left untouched. Running it twice inserts nothing
// the second time: cleared milestones are not selected again, and a
// (type, content) pair already present on the milestone is not duplicated.
func MigrateLegacyNotes(ctx context.Context, st *store.Store, createdBy uuid.UUID, log *zap.Logger) (MigrationReport, error) {
	var report MigrationReport
	log = logger.OrNop(log)

	rows, err := st.Milestones.Select(ctx, store.Query{
		Where: "legacy_notes IS NOT NULL",
		Order: "created_at ASC",
	})
	if err != nil {
		return report, err
	}

	for _, m := range rows {
		report.Scanned++
		if !m.HasLegacyNotes() {
			report.Skipped++
			continue
		}
		entries, ok := parseLegacyNotes(*m.LegacyNotes)
		if !ok {
			report.Skipped++
			continue
		}

		existing, err := st.Notes.Select(ctx, store.Query{
			Columns: []string{"type", "content"},
			Filter:  store.Filter{"milestone_id": m.ID},
		})
		if err != nil {
			return report, err
		}
		have := make(map[legacyNote]bool, len(existing))
		for _, n := range existing {
			have[legacyNote{Type: n.Type, Content: n.Content}] = true
		}

		inserted := 0
		for _, e := range entries {
			if have[e] {
				continue
			}
			n := models.Note{MilestoneID: m.ID, Type: e.Type, Content: e.Content, CreatedBy: createdBy}
			if err := st.Notes.Insert(ctx, &n); err != nil {
				return report, err
			}
			have[e] = true
			inserted++
		}

		if err := st.Milestones.Update(ctx, map[string]any{"legacy_notes": nil}, store.Filter{"id": m.ID}); err != nil {
			return report, err
		}
		report.Milestones++
		report.Notes += inserted
		metrics.LegacyNotesMigrated.Add(float64(inserted))
		log.Info("legacy notes migrated",
			zap.Stringer("milestone", m.ID),
			zap.Int("notes", inserted),
		)
	}
	return report, nil
}

// parseLegacyNotes accepts only a non-empty JSON object. Keys that are not a
// note type become info notes; non-string values keep their JSON text.
func parseLegacyNotes(raw []byte) ([]legacyNote, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || len(obj) == 0 {
		return nil, false
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]legacyNote, 0, len(keys))
	for _, k := range keys {
		var content string
		if err := json.Unmarshal(obj[k], &content); err != nil {
			content = string(obj[k])
		}
		content = strings.TrimSpace(content)
		if content == "" || content == "null" {
			continue
		}
		typ := strings.ToLower(strings.TrimSpace(k))
		if !models.IsNoteType(typ) {
			typ = models.NoteInfo
		}
		out = append(out, legacyNote{Type: typ, Content: content})
	}
	return out, true
}

// MigrateLegacyNotes runs the migration as this session's user, then reloads
// the tree. Only editors may run it.
func (r *Reconciler) MigrateLegacyNotes(ctx context.Context) (MigrationReport, error) {
	r.opMu.Lock()
	err := r.requireEditor(ctx)
	var report MigrationReport
	if err == nil {
		report, err = MigrateLegacyNotes(ctx, r.store, r.Session().UserID, r.log)
	}
	r.opMu.Unlock()
	metrics.IncrementMutation("legacy_notes", outcome(err))
	if err != nil {
		return report, err
	}

	if report.Notes > 0 {
		r.pub.Publish(ctx, r.newEvent(events.NotesMigrated, uuid.Nil, report))
	}
	if _, err := r.LoadAll(ctx); err != nil {
		return report, err
	}
	return report, nil
}
