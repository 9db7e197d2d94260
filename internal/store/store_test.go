package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempura/tempura/internal/domain"
)

// newTestStore returns a store pointed at a fresh temp location.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), ".tasks", "tasks.json"))
}

func TestInit_CreatesEmptyDocument(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Init())

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.SchemaVersion, doc.Version)
	assert.Empty(t, doc.Tasks)

	// Parent directory was created along the way.
	_, err = os.Stat(filepath.Dir(s.Path()))
	require.NoError(t, err)
}

func TestInit_IsIdempotent(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Add(AddInput{Title: "T", Component: "C"})
	require.NoError(t, err)

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	require.NoError(t, s.Init())

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after, "init must never touch an existing document")
}

func TestInit_LeavesMalformedFileAlone(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0644))

	require.NoError(t, s.Init())

	content, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(content))
}

func TestLoad_CorruptContent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0644))

	_, err := s.Load()
	require.ErrorIs(t, err, domain.ErrCorrupt)

	var corrupt *domain.CorruptError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, s.Path(), corrupt.Path)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))

	doc := domain.NewDocument()
	task := domain.NewTask(1, "Round trip", "core")
	task.Created = "2024-05-01"
	task.Tags = []string{"a", "b"}
	task.Acceptance = []string{"loads back"}
	task.Extra = map[string]json.RawMessage{"owner": json.RawMessage(`"carol"`)}
	doc.Tasks = append(doc.Tasks, task)

	require.NoError(t, s.Save(doc))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func TestNextID(t *testing.T) {
	s := newTestStore(t)

	id, err := s.NextID()
	require.NoError(t, err)
	assert.Equal(t, 1, id, "empty store starts at 1")

	for i := 1; i <= 3; i++ {
		_, err := s.Add(AddInput{Title: "T", Component: "C"})
		require.NoError(t, err)
	}

	id, err = s.NextID()
	require.NoError(t, err)
	assert.Equal(t, 4, id, "sequential allocation is count+1")

	// Removing a middle task must not free its id for reuse.
	_, err = s.Remove(2)
	require.NoError(t, err)

	id, err = s.NextID()
	require.NoError(t, err)
	assert.Equal(t, 4, id)
}

func TestAdd_Defaults(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Add(AddInput{Title: "T", Component: "C"})
	require.NoError(t, err)
	require.Equal(t, 1, id)

	task, err := s.Find(id)
	require.NoError(t, err)

	assert.Equal(t, "T", task.Title)
	assert.Equal(t, "C", task.Component)
	assert.Equal(t, "", task.Description)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, []string{}, task.Tags)
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Equal(t, time.Now().Format(domain.CreatedLayout), task.Created)
	assert.Nil(t, task.Started)
	assert.Equal(t, "", task.Notes)
	assert.Equal(t, []string{}, task.Acceptance)
}

func TestAdd_OptionalFields(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Add(AddInput{
		Title:       "T",
		Description: "details",
		Component:   "C",
		Priority:    domain.PriorityHigh,
		Tags:        []string{"x"},
		Notes:       "n",
		Acceptance:  []string{"done when green"},
	})
	require.NoError(t, err)

	task, err := s.Find(id)
	require.NoError(t, err)
	assert.Equal(t, "details", task.Description)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, []string{"x"}, task.Tags)
	assert.Equal(t, "n", task.Notes)
	assert.Equal(t, []string{"done when green"}, task.Acceptance)
}

func TestAdd_UnrecognizedPriorityStoredVerbatim(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Add(AddInput{Title: "T", Component: "C", Priority: "urgent"})
	require.NoError(t, err)

	task, err := s.Find(id)
	require.NoError(t, err)
	assert.Equal(t, "urgent", task.Priority)
}

func TestAdd_MissingRequiredFields(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Add(AddInput{Component: "C"})
	require.ErrorIs(t, err, domain.ErrMissingField)

	var missing *domain.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "title", missing.Field)

	_, err = s.Add(AddInput{Title: "T"})
	require.ErrorIs(t, err, domain.ErrMissingField)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "component", missing.Field)

	// Nothing was written for either failure.
	doc, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.Tasks)
}

func TestAdd_IDsAreUnique(t *testing.T) {
	s := newTestStore(t)

	seen := make(map[int]bool)
	for i := 0; i < 10; i++ {
		id, err := s.Add(AddInput{Title: "T", Component: "C"})
		require.NoError(t, err)
		require.False(t, seen[id], "id %d returned twice", id)
		seen[id] = true
	}
}

func TestAdd_AppendsInArrivalOrder(t *testing.T) {
	s := newTestStore(t)

	for _, title := range []string{"first", "second", "third"} {
		_, err := s.Add(AddInput{Title: title, Component: "C"})
		require.NoError(t, err)
	}

	doc, err := s.Load()
	require.NoError(t, err)
	require.Len(t, doc.Tasks, 3)
	assert.Equal(t, "first", doc.Tasks[0].Title)
	assert.Equal(t, "second", doc.Tasks[1].Title)
	assert.Equal(t, "third", doc.Tasks[2].Title)
}

func TestFind(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Add(AddInput{Title: "T", Component: "C"})
	require.NoError(t, err)

	task, err := s.Find(id)
	require.NoError(t, err)
	assert.Equal(t, id, task.ID)

	_, err = s.Find(999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_PartialMutation(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Add(AddInput{Title: "T", Component: "C", Notes: "keep"})
	require.NoError(t, err)

	err = s.Update(id, map[string]any{"status": "done", "priority": domain.PriorityLow})
	require.NoError(t, err)

	task, err := s.Find(id)
	require.NoError(t, err)
	assert.Equal(t, "done", task.Status)
	assert.Equal(t, domain.PriorityLow, task.Priority)
	assert.Equal(t, "keep", task.Notes, "unmentioned fields stay untouched")
}

func TestUpdate_ExtraFieldsSurviveOnDisk(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Add(AddInput{Title: "T", Component: "C"})
	require.NoError(t, err)

	err = s.Update(id, map[string]any{"owner": "dave"})
	require.NoError(t, err)

	content, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), `"owner": "dave"`)

	task, err := s.Find(id)
	require.NoError(t, err)
	assert.Equal(t, `"dave"`, string(task.Extra["owner"]))
}

func TestUpdate_MissIsNoOp(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Add(AddInput{Title: "T", Component: "C"})
	require.NoError(t, err)

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	err = s.Update(999, map[string]any{"status": "done"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after, "a missed update must not write the document")
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)

	var ids []int
	for _, title := range []string{"a", "b", "c"} {
		id, err := s.Add(AddInput{Title: title, Component: "C"})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	want, err := s.Find(ids[1])
	require.NoError(t, err)

	removed, err := s.Remove(ids[1])
	require.NoError(t, err)
	assert.Equal(t, want, removed, "remove returns the exact removed record")

	_, err = s.Find(ids[1])
	require.ErrorIs(t, err, domain.ErrNotFound)

	doc, err := s.Load()
	require.NoError(t, err)
	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, "a", doc.Tasks[0].Title)
	assert.Equal(t, "c", doc.Tasks[1].Title, "remaining tasks keep their order")
}

func TestRemove_MissIsNoOp(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Add(AddInput{Title: "T", Component: "C"})
	require.NoError(t, err)

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	_, err = s.Remove(999)
	require.ErrorIs(t, err, domain.ErrNotFound)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// saveTasks writes a document composed of the given tasks.
func saveTasks(t *testing.T, s *Store, tasks ...*domain.Task) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	doc := domain.NewDocument()
	doc.Tasks = append(doc.Tasks, tasks...)
	require.NoError(t, s.Save(doc))
}

func makeTask(id int, component, status, priority, created string) *domain.Task {
	task := domain.NewTask(id, "T", component)
	task.Status = status
	task.Priority = priority
	task.Created = created
	return task
}

func TestFilter_IsConjunctive(t *testing.T) {
	s := newTestStore(t)
	saveTasks(t, s,
		makeTask(1, "api", "pending", domain.PriorityHigh, "2024-01-01"),
		makeTask(2, "api", "done", domain.PriorityLow, "2024-01-01"),
		makeTask(3, "ui", "pending", domain.PriorityHigh, "2024-01-01"),
	)

	tasks, err := s.Filter(FilterOptions{Component: "api", Status: "pending"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, tasks[0].ID)
}

func TestFilter_SortsByPriorityRank(t *testing.T) {
	s := newTestStore(t)
	saveTasks(t, s,
		makeTask(1, "c", "pending", domain.PriorityLow, "2024-01-01"),
		makeTask(2, "c", "pending", domain.PriorityCritical, "2024-01-01"),
		makeTask(3, "c", "pending", domain.PriorityHigh, "2024-01-01"),
		makeTask(4, "c", "pending", domain.PriorityMedium, "2024-01-01"),
	)

	tasks, err := s.Filter(FilterOptions{})
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	var priorities []string
	for _, task := range tasks {
		priorities = append(priorities, task.Priority)
	}
	assert.Equal(t, []string{"critical", "high", "medium", "low"}, priorities)
}

func TestFilter_UnknownPrioritySortsLast(t *testing.T) {
	s := newTestStore(t)
	saveTasks(t, s,
		makeTask(1, "c", "pending", "urgent", "2024-01-01"),
		makeTask(2, "c", "pending", domain.PriorityLow, "2024-01-01"),
	)

	tasks, err := s.Filter(FilterOptions{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, 2, tasks[0].ID)
	assert.Equal(t, 1, tasks[1].ID)
}

func TestFilter_TiesBreakOnCreatedDate(t *testing.T) {
	s := newTestStore(t)
	saveTasks(t, s,
		makeTask(1, "c", "pending", domain.PriorityMedium, "2024-03-01"),
		makeTask(2, "c", "pending", domain.PriorityMedium, "2024-01-15"),
		makeTask(3, "c", "pending", domain.PriorityMedium, "2024-02-01"),
	)

	tasks, err := s.Filter(FilterOptions{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []int{2, 3, 1}, []int{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestFilter_StableOnEqualKeys(t *testing.T) {
	s := newTestStore(t)
	saveTasks(t, s,
		makeTask(10, "c", "pending", domain.PriorityMedium, "2024-01-01"),
		makeTask(11, "c", "pending", domain.PriorityMedium, "2024-01-01"),
		makeTask(12, "c", "pending", domain.PriorityMedium, "2024-01-01"),
	)

	tasks, err := s.Filter(FilterOptions{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []int{10, 11, 12}, []int{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestFilter_ByTag(t *testing.T) {
	s := newTestStore(t)

	tagged := makeTask(1, "c", "pending", domain.PriorityMedium, "2024-01-01")
	tagged.Tags = []string{"backend", "perf"}
	saveTasks(t, s,
		tagged,
		makeTask(2, "c", "pending", domain.PriorityMedium, "2024-01-01"),
	)

	tasks, err := s.Filter(FilterOptions{Tag: "perf"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, tasks[0].ID)
}

func TestFilter_DoesNotMutateStoredOrder(t *testing.T) {
	s := newTestStore(t)
	saveTasks(t, s,
		makeTask(1, "c", "pending", domain.PriorityLow, "2024-01-01"),
		makeTask(2, "c", "pending", domain.PriorityCritical, "2024-01-01"),
	)

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	_, err = s.Filter(FilterOptions{})
	require.NoError(t, err)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
