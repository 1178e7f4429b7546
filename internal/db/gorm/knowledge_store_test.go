package gorm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamboard/teamboard/pkg/models"
)

func testKnowledgeStore(t *testing.T) *KnowledgeStore {
	t.Helper()
	return NewKnowledgeStore(testStore(t))
}

func createTestItem(t *testing.T, s *KnowledgeStore, in NewKnowledgeItem) *models.KnowledgeItem {
	t.Helper()
	if in.Question == "" {
		in.Question = "What is the deploy process?"
	}
	if in.Answer == "" {
		in.Answer = "Merge to main, CI ships it."
	}
	item, err := s.Create(context.Background(), &in)
	require.NoError(t, err)
	require.NotNil(t, item)
	// SQLite epoch timestamps are millisecond precision; keep inserts apart
	// so ordering assertions are deterministic.
	time.Sleep(2 * time.Millisecond)
	return item
}

func TestKnowledgeCreateAndGet(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	category := "operations"
	srcID := int64(42)
	created := createTestItem(t, s, NewKnowledgeItem{
		Question:        "How do I rotate the API key?",
		Answer:          "Use the admin console, then restart the workers.",
		Tags:            []string{"security", "ops"},
		Category:        &category,
		IsPinned:        true,
		SourceMessageID: &srcID,
		Approved:        true,
	})

	assert.NotZero(t, created.ID)
	assert.True(t, created.IsPinned)
	assert.True(t, created.IsModerated)
	assert.Nil(t, created.ModerationNotes)
	assert.Equal(t, []string{"security", "ops"}, created.Tags)
	require.NotNil(t, created.Category)
	assert.Equal(t, "operations", *created.Category)
	require.NotNil(t, created.SourceMessageID)
	assert.Equal(t, int64(42), *created.SourceMessageID)
	assert.Equal(t, 0, created.AccessCount)
	assert.Nil(t, created.LastAccessedAt)
	assert.NotEmpty(t, created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Question, got.Question)
}

func TestKnowledgeCreateRejected(t *testing.T) {
	s := testKnowledgeStore(t)

	item := createTestItem(t, s, NewKnowledgeItem{
		Question:        "Is this fine?",
		Answer:          "Probably not.",
		Approved:        false,
		ModerationNotes: "Content contains inappropriate keyword: spam",
	})

	assert.False(t, item.IsModerated)
	require.NotNil(t, item.ModerationNotes)
	assert.Equal(t, "Content contains inappropriate keyword: spam", *item.ModerationNotes)
}

func TestKnowledgeGetByIDNotFound(t *testing.T) {
	s := testKnowledgeStore(t)

	got, err := s.GetByID(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestKnowledgeListOrdering(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	a := createTestItem(t, s, NewKnowledgeItem{Question: "oldest", Answer: "a", Approved: true})
	b := createTestItem(t, s, NewKnowledgeItem{Question: "pinned", Answer: "b", IsPinned: true, Approved: true})
	c := createTestItem(t, s, NewKnowledgeItem{Question: "newest", Answer: "c", Approved: true})

	items, err := s.List(ctx, models.KnowledgeFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Pinned first, then newest first.
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, c.ID, items[1].ID)
	assert.Equal(t, a.ID, items[2].ID)
}

func TestKnowledgeListSearch(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	createTestItem(t, s, NewKnowledgeItem{Question: "How to deploy the frontend?", Answer: "Run the pipeline.", Approved: true})
	createTestItem(t, s, NewKnowledgeItem{Question: "VPN setup", Answer: "Install the client and use SSO.", Approved: true})

	items, err := s.List(ctx, models.KnowledgeFilter{Search: "DEPLOY"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "How to deploy the frontend?", items[0].Question)

	// Search matches answers too.
	items, err = s.List(ctx, models.KnowledgeFilter{Search: "sso"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "VPN setup", items[0].Question)

	items, err = s.List(ctx, models.KnowledgeFilter{Search: "kubernetes"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestKnowledgeListCategoryAndPinned(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	ops := "ops"
	dev := "dev"
	createTestItem(t, s, NewKnowledgeItem{Question: "q1", Answer: "a1", Category: &ops, IsPinned: true, Approved: true})
	createTestItem(t, s, NewKnowledgeItem{Question: "q2", Answer: "a2", Category: &ops, Approved: true})
	createTestItem(t, s, NewKnowledgeItem{Question: "q3", Answer: "a3", Category: &dev, Approved: true})

	items, err := s.List(ctx, models.KnowledgeFilter{Category: "ops"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	pinned := true
	items, err = s.List(ctx, models.KnowledgeFilter{IsPinned: &pinned})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "q1", items[0].Question)

	unpinned := false
	items, err = s.List(ctx, models.KnowledgeFilter{IsPinned: &unpinned})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestKnowledgeListTagsFilter(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	createTestItem(t, s, NewKnowledgeItem{Question: "q1", Answer: "a1", Tags: []string{"go", "backend"}, Approved: true})
	createTestItem(t, s, NewKnowledgeItem{Question: "q2", Answer: "a2", Tags: []string{"react"}, Approved: true})
	createTestItem(t, s, NewKnowledgeItem{Question: "q3", Answer: "a3", Approved: true})

	// Any overlap matches.
	items, err := s.List(ctx, models.KnowledgeFilter{Tags: []string{"backend", "frontend"}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "q1", items[0].Question)

	// Untagged items never match a tag filter.
	items, err = s.List(ctx, models.KnowledgeFilter{Tags: []string{"missing"}})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestKnowledgeListTagsFilterPagination(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createTestItem(t, s, NewKnowledgeItem{
			Question: "tagged",
			Answer:   "a",
			Tags:     []string{"go"},
			Approved: true,
		})
		createTestItem(t, s, NewKnowledgeItem{Question: "plain", Answer: "a", Approved: true})
	}

	// Pagination applies to the filtered sequence, not the raw rows.
	items, err := s.List(ctx, models.KnowledgeFilter{Tags: []string{"go"}, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, "tagged", item.Question)
	}

	items, err = s.List(ctx, models.KnowledgeFilter{Tags: []string{"go"}, Limit: 10, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestKnowledgeListPagination(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		createTestItem(t, s, NewKnowledgeItem{Question: "q", Answer: "a", Approved: true})
	}

	items, err := s.List(ctx, models.KnowledgeFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, items, 3)

	items, err = s.List(ctx, models.KnowledgeFilter{Limit: 3, Offset: 3})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestKnowledgeRecordAccess(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	created := createTestItem(t, s, NewKnowledgeItem{Approved: true})
	assert.Equal(t, 0, created.AccessCount)

	got, err := s.RecordAccess(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.AccessCount)
	assert.NotNil(t, got.LastAccessedAt)

	got, err = s.RecordAccess(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.AccessCount)

	// Listing does not touch the counter.
	items, err := s.List(ctx, models.KnowledgeFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].AccessCount)

	missing, err := s.RecordAccess(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestKnowledgeUpdatePartial(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	category := "ops"
	created := createTestItem(t, s, NewKnowledgeItem{
		Question: "original question",
		Answer:   "original answer",
		Tags:     []string{"one"},
		Category: &category,
		Approved: true,
	})

	time.Sleep(2 * time.Millisecond)

	newAnswer := "revised answer"
	pinned := true
	updated, err := s.Update(ctx, created.ID, KnowledgeUpdate{
		Answer:   &newAnswer,
		IsPinned: &pinned,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	// Untouched fields survive the patch.
	assert.Equal(t, "original question", updated.Question)
	assert.Equal(t, "revised answer", updated.Answer)
	assert.True(t, updated.IsPinned)
	assert.Equal(t, []string{"one"}, updated.Tags)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "ops", *updated.Category)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	// Clearing the category writes NULL.
	empty := ""
	updated, err = s.Update(ctx, created.ID, KnowledgeUpdate{Category: &empty})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Nil(t, updated.Category)

	// Replacing tags with an empty slice clears them.
	updated, err = s.Update(ctx, created.ID, KnowledgeUpdate{Tags: []string{}})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Empty(t, updated.Tags)
}

func TestKnowledgeUpdateModeration(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	created := createTestItem(t, s, NewKnowledgeItem{Approved: true})

	approved := false
	notes := "Content contains inappropriate keyword: spam"
	updated, err := s.Update(ctx, created.ID, KnowledgeUpdate{
		Approved:        &approved,
		ModerationNotes: &notes,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.False(t, updated.IsModerated)
	require.NotNil(t, updated.ModerationNotes)
	assert.Equal(t, notes, *updated.ModerationNotes)
}

func TestKnowledgeDelete(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	created := createTestItem(t, s, NewKnowledgeItem{Approved: true})

	deleted, err := s.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	deleted, err = s.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestKnowledgeListTags(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	createTestItem(t, s, NewKnowledgeItem{Question: "q1", Answer: "a1", Tags: []string{"go", "backend"}, Approved: true})
	createTestItem(t, s, NewKnowledgeItem{Question: "q2", Answer: "a2", Tags: []string{"backend", "infra"}, Approved: true})
	createTestItem(t, s, NewKnowledgeItem{Question: "q3", Answer: "a3", Approved: true})

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"backend", "go", "infra"}, tags)
}

func TestKnowledgeListTagsEmpty(t *testing.T) {
	s := testKnowledgeStore(t)

	tags, err := s.ListTags(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}

func TestKnowledgeListCategories(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	ops := "ops"
	dev := "dev"
	createTestItem(t, s, NewKnowledgeItem{Question: "q1", Answer: "a1", Category: &ops, Approved: true})
	createTestItem(t, s, NewKnowledgeItem{Question: "q2", Answer: "a2", Category: &dev, Approved: true})
	createTestItem(t, s, NewKnowledgeItem{Question: "q3", Answer: "a3", Category: &ops, Approved: true})
	createTestItem(t, s, NewKnowledgeItem{Question: "q4", Answer: "a4", Approved: true})

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "ops"}, categories)
}

func TestKnowledgeStats(t *testing.T) {
	s := testKnowledgeStore(t)
	ctx := context.Background()

	createTestItem(t, s, NewKnowledgeItem{Question: "q1", Answer: "a1", IsPinned: true, Approved: true})
	createTestItem(t, s, NewKnowledgeItem{Question: "q2", Answer: "a2", Approved: true})
	createTestItem(t, s, NewKnowledgeItem{Question: "q3", Answer: "a3", Approved: false, ModerationNotes: "flagged"})

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalItems)
	assert.Equal(t, int64(1), stats.PinnedItems)
	assert.Equal(t, int64(1), stats.PendingModeration)
}
