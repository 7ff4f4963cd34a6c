package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sociallike/internal/canonical"
	"git.home.luguber.info/inful/sociallike/internal/config"
	"git.home.luguber.info/inful/sociallike/internal/content"
	"git.home.luguber.info/inful/sociallike/internal/foundation/errors"
	"git.home.luguber.info/inful/sociallike/internal/registry"
)

type batchLog struct {
	triggers []string
	domains  []string
}

func (b *batchLog) BatchCompleted(_ context.Context, _ canonical.UpdateRequest, liveDomain, trigger string, _ *canonical.Result) error {
	b.triggers = append(b.triggers, trigger)
	b.domains = append(b.domains, liveDomain)
	return nil
}

func newRepo(t *testing.T) *content.Repository {
	t.Helper()
	ctx := t.Context()
	repo := content.NewRepository(content.NewMemoryStore(), "plone")
	item, err := repo.Create(ctx, "/plone", "News Item", "foo", "Foo")
	require.NoError(t, err)
	require.NoError(t, repo.Transition(ctx, item, content.TransitionPublish))
	require.NoError(t, repo.SetEffective(ctx, item, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)))
	return repo
}

func TestJobFromConfig(t *testing.T) {
	job, err := JobFromConfig(config.JobConfig{
		Name:               "move",
		Cron:               "0 3 * * *",
		OldCanonicalDomain: "http://example.org/",
		PublishedBefore:    "2017-01-01",
	})
	require.NoError(t, err)
	require.Equal(t, "http://example.org", job.Request.OldCanonicalDomain)
	require.Equal(t, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), job.Request.PublishedBefore)

	_, err = JobFromConfig(config.JobConfig{Name: "bad", OldCanonicalDomain: "example.org", PublishedBefore: "2017-01-01"})
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = JobFromConfig(config.JobConfig{Name: "bad", OldCanonicalDomain: "http://example.org", PublishedBefore: "soon"})
	require.Error(t, err)
}

func TestScheduler_Schedule(t *testing.T) {
	s, err := New(canonical.NewUpdater(newRepo(t)), registry.NewMemoryRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	job := Job{Name: "move", Cron: "0 3 * * *", Request: canonical.UpdateRequest{OldCanonicalDomain: "http://example.org", PublishedBefore: time.Now()}}
	id, err := s.Schedule(job)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, []string{"move"}, s.Jobs())

	_, err = s.Schedule(job)
	require.True(t, errors.HasCategory(err, errors.CategoryAlreadyExists))

	job.Name = "broken"
	job.Cron = "this is not a cron"
	_, err = s.Schedule(job)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestScheduler_RunNowUsesRegistryDomain(t *testing.T) {
	ctx := t.Context()
	repo := newRepo(t)
	reg := registry.NewMemoryRegistry()
	require.NoError(t, reg.Set(ctx, registry.InterfaceSocialLike, registry.RecordCanonicalDomain, "https://example.org"))

	batches := &batchLog{}
	s, err := New(canonical.NewUpdater(repo), reg, WithBatchRecorder(batches))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	require.NoError(t, s.Load(config.ScheduleConfig{Jobs: []config.JobConfig{{
		Name:               "move",
		Cron:               "0 3 * * *",
		OldCanonicalDomain: "http://example.org",
		PublishedBefore:    "2017-01-01",
	}}}))

	res, err := s.RunNow(ctx, "move")
	require.NoError(t, err)
	require.Equal(t, 1, res.Updated)
	require.Equal(t, []string{TriggerSchedule}, batches.triggers)
	require.Equal(t, []string{"https://example.org"}, batches.domains)

	item, err := repo.Get(ctx, "/plone/foo")
	require.NoError(t, err)
	require.Equal(t, "http://example.org/plone/foo", *item.CanonicalURL)

	_, err = s.RunNow(ctx, "missing")
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestScheduler_RunNowWithoutDomainSkips(t *testing.T) {
	s, err := New(canonical.NewUpdater(newRepo(t)), registry.NewMemoryRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	job, err := JobFromConfig(config.JobConfig{Name: "move", Cron: "0 3 * * *", OldCanonicalDomain: "http://example.org", PublishedBefore: "2017-01-01"})
	require.NoError(t, err)
	_, err = s.Schedule(job)
	require.NoError(t, err)

	res, err := s.RunNow(t.Context(), "move")
	require.NoError(t, err)
	require.Equal(t, 0, res.Updated)
	require.Equal(t, 1, res.Skipped)
}
