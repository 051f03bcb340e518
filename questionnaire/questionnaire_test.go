package questionnaire

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/daily-pulse/models"
)

func TestQuestionnaire_LoadInitializesState(t *testing.T) {
	q := New("q-1", &fakeFetcher{}, NewSaver(&recordingStore{}, &staticSessions{}))
	require.NoError(t, q.Load(context.Background()))

	assert.True(t, q.State().Loaded())
	assert.Len(t, q.State().Answers(), len(testQuestions))
}

func TestQuestionnaire_LoadFailureKeepsStateUnloaded(t *testing.T) {
	fetchErr := models.NewFetchError(models.FetchNetworkFailure, nil)
	f := &fakeFetcher{fn: func(context.Context, int) ([]models.Question, error) { return nil, fetchErr }}
	q := New("q-1", f, NewSaver(&recordingStore{}, &staticSessions{}))

	assert.ErrorIs(t, q.Load(context.Background()), fetchErr)
	assert.False(t, q.State().Loaded())
	assert.ErrorIs(t, q.State().SetText("note", "x"), ErrNotLoaded)
}

func TestQuestionnaire_StaleLoadDiscarded(t *testing.T) {
	release := make(chan struct{})
	firstStarted := make(chan struct{})
	newer := []models.Question{{ID: "fresh", Kind: models.KindText}}

	f := &fakeFetcher{fn: func(ctx context.Context, call int) ([]models.Question, error) {
		if call == 1 {
			close(firstStarted)
			<-release
			return testQuestions, nil
		}
		return newer, nil
	}}
	q := New("q-1", f, NewSaver(&recordingStore{}, &staticSessions{}))

	first := make(chan error, 1)
	go func() { first <- q.Load(context.Background()) }()
	<-firstStarted

	require.NoError(t, q.Load(context.Background()))
	close(release)

	assert.ErrorIs(t, <-first, ErrStaleLoad)
	assert.Equal(t, newer, q.State().Questions())
}

func TestQuestionnaire_CancelledLoadDoesNotInitialize(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeFetcher{fn: func(context.Context, int) ([]models.Question, error) {
		cancel()
		return testQuestions, nil
	}}
	q := New("q-1", f, NewSaver(&recordingStore{}, &staticSessions{}))

	assert.ErrorIs(t, q.Load(ctx), context.Canceled)
	assert.False(t, q.State().Loaded())
}

func TestQuestionnaire_SaveRequiresLoad(t *testing.T) {
	st := &recordingStore{}
	q := New("q-1", &fakeFetcher{}, NewSaver(st, &staticSessions{s: &models.Session{OwnerID: "u1"}}))

	_, err := q.Save(context.Background())
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Zero(t, st.callCount())
}

func TestQuestionnaire_LastSingleChoiceWins(t *testing.T) {
	twoSingles := []models.Question{
		{ID: "1", Kind: models.KindSingleChoice, Options: []string{"A", "B"}},
		{ID: "2", Kind: models.KindSingleChoice, Options: []string{"A", "B"}},
	}
	f := &fakeFetcher{fn: func(context.Context, int) ([]models.Question, error) { return twoSingles, nil }}
	q := New("q-1", f, NewSaver(&recordingStore{}, &staticSessions{}))
	require.NoError(t, q.Load(context.Background()))

	require.NoError(t, q.State().SetSingleChoice("1", "A"))
	require.NoError(t, q.State().SetSingleChoice("1", "B"))

	a, err := q.State().Answer("1")
	require.NoError(t, err)
	assert.Equal(t, "B", a.Value())
}

func TestQuestionnaire_Snapshot(t *testing.T) {
	st := &recordingStore{err: models.ErrPermissionDenied}
	q := New("q-1", &fakeFetcher{}, NewSaver(st, &staticSessions{s: &models.Session{OwnerID: "u1"}}))
	require.NoError(t, q.Load(context.Background()))

	snap := q.Snapshot()
	assert.Equal(t, "q-1", snap.ID)
	assert.False(t, snap.Complete)
	assert.Equal(t, []string{"mood", "done", "note"}, snap.Unanswered)
	assert.Equal(t, StateIdle, snap.SaveState)
	assert.Nil(t, snap.SaveError)

	require.NoError(t, answerAll(q.State()))
	_, err := q.Save(context.Background())
	require.Error(t, err)

	snap = q.Snapshot()
	assert.True(t, snap.Complete)
	assert.Empty(t, snap.Unanswered)
	assert.Equal(t, StateFailed, snap.SaveState)
	require.NotNil(t, snap.SaveError)
	assert.Equal(t, models.SavePermissionDenied, snap.SaveError.Code)
}
