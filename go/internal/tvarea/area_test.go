package tvarea

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/coveytv/go/internal/events"
	"github.com/mcdev12/coveytv/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testVideos() []models.Video {
	return []models.Video{
		{URL: "https://www.youtube.com/watch?v=aaa", Title: "A", Channel: "Chan A", DurationSeconds: 60},
		{URL: "https://www.youtube.com/watch?v=bbb", Title: "B", Channel: "Chan B", DurationSeconds: 120},
		{URL: "https://www.youtube.com/watch?v=ccc", Title: "C", Channel: "Chan C", DurationSeconds: 30},
	}
}

func testURLs() []string {
	var urls []string
	for _, v := range testVideos() {
		urls = append(urls, v.URL)
	}
	return urls
}

func newTestArea(t *testing.T, lookup VideoLookup) (*Area, fakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	area := NewArea(Config{
		TownID:   "TEST0001",
		Clock:    clock,
		Defaults: testVideos(),
		Lookup:   lookup,
		Rand:     rand.New(rand.NewSource(1)),
	})
	t.Cleanup(area.Close)
	return area, clock
}

func isPlaying(a *Area) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

func liveTimer(a *Area) *Timer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer
}

func masterElapsed(a *Area) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.masterElapsed
}

func lastSyncing(t *testing.T, sink *recordingSink) models.PlaybackInfo {
	t.Helper()
	syncs := sink.OfType(events.EventTypeSyncing)
	require.NotEmpty(t, syncs)
	return *syncs[len(syncs)-1].Playback
}

func TestNewArea_StartsStoppedWithDefault(t *testing.T) {
	area, _ := newTestArea(t, nil)

	state := area.Snapshot()
	assert.False(t, state.Playback.IsPlaying)
	assert.Equal(t, 0.0, state.Playback.Timestamp)
	assert.Contains(t, testURLs(), state.Playback.URL)
	assert.Equal(t, testVideos(), state.Candidates)
	assert.Empty(t, state.Votes)
	assert.Equal(t, 0, state.Members)
}

func TestJoin_FirstJoinerStartsDefaultVideo(t *testing.T) {
	area, _ := newTestArea(t, nil)
	sink := &recordingSink{}

	area.Join("p1", sink)

	assert.Equal(t, []events.EventType{
		events.EventTypeSyncing,
		events.EventTypeVotingWidgetShown,
		events.EventTypeCandidatesUpdated,
	}, sink.Types())

	info := lastSyncing(t, sink)
	assert.Contains(t, testURLs(), info.URL)
	assert.Equal(t, 0.0, info.Timestamp)
	assert.True(t, info.IsPlaying)
	assert.Equal(t, testVideos(), sink.OfType(events.EventTypeCandidatesUpdated)[0].Videos)

	assert.True(t, isPlaying(area))
	assert.True(t, area.IsMember("p1"))
}

func TestJoin_LateJoinerGetsLivePosition(t *testing.T) {
	area, clock := newTestArea(t, nil)
	first, second := &recordingSink{}, &recordingSink{}

	area.Join("p1", first)
	clock.Advance(10 * time.Second)
	area.Join("p2", second)

	info := lastSyncing(t, second)
	assert.Equal(t, lastSyncing(t, first).URL, info.URL)
	assert.InDelta(t, 10.0, info.Timestamp, 1e-6)
	assert.True(t, info.IsPlaying)

	// The existing member is not notified about the newcomer
	assert.Len(t, first.Events(), 3)
}

func TestJoin_WhileStoppedGetsPausedPosition(t *testing.T) {
	area, clock := newTestArea(t, nil)
	first, second := &recordingSink{}, &recordingSink{}

	area.Join("p1", first)
	clock.Advance(5 * time.Second)
	area.Pause()
	clock.Advance(time.Minute)
	area.Join("p2", second)

	info := lastSyncing(t, second)
	assert.InDelta(t, 5.0, info.Timestamp, 1e-6)
	assert.False(t, info.IsPlaying)
	assert.False(t, isPlaying(area))
}

func TestJoin_RejoinReplacesSink(t *testing.T) {
	area, _ := newTestArea(t, nil)
	old, replacement := &recordingSink{}, &recordingSink{}

	area.Join("p1", old)
	before := area.Snapshot()
	area.Join("p1", replacement)
	old.Clear()

	assert.Equal(t, before.Playback, area.Snapshot().Playback)
	assert.True(t, isPlaying(area))

	area.Pause()

	assert.Empty(t, old.Events())
	assert.Len(t, replacement.OfType(events.EventTypePaused), 1)
	assert.Equal(t, 1, area.Snapshot().Members)
}

func TestJoin_RejoinWhilePausedKeepsPosition(t *testing.T) {
	area, clock := newTestArea(t, nil)
	sink := &recordingSink{}
	area.Join("p1", sink)

	next := testURLs()[2]
	if area.Snapshot().Playback.URL == next {
		next = testURLs()[1]
	}
	area.CastVote(next)
	area.ChooseNextVideo()
	clock.Advance(10 * time.Second)
	area.Pause()
	before := area.Snapshot().Playback
	require.Equal(t, models.PlaybackInfo{URL: next, Timestamp: 10, IsPlaying: false}, before)

	sink.Clear()
	area.Join("p1", sink)

	assert.Equal(t, before, area.Snapshot().Playback)
	assert.False(t, isPlaying(area))
	assert.Equal(t, before, lastSyncing(t, sink))
	assert.Equal(t, 1, area.Snapshot().Members)
}

func TestPause_IsIdempotent(t *testing.T) {
	area, clock := newTestArea(t, nil)
	s1, s2 := &recordingSink{}, &recordingSink{}
	area.Join("p1", s1)
	area.Join("p2", s2)
	s1.Clear()
	s2.Clear()

	clock.Advance(3 * time.Second)
	area.Pause()
	area.Pause()

	assert.Equal(t, []events.EventType{events.EventTypePaused}, s1.Types())
	assert.Equal(t, []events.EventType{events.EventTypePaused}, s2.Types())
	assert.InDelta(t, 3.0, masterElapsed(area), 1e-6)
	assert.False(t, isPlaying(area))
}

func TestPause_WithoutTimerSendsNothing(t *testing.T) {
	area, _ := newTestArea(t, nil)
	s1, s2 := &recordingSink{}, &recordingSink{}
	area.Join("p1", s1)
	area.Join("p2", s2)
	area.Pause()
	s1.Clear()
	s2.Clear()

	area.Pause()

	assert.Empty(t, s1.Events())
	assert.Empty(t, s2.Events())
}

func TestPlay_ArmsSingleTimer(t *testing.T) {
	area, clock := newTestArea(t, nil)
	sink := &recordingSink{}
	area.Join("p1", sink)
	clock.Advance(4 * time.Second)
	area.Pause()
	sink.Clear()

	area.Play()
	timer := liveTimer(area)
	area.Play()

	require.NotNil(t, timer)
	assert.Same(t, timer, liveTimer(area))
	assert.Equal(t, []events.EventType{events.EventTypeSyncing}, sink.Types())

	info := lastSyncing(t, sink)
	assert.InDelta(t, 4.0, info.Timestamp, 1e-6)
	assert.True(t, info.IsPlaying)
}

func TestPlay_ResumesForRemainingDuration(t *testing.T) {
	area, clock := newTestArea(t, nil)
	sink := &recordingSink{}
	area.Join("p1", sink)

	duration := area.Snapshot().DurationSeconds
	clock.Advance(10 * time.Second)
	area.Pause()
	area.Play()

	timer := liveTimer(area)
	require.NotNil(t, timer)
	assert.InDelta(t, duration-10, timer.Duration().Seconds(), 1e-6)
}

func TestSync_WhilePlayingPreservesElapsed(t *testing.T) {
	area, clock := newTestArea(t, nil)
	sink := &recordingSink{}
	area.Join("p1", sink)
	clock.Advance(7 * time.Second)
	sink.Clear()

	area.Sync()

	assert.Equal(t, []events.EventType{events.EventTypePaused, events.EventTypeSyncing}, sink.Types())
	info := lastSyncing(t, sink)
	assert.InDelta(t, 7.0, info.Timestamp, 1e-6)
	assert.True(t, info.IsPlaying)
	assert.True(t, isPlaying(area))

	clock.Advance(2 * time.Second)
	assert.InDelta(t, 9.0, area.Snapshot().Playback.Timestamp, 1e-6)
}

func TestSync_WhileStoppedBroadcastsPausedPosition(t *testing.T) {
	area, clock := newTestArea(t, nil)
	sink := &recordingSink{}
	area.Join("p1", sink)
	clock.Advance(2 * time.Second)
	area.Pause()
	sink.Clear()

	area.Sync()

	assert.Equal(t, []events.EventType{events.EventTypeSyncing}, sink.Types())
	info := lastSyncing(t, sink)
	assert.InDelta(t, 2.0, info.Timestamp, 1e-6)
	assert.False(t, info.IsPlaying)
	assert.False(t, isPlaying(area))
}

func TestChooseNextVideo_PluralityWins(t *testing.T) {
	area, _ := newTestArea(t, nil)
	sink := &recordingSink{}
	area.Join("p1", sink)
	sink.Clear()

	urls := testURLs()
	area.CastVote(urls[0])
	area.CastVote(urls[1])
	area.CastVote(urls[1])
	area.ChooseNextVideo()

	assert.Equal(t, []events.EventType{
		events.EventTypeSyncing,
		events.EventTypeVotingEnabled,
		events.EventTypeCandidatesUpdated,
	}, sink.Types())
	assert.Equal(t, models.PlaybackInfo{URL: urls[1], Timestamp: 0, IsPlaying: true}, lastSyncing(t, sink))

	state := area.Snapshot()
	assert.Empty(t, state.Votes)
	assert.Equal(t, 120.0, state.DurationSeconds)
	assert.True(t, isPlaying(area))
}

func TestChooseNextVideo_UnknownWinnerUsesFallbackDuration(t *testing.T) {
	area, _ := newTestArea(t, nil)
	sink := &recordingSink{}
	area.Join("p1", sink)
	sink.Clear()

	area.CastVote("urlX")
	area.CastVote("urlY")
	area.CastVote("urlY")
	area.ChooseNextVideo()

	assert.Equal(t, models.PlaybackInfo{URL: "urlY", Timestamp: 0, IsPlaying: true}, lastSyncing(t, sink))
	state := area.Snapshot()
	assert.Empty(t, state.Votes)
	assert.Equal(t, DefaultFallbackDuration.Seconds(), state.DurationSeconds)
}

func TestChooseNextVideo_NoVotesPicksDefault(t *testing.T) {
	area, clock := newTestArea(t, nil)
	sink := &recordingSink{}
	area.Join("p1", sink)
	clock.Advance(5 * time.Second)
	sink.Clear()

	area.ChooseNextVideo()

	info := lastSyncing(t, sink)
	assert.Contains(t, testURLs(), info.URL)
	assert.Equal(t, 0.0, info.Timestamp)
	assert.True(t, info.IsPlaying)
	assert.Equal(t, 0.0, masterElapsed(area))
}

func TestChooseNextVideo_ReplacesLiveTimer(t *testing.T) {
	area, _ := newTestArea(t, nil)
	area.Join("p1", &recordingSink{})
	before := liveTimer(area)

	area.ChooseNextVideo()

	after := liveTimer(area)
	require.NotNil(t, after)
	assert.NotSame(t, before, after)
}

func TestTimerExpiry_AdvancesToNextVideo(t *testing.T) {
	area, clock := newTestArea(t, nil)
	sink := &recordingSink{}
	area.Join("p1", sink)
	area.CastVote(testURLs()[2])

	duration := area.Snapshot().DurationSeconds
	clock.Advance(time.Duration(duration * float64(time.Second)))

	assert.Eventually(t, func() bool {
		return len(sink.OfType(events.EventTypeSyncing)) == 2
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, models.PlaybackInfo{URL: testURLs()[2], Timestamp: 0, IsPlaying: true}, lastSyncing(t, sink))
	assert.Eventually(t, func() bool { return isPlaying(area) }, time.Second, 5*time.Millisecond)
	assert.Empty(t, area.Snapshot().Votes)
}

func TestTimerExpiry_CancelledTimerNeverFires(t *testing.T) {
	area, clock := newTestArea(t, nil)
	sink := &recordingSink{}
	area.Join("p1", sink)
	area.Pause()
	sink.Clear()

	clock.Advance(time.Hour)

	assert.Never(t, func() bool { return len(sink.Events()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.False(t, isPlaying(area))
}

func TestLeave_NotifiesLeaver(t *testing.T) {
	area, _ := newTestArea(t, nil)
	s1, s2 := &recordingSink{}, &recordingSink{}
	area.Join("p1", s1)
	area.Join("p2", s2)
	s1.Clear()
	s2.Clear()

	area.Leave("p1")

	assert.Equal(t, []events.EventType{
		events.EventTypeControlsDisabled,
		events.EventTypeVotingEnabled,
		events.EventTypeCandidatesReset,
	}, s1.Types())
	assert.Empty(t, s2.Events())
	assert.False(t, area.IsMember("p1"))
	assert.True(t, isPlaying(area), "remaining members keep watching")
}

func TestLeave_LastMemberResetsArea(t *testing.T) {
	lookup := &MockVideoLookup{}
	proposed := "https://youtu.be/proposed"
	lookup.On("Lookup", mock.Anything, proposed).
		Return(models.Video{Title: "Proposed", Channel: "Chan", DurationSeconds: 15}, nil)

	area, clock := newTestArea(t, lookup)
	sink := &recordingSink{}
	area.Join("p1", sink)
	area.ProposeVideo(context.Background(), proposed, sink)
	area.CastVote(proposed)
	clock.Advance(5 * time.Second)

	area.Leave("p1")

	state := area.Snapshot()
	assert.False(t, state.Playback.IsPlaying)
	assert.Equal(t, 0.0, state.Playback.Timestamp)
	assert.Contains(t, testURLs(), state.Playback.URL)
	assert.Equal(t, testVideos(), state.Candidates)
	assert.Empty(t, state.Votes)
	assert.Equal(t, 0, state.Members)

	// The stale timer must not fire after reset
	clock.Advance(time.Hour)
	assert.Never(t, func() bool { return isPlaying(area) }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestLeave_UnknownParticipantIsNoop(t *testing.T) {
	area, _ := newTestArea(t, nil)
	sink := &recordingSink{}
	area.Join("p1", sink)
	sink.Clear()

	area.Leave("nobody")

	assert.Empty(t, sink.Events())
	assert.True(t, isPlaying(area))
}

func TestLeave_RaceWithExpiry(t *testing.T) {
	for i := 0; i < 20; i++ {
		area, clock := newTestArea(t, nil)
		area.Join("p1", &recordingSink{})
		duration := area.Snapshot().DurationSeconds

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			clock.Advance(time.Duration(duration * float64(time.Second)))
		}()
		go func() {
			defer wg.Done()
			area.Leave("p1")
		}()
		wg.Wait()

		// Whichever ran first, the empty area ends up stopped at zero
		assert.Eventually(t, func() bool {
			state := area.Snapshot()
			return !state.Playback.IsPlaying && state.Playback.Timestamp == 0
		}, time.Second, 5*time.Millisecond, "iteration %d", i)
	}
}

func TestProposeVideo_Success(t *testing.T) {
	lookup := &MockVideoLookup{}
	url := "https://youtu.be/new"
	lookup.On("Lookup", mock.Anything, url).
		Return(models.Video{URL: "https://www.youtube.com/watch?v=new", Title: "New", Channel: "Chan", DurationSeconds: 42}, nil).
		Once()

	area, _ := newTestArea(t, lookup)
	s1, s2 := &recordingSink{}, &recordingSink{}
	area.Join("p1", s1)
	area.Join("p2", s2)
	s1.Clear()
	s2.Clear()

	area.ProposeVideo(context.Background(), url, s1)

	want := append(testVideos(), models.Video{URL: url, Title: "New", Channel: "Chan", DurationSeconds: 42})
	for _, sink := range []*recordingSink{s1, s2} {
		assert.Equal(t, []events.EventType{events.EventTypeCandidatesUpdated, events.EventTypeVideoAdded}, sink.Types())
		assert.Equal(t, want, sink.Events()[0].Videos)
	}
	assert.Equal(t, want, area.Snapshot().Candidates)
	lookup.AssertExpectations(t)
}

func TestProposeVideo_DuplicateIsIgnored(t *testing.T) {
	lookup := &MockVideoLookup{}
	area, _ := newTestArea(t, lookup)
	sink := &recordingSink{}
	area.Join("p1", sink)
	sink.Clear()

	area.ProposeVideo(context.Background(), testURLs()[0], sink)

	assert.Empty(t, sink.Events())
	assert.Len(t, area.Snapshot().Candidates, 3)
	lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestProposeVideo_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want events.EventType
	}{
		{
			name: "malformed url reported by lookup",
			err:  fmt.Errorf("parse: %w", models.ErrMalformedVideoURL),
			want: events.EventTypeVideoAddFailedURLFormat,
		},
		{
			name: "lookup failure",
			err:  fmt.Errorf("fetch: %w", models.ErrVideoLookupFailed),
			want: events.EventTypeVideoAddFailedLookup,
		},
		{
			name: "unexpected error",
			err:  errors.New("boom"),
			want: events.EventTypeVideoAddFailedLookup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := &MockVideoLookup{}
			url := "https://youtu.be/broken"
			lookup.On("Lookup", mock.Anything, url).Return(models.Video{}, tt.err)

			area, _ := newTestArea(t, lookup)
			submitter, other := &recordingSink{}, &recordingSink{}
			area.Join("p1", submitter)
			area.Join("p2", other)
			submitter.Clear()
			other.Clear()

			area.ProposeVideo(context.Background(), url, submitter)

			assert.Equal(t, []events.EventType{tt.want}, submitter.Types())
			assert.Empty(t, other.Events())
			assert.Len(t, area.Snapshot().Candidates, 3)
		})
	}
}

func TestProposeVideo_MalformedURLSkipsLookup(t *testing.T) {
	lookup := &MockVideoLookup{}
	area, _ := newTestArea(t, lookup)
	submitter, other := &recordingSink{}, &recordingSink{}
	area.Join("p1", submitter)
	area.Join("p2", other)
	submitter.Clear()
	other.Clear()

	area.ProposeVideo(context.Background(), "not-a-url", submitter)

	assert.Equal(t, []events.EventType{events.EventTypeVideoAddFailedURLFormat}, submitter.Types())
	assert.Empty(t, other.Events())
	assert.Len(t, area.Snapshot().Candidates, 3)
	lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestProposeVideo_NoLookupConfigured(t *testing.T) {
	area, _ := newTestArea(t, nil)
	sink := &recordingSink{}

	area.ProposeVideo(context.Background(), "https://youtu.be/x", sink)
	assert.Equal(t, []events.EventType{events.EventTypeVideoAddFailedLookup}, sink.Types())

	sink.Clear()
	area.ProposeVideo(context.Background(), "not-a-url", sink)
	assert.Equal(t, []events.EventType{events.EventTypeVideoAddFailedURLFormat}, sink.Types())
}

func TestProposeVideo_AreaEmptiedDuringLookup(t *testing.T) {
	url := "https://youtu.be/slow"
	started := make(chan struct{})
	release := make(chan struct{})
	lookup := &MockVideoLookup{}
	lookup.On("Lookup", mock.Anything, url).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return(models.Video{Title: "Slow", Channel: "Chan", DurationSeconds: 20}, nil)

	area, _ := newTestArea(t, lookup)
	sink := &recordingSink{}
	area.Join("p1", sink)

	done := make(chan struct{})
	go func() {
		defer close(done)
		area.ProposeVideo(context.Background(), url, sink)
	}()

	<-started
	area.Leave("p1")
	sink.Clear()
	close(release)
	<-done

	assert.Equal(t, testVideos(), area.Snapshot().Candidates)
	assert.Empty(t, sink.Events())
}

func TestProposeVideo_DroppedAfterResetAndRejoin(t *testing.T) {
	url := "https://youtu.be/slow"
	started := make(chan struct{})
	release := make(chan struct{})
	lookup := &MockVideoLookup{}
	lookup.On("Lookup", mock.Anything, url).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return(models.Video{Title: "Slow", Channel: "Chan", DurationSeconds: 20}, nil)

	area, _ := newTestArea(t, lookup)
	first, second := &recordingSink{}, &recordingSink{}
	area.Join("p1", first)

	done := make(chan struct{})
	go func() {
		defer close(done)
		area.ProposeVideo(context.Background(), url, first)
	}()

	<-started
	area.Leave("p1")
	area.Join("p2", second)
	second.Clear()
	close(release)
	<-done

	assert.Equal(t, testVideos(), area.Snapshot().Candidates)
	assert.Empty(t, second.OfType(events.EventTypeVideoAdded))
}

func TestProposeVideo_FromNonMember(t *testing.T) {
	lookup := &MockVideoLookup{}
	lookup.On("Lookup", mock.Anything, "https://youtu.be/x").
		Return(models.Video{Title: "X", DurationSeconds: 5}, nil)

	area, _ := newTestArea(t, lookup)
	member, outsider := &recordingSink{}, &recordingSink{}
	area.Join("p1", member)
	member.Clear()

	area.ProposeVideo(context.Background(), "https://youtu.be/x", outsider)

	assert.Empty(t, outsider.Events())
	assert.Equal(t, []events.EventType{events.EventTypeCandidatesUpdated, events.EventTypeVideoAdded}, member.Types())
}

func TestSnapshot_DoesNotMutate(t *testing.T) {
	area, clock := newTestArea(t, nil)
	sink := &recordingSink{}
	area.Join("p1", sink)
	area.CastVote("urlX")
	clock.Advance(3 * time.Second)
	sink.Clear()

	first := area.Snapshot()
	second := area.Snapshot()

	assert.Equal(t, first, second)
	assert.Empty(t, sink.Events())
	assert.Equal(t, map[string]int{"urlX": 1}, first.Votes)
	assert.InDelta(t, 3.0, first.Playback.Timestamp, 1e-6)
}

func TestElapsedNeverExceedsDuration(t *testing.T) {
	area, clock := newTestArea(t, nil)
	area.Join("p1", &recordingSink{})
	area.Pause()
	area.Play()

	duration := area.Snapshot().DurationSeconds
	for i := 0; i < 5; i++ {
		clock.Advance(time.Duration(duration / 10 * float64(time.Second)))
		state := area.Snapshot()
		assert.GreaterOrEqual(t, state.Playback.Timestamp, 0.0)
		assert.LessOrEqual(t, state.Playback.Timestamp, state.DurationSeconds)
	}
}
