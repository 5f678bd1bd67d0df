package tvarea

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/coveytv/go/internal/events"
	"github.com/mcdev12/coveytv/go/internal/models"
	"github.com/rs/zerolog/log"
)

// DefaultFallbackDuration is used when the winning URL is missing from the catalog
const DefaultFallbackDuration = 100 * time.Second

// VideoLookup resolves a submitted URL to video metadata. The area rejects
// structurally malformed URLs before calling it. An error wrapping
// models.ErrMalformedVideoURL is still reported as a format failure; any
// other error is a lookup failure.
type VideoLookup interface {
	Lookup(ctx context.Context, url string) (models.Video, error)
}

// Config holds the collaborators and tunables of an Area
type Config struct {
	TownID           string
	Clock            Clock
	Defaults         []models.Video
	FallbackDuration time.Duration
	Lookup           VideoLookup
	Rand             *rand.Rand
}

// State is a read-only snapshot of an area
type State struct {
	Playback        models.PlaybackInfo `json:"playback"`
	DurationSeconds float64             `json:"duration_sec"`
	Candidates      []models.Video      `json:"candidates"`
	Votes           map[string]int      `json:"votes"`
	Members         int                 `json:"members"`
}

// Area is the playback state machine of one town's TV area.
//
// The area is Playing while a timer is live and Stopped otherwise. All
// operations, including the timer's deadline callback, run under a single
// mutex; sinks are notified while it is held and must not block.
type Area struct {
	mu sync.Mutex

	townID           string
	clock            Clock
	rng              *rand.Rand
	lookup           VideoLookup
	defaults         []models.Video
	fallbackDuration float64

	catalog *Catalog
	votes   *VoteTally
	members *Membership

	timer         *Timer
	generation    uint64
	defaultVideo  models.Video
	currentURL    string
	videoDuration float64
	masterElapsed float64
}

// NewArea creates a stopped area with a randomly chosen default video
func NewArea(cfg Config) *Area {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if len(cfg.Defaults) == 0 {
		cfg.Defaults = DefaultVideos()
	}
	if cfg.FallbackDuration <= 0 {
		cfg.FallbackDuration = DefaultFallbackDuration
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	a := &Area{
		townID:           cfg.TownID,
		clock:            cfg.Clock,
		rng:              cfg.Rand,
		lookup:           cfg.Lookup,
		defaults:         models.CloneVideos(cfg.Defaults),
		fallbackDuration: cfg.FallbackDuration.Seconds(),
		catalog:          NewCatalog(cfg.Defaults),
		votes:            NewVoteTally(),
		members:          NewMembership(),
	}
	a.resetLocked()
	return a
}

// Pause stops playback for everyone in the area. No-op when already stopped.
func (a *Area) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pauseLocked()
}

// Play resumes playback from the accumulated position. No-op when already playing.
func (a *Area) Play() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playLocked()
}

// Sync re-broadcasts the authoritative position. While playing this is a
// pause immediately followed by a play.
func (a *Area) Sync() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.pauseLocked()
		a.playLocked()
		return
	}
	a.members.Broadcast(events.Syncing(models.PlaybackInfo{
		URL:       a.currentURL,
		Timestamp: a.masterElapsed,
		IsPlaying: false,
	}))
}

// Join registers a participant in the area and brings its player up to date.
// The first participant to enter a stopped area starts the default video. A
// participant already inside only gets its sink replaced and a fresh snapshot.
func (a *Area) Join(participantID string, sink events.Sink) {
	a.mu.Lock()
	defer a.mu.Unlock()

	added := a.members.Add(participantID, sink)

	var info models.PlaybackInfo
	switch {
	case a.timer != nil:
		info = models.PlaybackInfo{
			URL:       a.currentURL,
			Timestamp: a.clampElapsed(a.masterElapsed + a.timer.ElapsedSeconds()),
			IsPlaying: true,
		}
	case added && a.members.Len() == 1:
		a.adoptDefaultLocked()
		info = a.defaultInfo()
		a.armTimerLocked()
	default:
		info = models.PlaybackInfo{
			URL:       a.currentURL,
			Timestamp: a.masterElapsed,
			IsPlaying: false,
		}
	}

	sink.Notify(events.Syncing(info))
	sink.Notify(events.Signal(events.EventTypeVotingWidgetShown))
	sink.Notify(events.CandidatesUpdated(a.catalog.Videos()))

	log.Info().
		Str("town_id", a.townID).
		Str("participant_id", participantID).
		Int("members", a.members.Len()).
		Str("url", info.URL).
		Bool("playing", info.IsPlaying).
		Msg("participant joined tv area")
}

// Leave removes a participant from the area. The last one out resets the
// area to a fresh stopped baseline. Unknown participants are ignored.
func (a *Area) Leave(participantID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sink, ok := a.members.Remove(participantID)
	if !ok {
		return
	}
	sink.Notify(events.Signal(events.EventTypeControlsDisabled))
	sink.Notify(events.Signal(events.EventTypeVotingEnabled))
	sink.Notify(events.Signal(events.EventTypeCandidatesReset))

	log.Info().
		Str("town_id", a.townID).
		Str("participant_id", participantID).
		Int("members", a.members.Len()).
		Msg("participant left tv area")

	if a.members.IsEmpty() {
		a.resetLocked()
		log.Debug().
			Str("town_id", a.townID).
			Str("url", a.currentURL).
			Msg("tv area empty, reset to defaults")
	}
}

// ChooseNextVideo ends the current round: the plurality winner (or a random
// default when nobody voted) starts playing from the beginning.
func (a *Area) ChooseNextVideo() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.chooseNextVideoLocked()
}

// CastVote records a vote for url in the current round. The URL is not
// checked against the catalog.
func (a *Area) CastVote(url string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.votes.Cast(url)
	log.Debug().
		Str("town_id", a.townID).
		Str("url", url).
		Int("votes", a.votes.Count(url)).
		Msg("vote cast")
}

// ProposeVideo checks that url is a video URL, resolves it with the lookup
// collaborator and adds it to the catalog. Duplicates are ignored; failures
// are reported to submitter only. The lookup runs without holding the area
// lock, and its result is dropped if the area emptied in the meantime.
func (a *Area) ProposeVideo(ctx context.Context, url string, submitter events.Sink) {
	a.mu.Lock()
	duplicate := a.catalog.Contains(url)
	generation := a.generation
	a.mu.Unlock()
	if duplicate {
		log.Debug().Str("town_id", a.townID).Str("url", url).Msg("ignoring duplicate video proposal")
		return
	}

	video, err := a.lookupVideo(ctx, url)
	if err != nil {
		if errors.Is(err, models.ErrMalformedVideoURL) {
			submitter.Notify(events.Signal(events.EventTypeVideoAddFailedURLFormat))
		} else {
			submitter.Notify(events.Signal(events.EventTypeVideoAddFailedLookup))
		}
		log.Warn().Err(err).Str("town_id", a.townID).Str("url", url).Msg("unable to add proposed video")
		return
	}
	video.URL = url

	a.mu.Lock()
	defer a.mu.Unlock()

	// An empty area keeps the default catalog
	if a.generation != generation || a.members.IsEmpty() {
		log.Debug().Str("town_id", a.townID).Str("url", url).Msg("tv area reset during lookup, dropping proposal")
		return
	}
	if !a.catalog.Add(video) {
		return
	}
	videos := a.catalog.Videos()
	a.members.ForEach(func(sink events.Sink) {
		sink.Notify(events.CandidatesUpdated(videos))
		sink.Notify(events.Signal(events.EventTypeVideoAdded))
	})

	log.Info().
		Str("town_id", a.townID).
		Str("url", url).
		Str("title", video.Title).
		Int("candidates", len(videos)).
		Msg("video added to catalog")
}

// Snapshot returns the current state without changing it
func (a *Area) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	return State{
		Playback:        a.playbackLocked(),
		DurationSeconds: a.videoDuration,
		Candidates:      a.catalog.Videos(),
		Votes:           a.votes.Snapshot(),
		Members:         a.members.Len(),
	}
}

// IsMember reports whether participant is inside the area
func (a *Area) IsMember(participantID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.members.Contains(participantID)
}

// Close stops any live timer. Used when the town is torn down.
func (a *Area) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelTimerLocked()
}

func (a *Area) pauseLocked() {
	if a.timer == nil {
		return
	}
	a.masterElapsed = a.clampElapsed(a.masterElapsed + a.timer.ElapsedSeconds())
	a.cancelTimerLocked()
	a.members.Broadcast(events.Paused())

	log.Debug().
		Str("town_id", a.townID).
		Float64("elapsed_sec", a.masterElapsed).
		Msg("tv area paused")
}

func (a *Area) playLocked() {
	if a.timer != nil {
		return
	}
	a.members.Broadcast(events.Syncing(models.PlaybackInfo{
		URL:       a.currentURL,
		Timestamp: a.masterElapsed,
		IsPlaying: true,
	}))
	a.armTimerLocked()

	log.Debug().
		Str("town_id", a.townID).
		Float64("elapsed_sec", a.masterElapsed).
		Msg("tv area playing")
}

func (a *Area) chooseNextVideoLocked() {
	a.cancelTimerLocked()
	a.masterElapsed = 0

	winner := a.votes.Winner(a.randomDefault().URL)
	a.currentURL = winner
	if video, ok := a.catalog.Find(winner); ok {
		a.videoDuration = float64(video.DurationSeconds)
	} else {
		log.Warn().
			Str("town_id", a.townID).
			Str("url", winner).
			Msg("winning video not in catalog, using fallback duration")
		a.videoDuration = a.fallbackDuration
	}

	a.members.Broadcast(events.Syncing(models.PlaybackInfo{
		URL:       winner,
		Timestamp: 0,
		IsPlaying: true,
	}))
	a.armTimerLocked()

	videos := a.catalog.Videos()
	a.members.ForEach(func(sink events.Sink) {
		sink.Notify(events.Signal(events.EventTypeVotingEnabled))
		sink.Notify(events.CandidatesUpdated(videos))
	})

	log.Info().
		Str("town_id", a.townID).
		Str("url", winner).
		Int("votes", a.votes.Count(winner)).
		Float64("duration_sec", a.videoDuration).
		Msg("next video chosen")

	a.votes.Reset()
}

// armTimerLocked starts a timer for the rest of the current video. The
// callback re-enters through the mutex and does nothing unless its timer is
// still the live one, so a cancelled timer can never advance the area.
func (a *Area) armTimerLocked() {
	remaining := a.videoDuration - a.masterElapsed
	if remaining < 0 {
		remaining = 0
	}

	var t *Timer
	t = StartTimer(a.clock, time.Duration(remaining*float64(time.Second)), func() {
		a.mu.Lock()
		defer a.mu.Unlock()

		if a.timer != t {
			return
		}
		a.timer = nil
		a.chooseNextVideoLocked()
	})
	a.timer = t
}

func (a *Area) cancelTimerLocked() {
	if a.timer == nil {
		return
	}
	a.timer.Cancel()
	a.timer = nil
}

// resetLocked returns the area to its canonical stopped baseline
func (a *Area) resetLocked() {
	a.generation++
	a.cancelTimerLocked()
	a.masterElapsed = 0
	a.catalog.Reset()
	a.votes.Reset()

	a.defaultVideo = a.randomDefault()
	a.currentURL = a.defaultVideo.URL
	a.videoDuration = float64(a.defaultVideo.DurationSeconds)
}

// adoptDefaultLocked makes the session default the current video
func (a *Area) adoptDefaultLocked() {
	a.masterElapsed = 0
	a.currentURL = a.defaultVideo.URL
	a.videoDuration = float64(a.defaultVideo.DurationSeconds)
}

func (a *Area) defaultInfo() models.PlaybackInfo {
	return models.PlaybackInfo{URL: a.defaultVideo.URL, Timestamp: 0, IsPlaying: true}
}

func (a *Area) playbackLocked() models.PlaybackInfo {
	if a.timer != nil {
		return models.PlaybackInfo{
			URL:       a.currentURL,
			Timestamp: a.clampElapsed(a.masterElapsed + a.timer.ElapsedSeconds()),
			IsPlaying: true,
		}
	}
	return models.PlaybackInfo{URL: a.currentURL, Timestamp: a.masterElapsed, IsPlaying: false}
}

func (a *Area) randomDefault() models.Video {
	return a.defaults[a.rng.Intn(len(a.defaults))]
}

func (a *Area) clampElapsed(seconds float64) float64 {
	if seconds < 0 {
		return 0
	}
	if a.videoDuration > 0 && seconds > a.videoDuration {
		return a.videoDuration
	}
	return seconds
}

func (a *Area) lookupVideo(ctx context.Context, url string) (models.Video, error) {
	if _, err := models.ParseVideoURL(url); err != nil {
		return models.Video{}, err
	}
	if a.lookup == nil {
		return models.Video{}, models.ErrVideoLookupFailed
	}
	return a.lookup.Lookup(ctx, url)
}
