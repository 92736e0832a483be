//go:build linux

package mpris

import (
	"strings"
	"testing"
	"testing/synctest"

	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tubeplay/internal/playback"
	"github.com/llehouerou/tubeplay/internal/player"
	"github.com/llehouerou/tubeplay/internal/resolver"
	"github.com/llehouerou/tubeplay/internal/sink"
)

const testRef = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func newTestAdapter(t *testing.T) (*playerAdapter, *player.Mock, *playback.Controller) {
	t.Helper()
	eng := player.NewMock()
	c := playback.New(resolver.NewMock(), eng, sink.New(sink.Options{}))
	t.Cleanup(func() { _ = c.Close() })
	return &playerAdapter{service: c}, eng, c
}

func TestPlayerAdapter_OpenUriPlays(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, eng, c := newTestAdapter(t)

		require.NoError(t, p.OpenUri(testRef))
		synctest.Wait()
		eng.CompletePrepare()
		synctest.Wait()

		status, _ := p.PlaybackStatus()
		assert.Equal(t, types.PlaybackStatusPlaying, status)
		assert.Equal(t, playback.StatePlaying, c.State())

		meta, _ := p.Metadata()
		assert.Equal(t, testRef, meta.Title)
		assert.True(t, strings.HasPrefix(string(meta.TrackId), "/org/mpris/MediaPlayer2/Track/"))
	})
}

func TestPlayerAdapter_OpenUriRejectsBlank(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, _, _ := newTestAdapter(t)

		assert.ErrorIs(t, p.OpenUri("  "), playback.ErrEmptyReference)
	})
}

func TestPlayerAdapter_PlayPauseToggles(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, eng, c := newTestAdapter(t)
		require.NoError(t, p.OpenUri(testRef))
		synctest.Wait()
		eng.CompletePrepare()
		synctest.Wait()

		require.NoError(t, p.PlayPause())
		synctest.Wait()
		assert.Equal(t, playback.StatePaused, c.State())
		status, _ := p.PlaybackStatus()
		assert.Equal(t, types.PlaybackStatusPaused, status)

		require.NoError(t, p.PlayPause())
		synctest.Wait()
		assert.Equal(t, playback.StatePlaying, c.State())
	})
}

func TestPlayerAdapter_PlayRestartsLastReference(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, eng, c := newTestAdapter(t)

		canPlay, _ := p.CanPlay()
		assert.False(t, canPlay)
		require.NoError(t, p.Play())
		synctest.Wait()
		assert.Equal(t, playback.StateIdle, c.State())

		require.NoError(t, p.OpenUri(testRef))
		synctest.Wait()
		eng.CompletePrepare()
		synctest.Wait()
		require.NoError(t, p.Stop())
		synctest.Wait()
		status, _ := p.PlaybackStatus()
		assert.Equal(t, types.PlaybackStatusStopped, status)
		meta, _ := p.Metadata()
		assert.Empty(t, meta.Title)

		require.NoError(t, p.Play())
		synctest.Wait()
		assert.Equal(t, playback.StatePreparing, c.State())
		assert.Len(t, eng.PrepareCalls(), 2)
	})
}

func TestFormatTrackID_Stable(t *testing.T) {
	assert.Equal(t, formatTrackID("a"), formatTrackID("a"))
	assert.NotEqual(t, formatTrackID("a"), formatTrackID("b"))
}
