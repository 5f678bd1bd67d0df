package gateway

import (
	"context"

	"github.com/rs/zerolog/log"
)

// handleClientMessage dispatches one client intent. TV controls are only
// honoured for members of the TV area.
func (c *Connection) handleClientMessage(data []byte) {
	msg, err := c.codec.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("connection_id", c.ID).Msg("failed to decode client message")
		return
	}

	log.Debug().
		Str("connection_id", c.ID).
		Str("player_id", c.PlayerID).
		Str("intent", string(msg.Type)).
		Msg("received client message")

	tv := c.controller.TV()

	switch msg.Type {
	case IntentJoinTVArea:
		tv.Join(c.PlayerID, c)
		return
	case IntentMove:
		if msg.Location == nil {
			log.Warn().Str("connection_id", c.ID).Msg("move intent without location")
			return
		}
		c.controller.UpdatePlayerLocation(c.session.Player, *msg.Location)
		return
	}

	if !tv.IsMember(c.PlayerID) {
		log.Debug().
			Str("connection_id", c.ID).
			Str("intent", string(msg.Type)).
			Msg("ignoring tv intent from non-member")
		return
	}

	switch msg.Type {
	case IntentLeaveTVArea:
		tv.Leave(c.PlayerID)
	case IntentPause:
		tv.Pause()
	case IntentPlay:
		tv.Play()
	case IntentSync:
		tv.Sync()
	case IntentAdvance:
		tv.ChooseNextVideo()
	case IntentVote:
		if msg.URL == "" {
			return
		}
		tv.CastVote(msg.URL)
	case IntentProposeVideo:
		go c.proposeVideo(msg.URL)
	default:
		log.Warn().Str("connection_id", c.ID).Str("intent", string(msg.Type)).Msg("unknown client intent")
	}
}

// proposeVideo runs off the read pump so a slow lookup only delays its submitter
func (c *Connection) proposeVideo(url string) {
	ctx, cancel := context.WithTimeout(c.ctx, c.Manager.config.LookupTimeout)
	defer cancel()
	c.controller.TV().ProposeVideo(ctx, url, c)
}
