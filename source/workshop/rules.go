package workshop

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/herald"
	"github.com/xraph/herald/correlation"
	"github.com/xraph/herald/destination"
	"github.com/xraph/herald/event"
	"github.com/xraph/herald/message"
	"github.com/xraph/herald/rule"
)

func (s *Source) buildRules() []*rule.Rule {
	return []*rule.Rule{
		{
			Name:           KindCreated,
			Target:         s.cfg.Announcement,
			Compose:        s.composeCreated,
			Wait:           true,
			OnAcknowledged: s.announce,
		},
		{
			Name:    KindUpdated,
			Target:  s.cfg.Forum,
			Compose: s.composeUpdated,
			Mutate:  s.attachThread,
		},
	}
}

func (s *Source) composeCreated(evt *event.Event) (*message.Message, error) {
	item, err := itemOf(evt)
	if err != nil {
		return nil, err
	}
	return s.cfg.Composer.Created(item), nil
}

func (s *Source) composeUpdated(evt *event.Event) (*message.Message, error) {
	item, err := itemOf(evt)
	if err != nil {
		return nil, err
	}
	return s.cfg.Composer.Updated(item), nil
}

// announce follows a created item's acknowledged announcement: publish it,
// open the item's forum thread, post the creator follow-up into the thread,
// and record the thread. Each step needs the previous one to have succeeded.
func (s *Source) announce(ctx context.Context, evt *event.Event, ack destination.Ack) error {
	item, err := itemOf(evt)
	if err != nil {
		return err
	}

	if err := s.client.Publish(ctx, ack.ChannelID, ack.MessageID); err != nil {
		return fmt.Errorf("publish announcement: %w", err)
	}

	thread, err := s.client.PostWait(ctx, s.cfg.Forum, s.cfg.Composer.Thread(item, ack))
	if err != nil {
		return fmt.Errorf("open thread: %w", err)
	}
	if thread.ThreadID == "" {
		return fmt.Errorf("%w: thread post returned no thread id", herald.ErrMissingAcknowledgement)
	}

	if err := s.client.Post(ctx, s.cfg.Forum.InThread(thread.ThreadID), s.cfg.Composer.MoreByCreator(item)); err != nil {
		return fmt.Errorf("post creator follow-up: %w", err)
	}

	// Last writer wins: a racing duplicate may already have recorded another thread.
	if err := s.corr.PutCorrelation(ctx, &correlation.Entry{
		EntityID: item.ID,
		ThreadID: thread.ThreadID,
		Source:   Name,
	}); err != nil {
		return fmt.Errorf("record thread: %w", err)
	}

	s.logger.Info("workshop thread recorded",
		"event_id", evt.ID.String(),
		"entity_id", item.ID,
		"thread_id", thread.ThreadID,
	)
	return nil
}

// attachThread routes an update into the item's recorded thread. With no
// recorded thread it opens one with a backfill post and records it; if that
// yields no thread the dispatch is cancelled.
//
// The lookup and the write are not atomic, so concurrent updates for the
// same item can each open a thread.
func (s *Source) attachThread(ctx context.Context, evt *event.Event, r *rule.Resolved) error {
	item, err := itemOf(evt)
	if err != nil {
		return err
	}

	entry, err := s.corr.GetCorrelation(ctx, item.ID)
	if err == nil {
		r.AttachThread(entry.ThreadID)
		return nil
	}
	if !errors.Is(err, herald.ErrCorrelationNotFound) {
		return fmt.Errorf("look up thread: %w", err)
	}

	ack, err := s.client.PostWait(ctx, s.cfg.Forum, s.cfg.Composer.Backfill(item))
	if err != nil {
		r.Cancel("backfill post failed: " + err.Error())
		return nil
	}
	if ack.ThreadID == "" {
		r.Cancel("backfill post returned no thread id")
		return nil
	}

	if err := s.corr.PutCorrelation(ctx, &correlation.Entry{
		EntityID: item.ID,
		ThreadID: ack.ThreadID,
		Source:   Name,
	}); err != nil {
		return fmt.Errorf("record backfilled thread: %w", err)
	}

	// The item's announcement, publish and creator follow-up are not replayed.
	s.logger.Warn("workshop thread backfilled",
		"event_id", evt.ID.String(),
		"entity_id", item.ID,
		"thread_id", ack.ThreadID,
		"backfill", true,
	)
	r.AttachThread(ack.ThreadID)
	r.Backfilled = true
	return nil
}
