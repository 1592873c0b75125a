// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

// maxRecentSent bounds the recently-sent display list.
const maxRecentSent = 20

// maybeStartFlushLocked starts a flush loop for a key when one can
// make progress: the engine is live, no loop already owns the key, and
// the head of the queue is in the queued state. A failed or in-flight
// head starts nothing; that is the head-of-line block. Must be called
// with mu held.
func (r *Reconciler) maybeStartFlushLocked(key QueueKey) {
	if r.closed {
		return
	}
	if _, active := r.flushing[key]; active {
		return
	}
	head, ok := r.queue.Head(key)
	if !ok || head.State != PromptQueued {
		return
	}
	r.flushing[key] = struct{}{}
	go r.flush(key)
}

// flush delivers one queue's prompts strictly in insertion order until
// the queue empties, the head stops being deliverable, or a delivery
// fails. Each iteration re-reads the live queue rather than operating
// on a copy, so removals and retries that land between iterations take
// effect.
//
// The key's entry in the flushing set is released under the same lock
// that records the loop's final state, so an operator reacting to a
// failure event can always restart the queue immediately.
func (r *Reconciler) flush(key QueueKey) {
	for {
		r.mu.Lock()
		if r.closed {
			delete(r.flushing, key)
			r.mu.Unlock()
			return
		}
		head, ok := r.queue.Head(key)
		if !ok || head.State != PromptQueued {
			// Queue drained, or a failed head is blocking the line.
			delete(r.flushing, key)
			r.mu.Unlock()
			return
		}
		r.queue.MarkSending(key, head.ID, r.clock.Now())
		r.mu.Unlock()

		promptID, err := r.commander.SendPrompt(r.ctx, key.DroneID, key.Chat, head.Text)

		r.mu.Lock()
		if r.closed {
			// The view is gone; discard the in-flight outcome.
			delete(r.flushing, key)
			r.mu.Unlock()
			return
		}
		if err != nil {
			r.queue.MarkFailed(key, head.ID, err.Error(), r.clock.Now())
			delete(r.flushing, key)
			r.mu.Unlock()
			r.logger.Warn("prompt delivery failed",
				"drone_id", key.DroneID,
				"chat", key.Chat,
				"error", err,
			)
			r.emit(Event{Kind: EventDeliveryFailed, DroneID: key.DroneID, Chat: key.Chat})
			return
		}
		r.queue.Remove(key, head.ID)
		if r.hasSelected && r.selected == key {
			r.recent = append(r.recent, SentPrompt{
				PromptID: promptID,
				Text:     head.Text,
				SentAt:   r.clock.Now(),
			})
			if len(r.recent) > maxRecentSent {
				r.recent = r.recent[len(r.recent)-maxRecentSent:]
			}
		}
		r.mu.Unlock()
		r.emit(Event{Kind: EventPromptSent, DroneID: key.DroneID, Chat: key.Chat})
	}
}
