// Copyright 2026 The Drone Deck Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"time"

	"github.com/google/uuid"
)

// PromptState is the delivery lifecycle of a queued prompt.
type PromptState string

const (
	// PromptQueued means the prompt is waiting for a flush loop to
	// pick it up.
	PromptQueued PromptState = "queued"

	// PromptSending means a flush loop has the prompt in flight.
	PromptSending PromptState = "sending"

	// PromptFailed means delivery failed. A failed head blocks every
	// prompt behind it until the operator removes or retries it.
	PromptFailed PromptState = "failed"
)

// QueueKey identifies one ordered prompt queue: a drone and a chat
// within it. No ordering guarantee exists across different keys.
type QueueKey struct {
	DroneID string
	Chat    string
}

// QueuedPrompt is one not-yet-delivered prompt.
type QueuedPrompt struct {
	// ID is generated at enqueue time and names the prompt for
	// Remove/Retry operations. Distinct from the prompt ID the hangar
	// assigns on delivery.
	ID string

	// Text is the prompt body.
	Text string

	// State is the delivery lifecycle state.
	State PromptState

	// Error holds the delivery error text when State is failed.
	Error string

	// CreatedAt is the enqueue time.
	CreatedAt time.Time

	// UpdatedAt is the time of the last state transition.
	UpdatedAt time.Time
}

// PromptQueue holds ordered, per-key lists of prompts awaiting
// delivery. Prompts leave a queue only through [PromptQueue.Remove]
// (called by the flush loop on success, or by the operator to clear a
// failed head).
//
// Not safe for concurrent use; the Reconciler serializes access
// through its mutex.
type PromptQueue struct {
	queues map[QueueKey][]*QueuedPrompt
}

// NewPromptQueue returns an empty prompt queue.
func NewPromptQueue() *PromptQueue {
	return &PromptQueue{queues: make(map[QueueKey][]*QueuedPrompt)}
}

// Enqueue appends a queued prompt and returns a copy of it. Empty
// text is a no-op returning ok=false.
func (q *PromptQueue) Enqueue(key QueueKey, text string, now time.Time) (QueuedPrompt, bool) {
	if text == "" {
		return QueuedPrompt{}, false
	}
	prompt := &QueuedPrompt{
		ID:        uuid.NewString(),
		Text:      text,
		State:     PromptQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	q.queues[key] = append(q.queues[key], prompt)
	return *prompt, true
}

// Head returns a copy of the first prompt in the key's queue.
func (q *PromptQueue) Head(key QueueKey) (QueuedPrompt, bool) {
	queue := q.queues[key]
	if len(queue) == 0 {
		return QueuedPrompt{}, false
	}
	return *queue[0], true
}

// MarkSending transitions a queued prompt to sending. Returns false if
// the prompt is missing or not in the queued state.
func (q *PromptQueue) MarkSending(key QueueKey, id string, now time.Time) bool {
	prompt := q.find(key, id)
	if prompt == nil || prompt.State != PromptQueued {
		return false
	}
	prompt.State = PromptSending
	prompt.UpdatedAt = now
	return true
}

// MarkFailed transitions a sending prompt to failed, recording the
// delivery error text. Returns false if the prompt is missing or not
// in the sending state.
func (q *PromptQueue) MarkFailed(key QueueKey, id, errorText string, now time.Time) bool {
	prompt := q.find(key, id)
	if prompt == nil || prompt.State != PromptSending {
		return false
	}
	prompt.State = PromptFailed
	prompt.Error = errorText
	prompt.UpdatedAt = now
	return true
}

// MarkQueued transitions a failed prompt back to queued, clearing its
// error. This is the operator's explicit retry; nothing in the engine
// retries automatically. Returns false if the prompt is missing or not
// in the failed state.
func (q *PromptQueue) MarkQueued(key QueueKey, id string, now time.Time) bool {
	prompt := q.find(key, id)
	if prompt == nil || prompt.State != PromptFailed {
		return false
	}
	prompt.State = PromptQueued
	prompt.Error = ""
	prompt.UpdatedAt = now
	return true
}

// Remove deletes a prompt from its queue in any state. Returns false
// if the prompt is missing.
func (q *PromptQueue) Remove(key QueueKey, id string) bool {
	queue := q.queues[key]
	for i, prompt := range queue {
		if prompt.ID != id {
			continue
		}
		queue = append(queue[:i], queue[i+1:]...)
		if len(queue) == 0 {
			delete(q.queues, key)
		} else {
			q.queues[key] = queue
		}
		return true
	}
	return false
}

// Items returns copies of the key's prompts in insertion order.
func (q *PromptQueue) Items(key QueueKey) []QueuedPrompt {
	queue := q.queues[key]
	if len(queue) == 0 {
		return nil
	}
	items := make([]QueuedPrompt, len(queue))
	for i, prompt := range queue {
		items[i] = *prompt
	}
	return items
}

// Depth returns the number of prompts waiting under the key.
func (q *PromptQueue) Depth(key QueueKey) int {
	return len(q.queues[key])
}

// KeysFor returns every queue key belonging to a drone that still has
// prompts waiting.
func (q *PromptQueue) KeysFor(droneID string) []QueueKey {
	var keys []QueueKey
	for key := range q.queues {
		if key.DroneID == droneID {
			keys = append(keys, key)
		}
	}
	return keys
}

func (q *PromptQueue) find(key QueueKey, id string) *QueuedPrompt {
	for _, prompt := range q.queues[key] {
		if prompt.ID == id {
			return prompt
		}
	}
	return nil
}
