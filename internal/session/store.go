package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/opencode-ai/opencode/pkg/types"
)

// loadSession reads one session by ID.
func (p *Processor) loadSession(ctx context.Context, sessionID string) (*types.Session, error) {
	var s types.Session
	if err := p.storage.Get(ctx, []string{"session", sessionID}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// saveSession persists a session, bumping its updated timestamp.
func (p *Processor) saveSession(ctx context.Context, s *types.Session) error {
	s.Time.Updated = time.Now().UnixMilli()
	return p.storage.Put(ctx, []string{"session", s.ID}, s)
}

// loadMessages loads every message for a session, in append (Seq) order.
func (p *Processor) loadMessages(ctx context.Context, sessionID string) ([]*types.Message, error) {
	var messages []*types.Message
	err := p.storage.Scan(ctx, []string{"message", sessionID}, func(key string, data json.RawMessage) error {
		var msg types.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("corrupt message %s: %w", key, err)
		}
		messages = append(messages, &msg)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(messages, func(i, j int) bool { return messages[i].Seq < messages[j].Seq })
	return messages, nil
}

// appendMessage assigns the next sequence number and persists a message.
// The Message Store is append-only: existing messages are never rewritten.
func (p *Processor) appendMessage(ctx context.Context, sessionID string, msg *types.Message) error {
	existing, err := p.loadMessages(ctx, sessionID)
	if err != nil {
		return err
	}

	var nextSeq int64
	if len(existing) > 0 {
		nextSeq = existing[len(existing)-1].Seq + 1
	}
	msg.Seq = nextSeq

	return p.storage.Put(ctx, []string{"message", sessionID, msg.ID}, msg)
}
