package repositories

import (
	"conference-lab/domain/event"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const journalPrefix = "evt:"

// Journal is the session log of committed events, kept in an in-memory
// BadgerDB so that it is discarded together with the conference session.
type Journal struct {
	db  *badger.DB
	log *slog.Logger
}

// OpenJournal opens a fresh in-memory journal.
func OpenJournal(log *slog.Logger) (*Journal, error) {
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("journal opening failed: %w", err)
	}
	return NewJournal(db, log), nil
}

func NewJournal(db *badger.DB, log *slog.Logger) *Journal {
	return &Journal{db: db, log: log}
}

type diskRecord struct {
	Seq     uint64          `json:"seq"`
	ID      string          `json:"id"`
	At      int64           `json:"at"`
	Kind    event.Kind      `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// journalKey pads the sequence number to 19 digits so that the
// lexicographical key order is the commit order.
func journalKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%019d", journalPrefix, seq))
}

// Append stores rec under its sequence number. Appending the same sequence
// twice overwrites the first record.
func (j *Journal) Append(_ context.Context, rec event.Record) error {
	payload, err := json.Marshal(rec.Event)
	if err != nil {
		return err
	}
	bytes, err := json.Marshal(diskRecord{
		Seq:     rec.Seq,
		ID:      rec.ID.String(),
		At:      rec.At.UnixNano(),
		Kind:    rec.Event.Kind(),
		Payload: payload,
	})
	if err != nil {
		return err
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(journalKey(rec.Seq), bytes)
	})
}

// ListEvents returns at most limit records with a sequence number greater
// than afterSeq, in commit order.
func (j *Journal) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Record, error) {
	var raw [][]byte
	err := j.db.View(func(txn *badger.Txn) error {
		prefix := []byte(journalPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(journalKey(afterSeq + 1)); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(raw) == limit {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			raw = append(raw, value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]event.Record, 0, len(raw))
	for _, b := range raw {
		rec, err := toRecord(b)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func toRecord(b []byte) (event.Record, error) {
	var d diskRecord
	if err := json.Unmarshal(b, &d); err != nil {
		return event.Record{}, err
	}
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return event.Record{}, err
	}
	evt, err := event.DecodePayload(d.Kind, d.Payload)
	if err != nil {
		return event.Record{}, err
	}
	return event.Record{
		Seq:   d.Seq,
		ID:    id,
		At:    time.Unix(0, d.At).UTC(),
		Event: evt,
	}, nil
}

// Close drops the journal content.
func (j *Journal) Close() error {
	j.log.Debug("Closing session journal")
	return j.db.Close()
}
