// Package eventstore persists serialized events as an append-only record
// set in BadgerDB. Records carry a strictly increasing surrogate id which
// doubles as the freshness tiebreak for duplicate lookups.
package eventstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"studychat/domain/event"
	"studychat/errors"
)

const (
	// RecordPrefix namespaces event records. The 19-digit zero padded id
	// keeps lexicographic key order identical to numeric insertion order,
	// so prefix scans walk records oldest to newest.
	RecordPrefix = "event:"

	sequenceKey = "seq:event"
	maxPadded   = "9999999999999999999"
)

// Record is the storage representation of one serialized event.
// Once written, Payload is immutable.
type Record struct {
	ID      uint64     `json:"id"`
	Kind    event.Kind `json:"kind"`
	Payload []byte     `json:"payload"`
}

type Store struct {
	db  *badger.DB
	log *slog.Logger

	// mu serializes id assignment; each Append is all-or-nothing but
	// concurrent commands may interleave their appends freely.
	mu   sync.Mutex
	next uint64
}

// New opens a store over db, recovering the id sequence from the last
// committed append so ids stay monotonic across restarts.
func New(db *badger.DB, log *slog.Logger) (*Store, error) {
	s := &Store{db: db, log: log}
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sequenceKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			s.next = binary.BigEndian.Uint64(v)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	return s, nil
}

// Append assigns the next surrogate id and durably writes the record.
// Storage failures are surfaced to the caller, never swallowed.
func (s *Store) Append(_ context.Context, kind event.Kind, payload []byte) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next + 1
	record := Record{ID: id, Kind: kind, Payload: payload}
	raw, err := json.Marshal(record)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", errors.ErrSerialization, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(recordKey(id), raw); err != nil {
			return err
		}
		var seq [8]byte
		binary.BigEndian.PutUint64(seq[:], id)
		return txn.Set([]byte(sequenceKey), seq[:])
	})
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}

	s.next = id
	s.log.Debug("event appended", "id", id, "kind", kind)
	return record, nil
}

// FindLatestByKindContaining returns the record of the given kind with
// the greatest id whose payload contains substring. Containment, not
// equality, is the duplicate predicate; "hello" matches a stored
// "hello world" on purpose.
func (s *Store) FindLatestByKindContaining(_ context.Context, kind event.Kind, substring string) (Record, bool, error) {
	var found Record
	var ok bool
	err := s.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(RecordPrefix)
		seekKey := append([]byte(RecordPrefix), []byte(maxPadded)...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			record, err := decodeRecord(it.Item())
			if err != nil {
				return err
			}
			if record.Kind != kind || !strings.Contains(string(record.Payload), substring) {
				continue
			}
			found = record
			ok = true
			return nil
		}
		return nil
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	return found, ok, nil
}

// FindFirstByKindContaining is the forward counterpart: the lowest-id
// match. For message content this is always the occurrence subscribers
// saw published, which makes it the stable referent for repeat events.
func (s *Store) FindFirstByKindContaining(_ context.Context, kind event.Kind, substring string) (Record, bool, error) {
	var found Record
	var ok bool
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(RecordPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			record, err := decodeRecord(it.Item())
			if err != nil {
				return err
			}
			if record.Kind != kind || !strings.Contains(string(record.Payload), substring) {
				continue
			}
			found = record
			ok = true
			return nil
		}
		return nil
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	return found, ok, nil
}

// CountByKindContaining counts stored records of kind whose payload
// contains substring.
func (s *Store) CountByKindContaining(_ context.Context, kind event.Kind, substring string) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(RecordPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			record, err := decodeRecord(it.Item())
			if err != nil {
				return err
			}
			if record.Kind == kind && strings.Contains(string(record.Payload), substring) {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	return count, nil
}

// EventsSince replays stored events in insertion order for backfill.
// When userID is non-empty only that user's events are returned. When
// lastUUID is given, everything up to and including it is skipped; an
// unknown lastUUID falls back to the full replay. Records whose kind is
// no longer recognized are skipped with a log line, never an error.
func (s *Store) EventsSince(_ context.Context, userID string, lastUUID *uuid.UUID) ([]event.Event, error) {
	var events []event.Event
	cut := -1
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(RecordPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			record, err := decodeRecord(it.Item())
			if err != nil {
				return err
			}
			evt, err := event.Decode(record.Payload)
			if err != nil {
				s.log.Warn("skipping undecodable record", "id", record.ID, "error", err)
				continue
			}
			head := evt.Head()
			isCursor := lastUUID != nil && head.UUID == *lastUUID
			if !isCursor && (userID == "" || head.UserID == userID) {
				// Stored payloads predate id assignment, restamp it.
				events = append(events, evt.WithEntityID(record.ID))
			}
			if isCursor {
				cut = len(events)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStorage, err)
	}
	if cut >= 0 {
		events = events[cut:]
	}
	return events, nil
}

func decodeRecord(item *badger.Item) (Record, error) {
	var record Record
	err := item.Value(func(v []byte) error {
		return json.Unmarshal(v, &record)
	})
	return record, err
}

func recordKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%019d", RecordPrefix, id))
}
