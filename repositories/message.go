//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	GetMessages(cursor *string) ([]DiskMessage, *string, error)
	GetAllMessages() ([]DiskMessage, error)
	UpdateOccurCount(eventUUID uuid.UUID, count int) error
}

// MessageRepository persists the message snapshot read model in
// BadgerDB. It is what cold-starting projections seed themselves from
// before subscribing to the live event feed.
type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// DiskMessage is the stored form of a projection row.
type DiskMessage struct {
	EventUUID  uuid.UUID `json:"eventUuid"`
	CmdUUID    uuid.UUID `json:"cmdUuid"`
	Sender     string    `json:"sender"`
	Content    string    `json:"content"`
	EntityID   *uint64   `json:"entityId,omitempty"`
	At         time.Time `json:"at"`
	OccurCount int       `json:"occurCount"`
}

// StoreMessage persists a message row under two keys:
//  1. "msg:{timestamp_padded}:{uuid}": the 19-digit zero padding makes
//     lexicographic key order chronological, and the uuid disambiguates
//     two rows landing on the same nanosecond.
//  2. "idx:msg:{uuid}": a secondary index pointing at the primary key,
//     so repeat events can update a row's counter by event uuid alone.
func (m MessageRepository) StoreMessage(message DiskMessage) error {
	key := primaryKey(message)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, bytes); err != nil {
			return err
		}
		return txn.Set(indexKey(message.EventUUID), key)
	})
}

// UpdateOccurCount rewrites the occurrence counter of the row created by
// the posting identified by eventUUID. The write is last-write-wins so
// redelivered repeat events settle on the same value. A missing row is
// a no-op: the repeat may reference a posting this snapshot never saw.
func (m MessageRepository) UpdateOccurCount(eventUUID uuid.UUID, count int) error {
	return m.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey(eventUUID))
		if err == badger.ErrKeyNotFound {
			m.log.Debug("repeat for unknown snapshot row", "uuid", eventUUID)
			return nil
		}
		if err != nil {
			return err
		}
		var key []byte
		if err := item.Value(func(v []byte) error {
			key = append([]byte(nil), v...)
			return nil
		}); err != nil {
			return err
		}

		row, err := txn.Get(key)
		if err != nil {
			return err
		}
		var message DiskMessage
		if err := row.Value(func(v []byte) error {
			return json.Unmarshal(v, &message)
		}); err != nil {
			return err
		}

		message.OccurCount = count
		bytes, err := json.Marshal(message)
		if err != nil {
			return err
		}
		return txn.Set(key, bytes)
	})
}

// GetMessages retrieves message rows newest first using a reverse prefix
// scan; the padded timestamp in the key keeps them naturally sorted. It
// stops once the configured limit is reached and returns a cursor for
// the next page.
func (m MessageRepository) GetMessages(cursor *string) ([]DiskMessage, *string, error) {
	var byteMessages [][]byte
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past every possible timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(byteMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(messagePrefix):])
			if err := item.Value(func(value []byte) error {
				byteMessages = append(byteMessages, value)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages, err := unmarshalMessages(byteMessages)
	if err != nil {
		return nil, nil, err
	}
	if lastKey == "" {
		return messages, nil, nil
	}
	return messages, &lastKey, nil
}

// GetAllMessages returns every row oldest first, the shape a projection
// expects for its initial seed.
func (m MessageRepository) GetAllMessages() ([]DiskMessage, error) {
	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(value []byte) error {
				byteMessages = append(byteMessages, value)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return unmarshalMessages(byteMessages)
}

const messagePrefix = "msg:"

func unmarshalMessages(byteMessages [][]byte) ([]DiskMessage, error) {
	var messages []DiskMessage
	for _, b := range byteMessages {
		var message DiskMessage
		if err := json.Unmarshal(b, &message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func primaryKey(message DiskMessage) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", messagePrefix, message.At.UnixNano(), message.EventUUID))
}

func indexKey(eventUUID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("idx:msg:%s", eventUUID))
}
