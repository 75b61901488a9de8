package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

var (
	resumeChan  = make(chan struct{}, 1)
	currentPort int
)

type InspectRow struct {
	Key       string
	Kind      string
	Timestamp string
	EventUUID string
	UserID    string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

func Inspect(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider, prefix string, fn func()) {
	StartDebugServer(db, port, endpoint, mapper, statsProvider)

	if fn != nil {
		fn()
	}

	Wait(prefix)
}

func StartDebugServer(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider) {
	currentPort = port
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = DefaultMapper
	}

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "event:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}

		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	mux.HandleFunc("/resume", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-resumeChan:
		default:
		}
		resumeChan <- struct{}{}
		fmt.Fprint(w, "RESUMED")
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

func Wait(prefix string) {
	url := fmt.Sprintf("http://localhost:%d/inspect?prefix=%s", currentPort, prefix)
	fmt.Printf("\n--- PAUSED ---\n\n%s\n\n--------------\n", url)
	<-resumeChan
}

// DefaultMapper decodes an event record stored under the "event:" prefix.
// Unknown payloads fall back to a raw byte-size row.
func DefaultMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Kind:      "RAW",
		Timestamp: "--:--:--",
		EventUUID: "--------",
		UserID:    "-",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	// Record.Payload is []byte, which arrives base64-encoded in the JSON;
	// declaring []byte here lets encoding/json decode it back.
	var record struct {
		ID      uint64 `json:"id"`
		Kind    string `json:"kind"`
		Payload []byte `json:"payload"`
	}
	if err := json.Unmarshal(val, &record); err != nil || record.Kind == "" {
		return row
	}
	row.Kind = record.Kind

	// The payload bytes are the wire envelope; the header fields sit
	// inside its inner payload object.
	var envelope struct {
		Payload struct {
			UUID      string    `json:"uuid"`
			UserID    string    `json:"userId"`
			CreatedAt time.Time `json:"createdAt"`
			Content   string    `json:"content"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(record.Payload, &envelope); err != nil {
		return row
	}
	head := envelope.Payload
	row.Timestamp = head.CreatedAt.Format("15:04:05")
	row.UserID = head.UserID
	if len(head.UUID) > 8 {
		row.EventUUID = head.UUID[:8]
	} else {
		row.EventUUID = head.UUID
	}
	if head.Content != "" {
		row.Detail = head.Content
	}
	return row
}
