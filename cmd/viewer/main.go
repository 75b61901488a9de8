package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"studychat/eventstore"
	"studychat/internal"
	"studychat/projection"
)

// The viewer opens the database read-only, rebuilds a timeline by
// replaying the event records, prints it, then serves the store
// inspector until interrupted.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if another process holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Replay the full stream into a fresh timeline
	store, err := eventstore.New(db, logger)
	if err != nil {
		log.Fatalf("Failed to open event store: %v", err)
	}
	events, err := store.EventsSince(context.Background(), "", nil)
	if err != nil {
		log.Fatalf("Failed to replay events: %v", err)
	}

	timeline := projection.NewTimeline("", logger)
	for _, evt := range events {
		if err := timeline.Consume(context.Background(), evt); err != nil {
			log.Fatalf("Failed to apply event %s: %v", evt.Head().UUID, err)
		}
	}

	renderTimeline(timeline)

	// 4. Debug Server Only
	// Empty stats provider since the orchestrator isn't running here
	emptyStats := func() map[string]any {
		return map[string]any{
			"Status":     "Viewer Mode (Read-Only)",
			"ReplayedAt": time.Now().Format(time.RFC822),
			"Events":     len(events),
		}
	}

	fmt.Printf("Viewer started at http://localhost:%d/inspect\n", config.DebugPort)

	internal.Inspect(db, config.DebugPort, "/inspect", nil, emptyStats, eventstore.RecordPrefix, nil)
}

func renderTimeline(timeline *projection.Timeline) {
	header := color.New(color.BgBlack, color.FgGreen).Render("Replayed timeline")
	fmt.Println(header)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Event", "User", "Posted At", "Occurrences", "Content"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, message := range timeline.Messages() {
		displayID := message.EventUUID.String()
		if len(displayID) > 8 {
			displayID = displayID[:8]
		}
		occurrences := fmt.Sprintf("%d", message.OccurCount)
		if message.OccurCount > 1 {
			occurrences = color.New(color.FgYellow).Render(occurrences)
		}
		table.Append([]string{
			displayID,
			message.SenderUserID,
			message.CreatedAt.Format("15:04:05"),
			occurrences,
			message.Content,
		})
	}

	table.Render()
}
