package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/sitebundler/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	DB    string `name:"db" help:"History database path" default:".sitebundler/history.db"`
	Limit int    `help:"Maximum number of runs to show" default:"10"`
}

func (h *HistoryCmd) Run(_ *Global, _ *CLI) error {
	store, err := history.Open(h.DB)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	records, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No recorded builds")
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s  %-8s  framework=%-10s entries=%-5d %s  started %s\n",
			r.BuildID, r.Status, r.Framework, r.Entries, r.Duration.Round(time.Millisecond),
			r.StartedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
