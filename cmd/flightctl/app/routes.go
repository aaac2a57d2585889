package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// runDelete removes a stored route by name.
func runDelete(ctx context.Context, config *Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <name>")
	}

	store, err := createStore(config)
	if err != nil {
		return err
	}
	defer store.Close()

	if err = store.DeleteRoute(ctx, args[0]); err != nil {
		return fmt.Errorf("deleting route '%s': %w", args[0], err)
	}
	return nil
}

// runRoutes prints the stored route library.
func runRoutes(ctx context.Context, config *Config, w io.Writer) error {
	store, err := createStore(config)
	if err != nil {
		return err
	}
	defer store.Close()

	routes, err := store.Routes(ctx)
	if err != nil {
		return fmt.Errorf("listing routes: %w", err)
	}
	if len(routes) == 0 {
		_, err = fmt.Fprintln(w, "no stored routes")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFRAME\tPOINTS\tRECORDED")
	for _, info := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", info.Name, info.Frame, info.Points, humanize.Time(info.CreatedAt))
	}
	return tw.Flush()
}
