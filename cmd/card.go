package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"postcard-sync/core/reconcile"
	"postcard-sync/feature/card"
	"postcard-sync/feature/card/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for card create/edit
	cardTitle     string
	cardTiming    int
	cardLatitude  float64
	cardLongitude float64
	clearLocation bool

	// Flags for card list
	publishedOnly bool
	listLimit     int
)

// cardCmd groups local card operations.
var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Manage local cards",
}

var cardCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a local draft card",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, d *deps) error {
			in := card.NewCard{Title: cardTitle, Timing: cardTiming}
			if loc, ok := locationFlag(cmd); ok {
				in.Location = loc
			}
			c, err := d.service.Create(ctx, in)
			if err != nil {
				return err
			}
			d.logger.Info("Card created", zap.String("uuid", c.UUID))
			return printCard(cmd, d, c)
		})
	},
}

var cardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local cards, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, d *deps) error {
			cards, err := d.service.List(ctx, card.ListOptions{PublishedOnly: publishedOnly, Limit: listLimit})
			if err != nil {
				return err
			}
			for i := range cards {
				c := &cards[i]
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tdraft=%t\tcollaborative=%t\n",
					c.UUID, d.service.DisplayTitle(c), c.Draft, card.IsCollaborative(c))
			}
			return nil
		})
	},
}

var cardShowCmd = &cobra.Command{
	Use:   "show <uuid>",
	Short: "Print a card with its photos",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, d *deps) error {
			c, err := d.service.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printCard(cmd, d, c)
		})
	},
}

var cardEditCmd = &cobra.Command{
	Use:   "edit <uuid>",
	Short: "Edit a card locally; the change is sent by the next push",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, d *deps) error {
			var e card.Edit
			if cmd.Flags().Changed("title") {
				e.Title = &cardTitle
			}
			if cmd.Flags().Changed("timing") {
				e.Timing = &cardTiming
			}
			if loc, ok := locationFlag(cmd); ok {
				e.Location = loc
			}
			e.ClearLocation = clearLocation

			c, err := d.service.Edit(ctx, args[0], e)
			if err != nil {
				return err
			}
			return printCard(cmd, d, c)
		})
	},
}

var cardCollaborativeCmd = &cobra.Command{
	Use:   "collaborative <uuid> <on|off>",
	Short: "Open or close a card to collaborators",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var on bool
		switch args[1] {
		case "on", "true":
			on = true
		case "off", "false":
		default:
			return fmt.Errorf("expected on or off, got %q", args[1])
		}
		return withService(func(ctx context.Context, d *deps) error {
			c, err := d.service.SetCollaborative(ctx, args[0], on)
			if err != nil {
				return err
			}
			d.logger.Info("Privacy updated", zap.String("uuid", c.UUID), zap.String("privacy", string(c.Privacy)))
			return nil
		})
	},
}

var cardShareCmd = &cobra.Command{
	Use:   "share <uuid>",
	Short: "Print the absolute link of a pulled card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(ctx context.Context, d *deps) error {
			link, err := d.service.Share(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", link.Title, link.URL)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{cardCreateCmd, cardEditCmd} {
		c.Flags().StringVar(&cardTitle, "title", "", "Card title")
		c.Flags().IntVar(&cardTiming, "timing", 0, "Frame delay in milliseconds")
		c.Flags().Float64Var(&cardLatitude, "lat", 0, "Latitude")
		c.Flags().Float64Var(&cardLongitude, "lon", 0, "Longitude")
	}
	cardEditCmd.Flags().BoolVar(&clearLocation, "clear-location", false, "Remove the location")

	cardListCmd.Flags().BoolVar(&publishedOnly, "published", false, "Hide drafts")
	cardListCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of cards")

	cardCmd.AddCommand(cardCreateCmd, cardListCmd, cardShowCmd, cardEditCmd, cardCollaborativeCmd, cardShareCmd)
	RootCmd.AddCommand(cardCmd)
}

func withService(fn func(context.Context, *deps) error) error {
	d, err := buildDeps(nil)
	if err != nil {
		return err
	}
	defer d.logger.Sync()
	return fn(context.Background(), d)
}

// locationFlag returns the --lat/--lon point when either flag was given.
func locationFlag(cmd *cobra.Command) (*reconcile.GeoPoint, bool) {
	if !cmd.Flags().Changed("lat") && !cmd.Flags().Changed("lon") {
		return nil, false
	}
	return &reconcile.GeoPoint{Latitude: cardLatitude, Longitude: cardLongitude}, true
}

func printCard(cmd *cobra.Command, d *deps, c *models.Card) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(card.CardView{
		Card:          c,
		DisplayTitle:  d.service.DisplayTitle(c),
		Collaborative: card.IsCollaborative(c),
	})
}
