package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/traveller-vtt/dv/internal/seed"
)

// NewSeedCommand creates the seed command
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <scene.yaml>",
		Short: "Import a scene into the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, err := seed.Load(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), consoleWriter(), "dv_seed", false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := scene.Apply(cmd.Context(), a.store); err != nil {
				return err
			}
			a.log.Info().
				Int("pages", len(scene.Pages)).
				Int("characters", len(scene.Characters)).
				Int("tokens", len(scene.Tokens)).
				Msg("scene imported")
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tokens\n", len(scene.Tokens))
			return nil
		},
	}
}
