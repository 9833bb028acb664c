package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "flashlog",
		Short: "SPI NOR flash log store and FAT12 volume tool",
		Long:  "Append to, replace and inspect the single file kept on an SPI NOR flash chip, and render the read-only FAT12 volume a host would see",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.configureLogging(cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	g.register(root.PersistentFlags())

	root.AddCommand(
		newIDCmd(&g),
		newLogCmd(&g),
		newTempCmd(&g),
		newSampleCmd(&g),
		newWriteCmd(&g),
		newCatCmd(&g),
		newSectorCmd(&g),
		newImageCmd(&g),
		newEraseCmd(&g),
		newViewCmd(&g),
	)
	return root
}

// withSession opens the chip, runs fn and closes the chip, saving the
// simulated image when fn changed flash.
func withSession(g *globalFlags, fn func(s *session) error) (err error) {
	s, err := g.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(s)
}
