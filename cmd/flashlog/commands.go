package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ardnew/flashlog/pkg"
	"github.com/ardnew/flashlog/store"
	"github.com/ardnew/flashlog/volume"
)

func newIDCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Read the JEDEC id and check it against the supported part",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(g, func(s *session) error {
				id, err := s.flash.Check()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "JEDEC ID:     0x%06X\n", id)
				fmt.Fprintf(out, "Manufacturer: 0x%02X\n", uint8(id>>16))
				fmt.Fprintf(out, "Memory type:  0x%02X\n", uint8(id>>8))
				fmt.Fprintf(out, "Capacity:     %s\n", capacityString(uint8(id)))
				return err
			})
		},
	}
}

func newLogCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "log TEXT...",
		Short: "Append a line to the ring log (newest first, five lines kept)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(g, func(s *session) error {
				s.changed()
				return s.logger.LogLine(cmd.Context(), strings.Join(args, " ")+"\r\n")
			})
		},
	}
}

func newTempCmd(g *globalFlags) *cobra.Command {
	var file bool
	cmd := &cobra.Command{
		Use:   "temp Q4",
		Short: "Log a temperature given in Q4 fixed point (degrees C x 16)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseInt(args[0], 0, 16)
			if err != nil {
				return fmt.Errorf("invalid Q4 value %q: %w", args[0], pkg.ErrInvalidParameter)
			}
			q4 := int16(v)
			return withSession(g, func(s *session) error {
				s.changed()
				if file {
					return s.logger.WriteTemperatureFile(cmd.Context(), q4)
				}
				return s.logger.LogTemperature(cmd.Context(), q4)
			})
		},
	}
	cmd.Flags().BoolVar(&file, "file", false, "replace the file with the single reading instead of appending")
	return cmd
}

func newSampleCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Read the NST112 sensor (--i2c) and log the reading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(g, func(s *session) error {
				s.changed()
				return s.logger.Sample(cmd.Context())
			})
		},
	}
}

func newWriteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "write NAME [PATH|-]",
		Short: "Replace the stored file with NAME and the contents of PATH (stdin by default)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 2 && args[1] != "-" {
				data, err = os.ReadFile(args[1])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			if len(data) > store.DataSize {
				pkg.LogWarn(pkg.ComponentCLI, "file truncated",
					"size", len(data),
					"limit", store.DataSize)
			}
			return withSession(g, func(s *session) error {
				s.changed()
				return s.logger.WriteWholeFile(cmd.Context(), args[0], data)
			})
		},
	}
}

func newCatCmd(g *globalFlags) *cobra.Command {
	var info bool
	cmd := &cobra.Command{
		Use:   "cat",
		Short: "Print the stored file as the host would see it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(g, func(s *session) error {
				snap := s.store.Load()
				out := cmd.OutOrStdout()
				if info {
					fmt.Fprintf(out, "Name:   %s\n", snap.Name)
					fmt.Fprintf(out, "Size:   %d\n", snap.Size())
					fmt.Fprintf(out, "Status: %s\n", snap.Status)
					fmt.Fprintf(out, "JEDEC:  0x%06X\n", snap.ID)
					return nil
				}
				if snap.Status != store.StatusOK {
					pkg.LogWarn(pkg.ComponentCLI, "serving fallback file",
						"name", snap.Name,
						"status", snap.Status)
				}
				_, err := out.Write(snap.Data)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&info, "info", false, "print name, size and status instead of the contents")
	return cmd
}

func newSectorCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sector LBA",
		Short: "Hex dump one 512-byte sector of the volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lba, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return fmt.Errorf("invalid LBA %q: %w", args[0], pkg.ErrInvalidParameter)
			}
			return withSession(g, func(s *session) error {
				vol, err := attach(s)
				if err != nil {
					return err
				}
				defer s.logger.Detach()

				buf := make([]byte, volume.SectorSize)
				if _, err := vol.Read(lba, 1, buf); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "LBA %d (%s)\n", lba, volume.KindOf(uint32(lba)))
				_, err = io.WriteString(out, hex.Dump(buf))
				return err
			})
		},
	}
}

func newImageCmd(g *globalFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Write every sector of the volume to a mountable FAT12 image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(out) == "" {
				return fmt.Errorf("--out is required")
			}
			return withSession(g, func(s *session) error {
				vol, err := attach(s)
				if err != nil {
					return err
				}
				defer s.logger.Detach()

				n := vol.BlockCount()
				buf := make([]byte, n*uint64(vol.BlockSize()))
				if _, err := vol.Read(0, uint32(n), buf); err != nil {
					return err
				}
				if err := os.WriteFile(out, buf, 0o644); err != nil {
					return fmt.Errorf("write image: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sectors (%d bytes) to %s\n", n, len(buf), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output image path")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newEraseCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "erase",
		Short: "Erase the sector holding the file entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(g, func(s *session) error {
				s.changed()
				return s.store.Erase(cmd.Context())
			})
		},
	}
}

// attach prepares the volume from flash and starts serving it.
func attach(s *session) (*volume.Volume, error) {
	img, err := s.logger.Attach()
	if err != nil {
		return nil, err
	}
	if img.Status() != store.StatusOK {
		pkg.LogWarn(pkg.ComponentCLI, "serving fallback file",
			"name", img.Name(),
			"status", img.Status())
	}
	return s.logger.Volume(), nil
}

// capacityString decodes the JEDEC capacity byte (log2 of the size).
func capacityString(code uint8) string {
	if code < 10 || code > 31 {
		return fmt.Sprintf("unknown (0x%02X)", code)
	}
	size := uint32(1) << code
	if size >= 1<<20 {
		return fmt.Sprintf("%d MiB (0x%02X)", size>>20, code)
	}
	return fmt.Sprintf("%d KiB (0x%02X)", size>>10, code)
}
