package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/ardnew/flashlog/datalog"
	"github.com/ardnew/flashlog/store"
	"github.com/ardnew/flashlog/volume"
)

// mapColumns is the number of sectors drawn per sector map row.
const mapColumns = 32

func newViewCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Browse the volume layout and the ring log in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withSession(g, func(s *session) error {
				scr, err := tcell.NewScreen()
				if err != nil {
					return err
				}
				if err := scr.Init(); err != nil {
					return err
				}
				defer scr.Fini()
				scr.DisableMouse()

				v := newViewer(scr, s.logger)
				defer s.logger.Detach()
				return v.run()
			})
		},
	}
}

// viewer draws one attached volume image on a terminal screen.
type viewer struct {
	s      tcell.Screen
	logger *datalog.Logger
	img    *volume.Image
	err    error
}

func newViewer(s tcell.Screen, lg *datalog.Logger) *viewer {
	v := &viewer{s: s, logger: lg}
	v.reload()
	return v
}

// reload detaches and re-attaches, so the next snapshot is read from flash.
func (v *viewer) reload() {
	v.logger.Detach()
	v.img, v.err = v.logger.Attach()
}

func putStr(s tcell.Screen, x, y int, str string) {
	w, _ := s.Size()
	for i, r := range []rune(str) {
		pos := x + i
		if pos >= w {
			break
		}
		s.SetContent(pos, y, r, nil, tcell.StyleDefault)
	}
}

// LayoutAndDraw redraws the whole screen.
func (v *viewer) LayoutAndDraw() {
	v.s.Clear()
	w, h := v.s.Size()
	y := 0

	title := " flashlog "
	putStr(v.s, 0, y, strings.Repeat("═", w))
	putStr(v.s, (w-len(title))/2, y, title)
	y++

	section := func(name string) {
		putStr(v.s, 0, y, strings.Repeat("─", w))
		putStr(v.s, 2, y, " "+name+" ")
		y++
	}
	line := func(str string) {
		if y < h {
			putStr(v.s, 0, y, str)
			y++
		}
	}

	if v.err != nil {
		line(fmt.Sprintf("Attach failed: %v", v.err))
	} else {
		for _, l := range summaryLines(v.img) {
			line(l)
		}
		line("Legend: B boot  F FAT  R root  D data  . zero")

		section("Sectors")
		for _, l := range sectorMap(v.img.SectorCount()) {
			line(l)
		}

		section("Log")
		for i, l := range store.SplitLines(v.img.Content()) {
			line(fmt.Sprintf("%d  %s", i+1, strings.TrimRight(string(l), "\r\n")))
		}
	}

	if y < h {
		section("Keys")
		line("r reload from flash   q quit")
	}
	v.s.Show()
}

// handle processes one event and reports whether the viewer should exit.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyCtrlC, ev.Key() == tcell.KeyEscape:
			return true
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			return true
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'r' || ev.Rune() == 'R'):
			v.reload()
			v.LayoutAndDraw()
		}
	case *tcell.EventResize:
		v.s.Sync()
		v.LayoutAndDraw()
	}
	return false
}

func (v *viewer) run() error {
	v.LayoutAndDraw()
	for {
		ev := v.s.PollEvent()
		if ev == nil {
			return nil
		}
		if v.handle(ev) {
			return nil
		}
	}
}

func summaryLines(img *volume.Image) []string {
	return []string{
		fmt.Sprintf("File:   %s (%s)", img.Name(), volume.FormatShortName(img.ShortName())),
		fmt.Sprintf("Size:   %d bytes", img.FileSize()),
		fmt.Sprintf("Status: %s", img.Status()),
		fmt.Sprintf("Volume: %d sectors x %d bytes", img.SectorCount(), volume.SectorSize),
	}
}

// sectorMap renders one glyph per sector.
func sectorMap(count uint32) []string {
	var (
		lines []string
		b     strings.Builder
	)
	for lba := uint32(0); lba < count; lba++ {
		b.WriteRune(sectorGlyph(volume.KindOf(lba)))
		if (lba+1)%mapColumns == 0 || lba+1 == count {
			lines = append(lines, fmt.Sprintf("%4d  %s", lba/mapColumns*mapColumns, b.String()))
			b.Reset()
		}
	}
	return lines
}

func sectorGlyph(k volume.SectorKind) rune {
	switch k {
	case volume.SectorBoot:
		return 'B'
	case volume.SectorFAT:
		return 'F'
	case volume.SectorRootDir:
		return 'R'
	case volume.SectorData:
		return 'D'
	default:
		return '.'
	}
}
