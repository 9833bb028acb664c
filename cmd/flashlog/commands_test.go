package main

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/flashlog/flash/hal/sim"
	"github.com/ardnew/flashlog/pkg"
	"github.com/ardnew/flashlog/volume"
)

// run executes the root command against a fresh command tree.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := run(t, stdin, args...)
	if err != nil {
		t.Fatalf("flashlog %s: error = %v", strings.Join(args, " "), err)
	}
	return out
}

func tempImage(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "chip.bin")
}

func TestIDCommand(t *testing.T) {
	out := mustRun(t, "", "--image", tempImage(t), "id")
	for _, want := range []string{"JEDEC ID:     0x856015", "Manufacturer: 0x85", "Capacity:     2 MiB (0x15)"} {
		if !strings.Contains(out, want) {
			t.Errorf("id output missing %q:\n%s", want, out)
		}
	}
}

func TestIDCommandFailures(t *testing.T) {
	tests := []struct {
		jedec string
		want  error
	}{
		{"0xEF4015", pkg.ErrWrongPart},
		{"0", pkg.ErrNoFlash},
		{"0xFFFFFF", pkg.ErrNoFlash},
	}
	for _, tt := range tests {
		_, err := run(t, "", "--jedec", tt.jedec, "id")
		if !errors.Is(err, tt.want) {
			t.Errorf("id --jedec %s error = %v, want %v", tt.jedec, err, tt.want)
		}
	}
}

func TestLogAndCat(t *testing.T) {
	img := tempImage(t)
	mustRun(t, "", "--image", img, "log", "one")
	mustRun(t, "", "--image", img, "log", "two", "words")

	out := mustRun(t, "", "--image", img, "cat")
	if want := "two words\r\none\r\n"; out != want {
		t.Errorf("cat = %q, want %q", out, want)
	}
}

func TestImageSavedOnlyWhenChanged(t *testing.T) {
	img := tempImage(t)

	mustRun(t, "", "--image", img, "cat")
	if _, err := os.Stat(img); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("image written by a read-only command: %v", err)
	}

	mustRun(t, "", "--image", img, "log", "x")
	fi, err := os.Stat(img)
	if err != nil {
		t.Fatalf("image not saved: %v", err)
	}
	if fi.Size() != sim.DefaultSize {
		t.Errorf("image size = %d, want %d", fi.Size(), sim.DefaultSize)
	}
}

func TestImageSaveFailure(t *testing.T) {
	tests := []struct {
		name    string
		image   string
		wantErr bool
	}{
		{"saved", tempImage(t), false},
		{"missing directory", filepath.Join(t.TempDir(), "absent", "chip.bin"), true},
	}
	for _, tt := range tests {
		cmd := newRootCmd()
		var logs bytes.Buffer
		cmd.SetOut(io.Discard)
		cmd.SetErr(&logs)
		cmd.SetArgs([]string{"--image", tt.image, "--log-level", "debug", "log", "x"})

		err := cmd.Execute()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if saved := strings.Contains(logs.String(), "image saved"); saved == tt.wantErr {
			t.Errorf("%s: logged image saved = %v, want %v", tt.name, saved, !tt.wantErr)
		}
	}
	pkg.SetLogFormat(pkg.LogFormatText, io.Discard)
}

func TestWriteCommand(t *testing.T) {
	img := tempImage(t)
	src := filepath.Join(t.TempDir(), "in.txt")
	if err := os.WriteFile(src, []byte("from file"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"stdin", "hello", []string{"write", "notes.txt"}, "hello"},
		{"dash", "dash", []string{"write", "notes.txt", "-"}, "dash"},
		{"path", "", []string{"write", "notes.txt", src}, "from file"},
	}
	for _, tt := range tests {
		mustRun(t, tt.stdin, append([]string{"--image", img}, tt.args...)...)
		if got := mustRun(t, "", "--image", img, "cat"); got != tt.want {
			t.Errorf("%s: cat = %q, want %q", tt.name, got, tt.want)
		}
	}

	info := mustRun(t, "", "--image", img, "cat", "--info")
	for _, want := range []string{"Name:   notes.txt", "Size:   9", "Status: ok"} {
		if !strings.Contains(info, want) {
			t.Errorf("cat --info missing %q:\n%s", want, info)
		}
	}
}

func TestWriteMissingInput(t *testing.T) {
	_, err := run(t, "", "--image", tempImage(t), "write", "a.txt", filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("write of missing input succeeded")
	}
}

func TestTempCommand(t *testing.T) {
	img := tempImage(t)

	mustRun(t, "", "--image", img, "temp", "344", "--file")
	if got := mustRun(t, "", "--image", img, "cat"); got != "Temperature: 21.5000 C\r\n" {
		t.Errorf("cat after temp --file = %q", got)
	}

	mustRun(t, "", "--image", img, "temp", "--", "-8")
	if got := mustRun(t, "", "--image", img, "cat"); !strings.Contains(got, "Temperature: -0.5000 C\r\n") {
		t.Errorf("cat after temp = %q", got)
	}

	if _, err := run(t, "", "--image", img, "temp", "warm"); !errors.Is(err, pkg.ErrInvalidParameter) {
		t.Errorf("temp warm error = %v, want %v", err, pkg.ErrInvalidParameter)
	}
	if _, err := run(t, "", "--image", img, "temp", "40000"); !errors.Is(err, pkg.ErrInvalidParameter) {
		t.Errorf("temp 40000 error = %v, want %v", err, pkg.ErrInvalidParameter)
	}
}

func TestSampleWithoutSensor(t *testing.T) {
	if _, err := run(t, "", "sample"); !errors.Is(err, pkg.ErrNotSupported) {
		t.Errorf("sample error = %v, want %v", err, pkg.ErrNotSupported)
	}
}

func TestSectorCommand(t *testing.T) {
	img := tempImage(t)
	mustRun(t, "hi", "--image", img, "write", "a.txt")

	tests := []struct {
		lba  string
		want []string
	}{
		{"0", []string{"LBA 0 (boot)", "eb 3c 90", "55 aa"}},
		{"1", []string{"LBA 1 (fat)", "f8 ff ff ff 0f"}},
		{"3", []string{"LBA 3 (root)", "|A       TXT"}},
		{"4", []string{"LBA 4 (data)", "68 69 00"}},
		{"0x3f", []string{"LBA 63 (zero)"}},
	}
	for _, tt := range tests {
		out := mustRun(t, "", "--image", img, "sector", tt.lba)
		for _, want := range tt.want {
			if !strings.Contains(out, want) {
				t.Errorf("sector %s missing %q:\n%s", tt.lba, want, out)
			}
		}
	}
}

func TestSectorCommandErrors(t *testing.T) {
	img := tempImage(t)
	if _, err := run(t, "", "--image", img, "sector", "64"); !errors.Is(err, pkg.ErrOutOfRange) {
		t.Errorf("sector 64 error = %v, want %v", err, pkg.ErrOutOfRange)
	}
	if _, err := run(t, "", "--image", img, "--sectors", "16", "sector", "16"); !errors.Is(err, pkg.ErrOutOfRange) {
		t.Errorf("sector 16 of 16 error = %v, want %v", err, pkg.ErrOutOfRange)
	}
	if _, err := run(t, "", "--image", img, "sector", "boot"); !errors.Is(err, pkg.ErrInvalidParameter) {
		t.Errorf("sector boot error = %v, want %v", err, pkg.ErrInvalidParameter)
	}
}

func TestImageCommand(t *testing.T) {
	img := tempImage(t)
	out := filepath.Join(t.TempDir(), "vol.img")
	mustRun(t, "logged\r\n", "--image", img, "write", "log.txt")

	tests := []struct {
		args    []string
		sectors int
	}{
		{nil, volume.DefaultSectorCount},
		{[]string{"--sectors", "16"}, 16},
	}
	for _, tt := range tests {
		args := append([]string{"--image", img}, tt.args...)
		mustRun(t, "", append(args, "image", "--out", out)...)

		b, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("read image: %v", err)
		}
		if len(b) != tt.sectors*volume.SectorSize {
			t.Errorf("image size = %d, want %d", len(b), tt.sectors*volume.SectorSize)
			continue
		}
		if b[510] != 0x55 || b[511] != 0xAA {
			t.Errorf("boot signature = %02X %02X", b[510], b[511])
		}
		if got := string(b[4*volume.SectorSize : 4*volume.SectorSize+8]); got != "logged\r\n" {
			t.Errorf("data sector = %q", got)
		}
	}

	if _, err := run(t, "", "--image", img, "image"); err == nil {
		t.Error("image without --out succeeded")
	}
}

func TestEraseCommand(t *testing.T) {
	img := tempImage(t)
	mustRun(t, "", "--image", img, "log", "x")
	mustRun(t, "", "--image", img, "erase")

	info := mustRun(t, "", "--image", img, "cat", "--info")
	if !strings.Contains(info, "Status: bad entry") {
		t.Errorf("cat --info after erase:\n%s", info)
	}
}

func TestFallbackCat(t *testing.T) {
	out := mustRun(t, "", "--jedec", "0", "cat")
	if !strings.Contains(out, "0x000000") {
		t.Errorf("cat on missing flash = %q", out)
	}
	info := mustRun(t, "", "--jedec", "0", "cat", "--info")
	if !strings.Contains(info, "Name:   NOFLASH.TXT") {
		t.Errorf("cat --info on missing flash:\n%s", info)
	}
}

func TestGlobalFlagErrors(t *testing.T) {
	if _, err := run(t, "", "--log-level", "loud", "cat"); err == nil {
		t.Error("unknown --log-level accepted")
	}
	if _, err := run(t, "", "--spidev", filepath.Join(t.TempDir(), "spidev9.9"), "id"); err == nil {
		t.Error("missing spidev device accepted")
	}
	if _, err := run(t, "", "--i2c", filepath.Join(t.TempDir(), "i2c-9"), "sample"); err == nil {
		t.Error("missing i2c adapter accepted")
	}
}

func TestCapacityString(t *testing.T) {
	tests := []struct {
		code uint8
		want string
	}{
		{0x15, "2 MiB (0x15)"},
		{0x18, "16 MiB (0x18)"},
		{0x10, "64 KiB (0x10)"},
		{0x00, "unknown (0x00)"},
		{0xFF, "unknown (0xFF)"},
	}
	for _, tt := range tests {
		if got := capacityString(tt.code); got != tt.want {
			t.Errorf("capacityString(0x%02X) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
