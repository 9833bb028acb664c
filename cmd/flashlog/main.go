// Command flashlog reads, writes and inspects the single-file log kept on
// an SPI NOR flash chip, and the read-only FAT12 volume served from it.
//
// Without --spidev the chip is simulated in memory, backed by the file
// named with --image. The file is loaded before the command runs and
// written back after commands that change flash.
//
//	flashlog --image chip.bin log "door opened"
//	flashlog --image chip.bin cat
//	flashlog --image chip.bin image --out volume.img
//	flashlog --spidev /dev/spidev0.0 --i2c /dev/i2c-1 sample
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	must(newRootCmd().ExecuteContext(ctx))
}

func must(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}
