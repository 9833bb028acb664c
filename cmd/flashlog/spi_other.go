//go:build !(linux && (amd64 || 386 || arm || arm64 || riscv64))

package main

import (
	"fmt"
	"io"

	"github.com/ardnew/flashlog/datalog"
	"github.com/ardnew/flashlog/flash/hal"
	"github.com/ardnew/flashlog/pkg"
)

func openSPI(path string, _ uint32) (hal.Bus, hal.Pin, io.Closer, error) {
	return nil, nil, nil, fmt.Errorf("spidev %s: %w", path, pkg.ErrNotSupported)
}

func openSensor(path string) (datalog.Sensor, io.Closer, error) {
	return nil, nil, fmt.Errorf("i2c-dev %s: %w", path, pkg.ErrNotSupported)
}
