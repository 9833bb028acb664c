//go:build linux && (amd64 || 386 || arm || arm64 || riscv64)

package main

import (
	"io"

	"github.com/ardnew/flashlog/datalog"
	"github.com/ardnew/flashlog/flash/hal"
	"github.com/ardnew/flashlog/flash/hal/spidev"
	"github.com/ardnew/flashlog/sensor/i2cdev"
	"github.com/ardnew/flashlog/sensor/nst112"
)

func openSPI(path string, speed uint32) (hal.Bus, hal.Pin, io.Closer, error) {
	dev, err := spidev.Open(path, spidev.WithSpeed(speed))
	if err != nil {
		return nil, nil, nil, err
	}
	return dev, dev, dev, nil
}

func openSensor(path string) (datalog.Sensor, io.Closer, error) {
	bus, err := i2cdev.Open(path)
	if err != nil {
		return nil, nil, err
	}
	dev := nst112.New(bus)
	return &dev, bus, nil
}
