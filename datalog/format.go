package datalog

import "fmt"

// FormatTemperature renders a Q4 temperature (°C × 16) with four decimal
// places, e.g. 401 -> "25.0625", -8 -> "-0.5000".
func FormatTemperature(q4 int16) string {
	v := int(q4)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%04d", sign, v>>4, (v&0x0F)*625)
}

// FormatTemperatureLine renders a ring log line for a reading taken at
// hh:mm:ss.
func FormatTemperatureLine(q4 int16, hh, mm, ss uint8) string {
	return fmt.Sprintf("%02d:%02d:%02d  Temperature: %s C\r\n", hh, mm, ss, FormatTemperature(q4))
}

// FormatTemperatureFile renders the single-reading file content.
func FormatTemperatureFile(q4 int16) string {
	return fmt.Sprintf("Temperature: %s C\r\n", FormatTemperature(q4))
}

// FormatSensorError renders a ring log line for a failed sensor read.
func FormatSensorError(rc int, hh, mm, ss uint8) string {
	return fmt.Sprintf("%02d:%02d:%02d  NST112 error, rc=%d\r\n", hh, mm, ss, rc)
}
