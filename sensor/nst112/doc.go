// Package nst112 reads the NST112 digital temperature sensor over I2C.
//
// The NST112 is register compatible with the TMP102: the temperature
// register (pointer 0x00) holds a 12-bit two's complement value left
// aligned in 16 bits, with a resolution of 0.0625 °C. Readings are returned
// in Q4 fixed point (°C × 16).
package nst112
