// Package volume synthesizes a read-only FAT12 volume holding one file.
//
// Nothing is stored: each 512-byte sector is rendered on request from an
// immutable [Image], itself built from a [store.Snapshot] taken once per
// [Volume.Prepare]. The layout is fixed:
//
//	LBA 0     boot sector (BPB, 0x55AA signature)
//	LBA 1, 2  FAT copies, cluster 2 marked end of chain
//	LBA 3     root directory: volume label, then the file entry
//	LBA 4     cluster 2, the file content zero padded
//	LBA 5..   zeros
//
// [Volume] provides the block storage method set a USB mass-storage class
// driver expects. Host writes are always refused with
// [pkg.ErrWriteProtected] and reads never touch flash.
package volume
