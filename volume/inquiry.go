package volume

import "encoding/binary"

// Identification reported to the host.
const (
	InquiryVendor   = "FM33"
	InquiryProduct  = "SPI Flash MSC"
	InquiryRevision = "1.00"
)

// INQUIRY response constants.
const (
	InquiryStandardSize = 36   // Standard INQUIRY data length
	inquiryVersionSPC2  = 0x02 // SPC-2 version
	inquiryFormatSPC    = 0x02 // SPC-compliant response format
	inquiryRMB          = 0x80 // Removable media bit
	deviceTypeDisk      = 0x00 // Direct access block device
)

// InquiryResponse represents standard INQUIRY data.
type InquiryResponse struct {
	DeviceType       uint8    // Peripheral device type
	RMB              uint8    // Removable media bit (bit 7)
	Version          uint8    // SCSI version
	ResponseFormat   uint8    // Response data format
	AdditionalLength uint8    // Additional length (n-4)
	Flags            [3]uint8 // Various flags
	VendorID         [8]byte  // Vendor identification (ASCII)
	ProductID        [16]byte // Product identification (ASCII)
	ProductRev       [4]byte  // Product revision (ASCII)
}

// MarshalTo writes the INQUIRY response to buf.
// Returns the number of bytes written, or 0 if buf is too small.
func (r *InquiryResponse) MarshalTo(buf []byte) int {
	if len(buf) < InquiryStandardSize {
		return 0
	}

	buf[0] = r.DeviceType
	buf[1] = r.RMB
	buf[2] = r.Version
	buf[3] = r.ResponseFormat
	buf[4] = r.AdditionalLength
	copy(buf[5:8], r.Flags[:])
	copy(buf[8:16], r.VendorID[:])
	copy(buf[16:32], r.ProductID[:])
	copy(buf[32:36], r.ProductRev[:])

	return InquiryStandardSize
}

func newInquiryResponse(removable bool) InquiryResponse {
	resp := InquiryResponse{
		DeviceType:       deviceTypeDisk,
		Version:          inquiryVersionSPC2,
		ResponseFormat:   inquiryFormatSPC,
		AdditionalLength: InquiryStandardSize - 5,
	}
	if removable {
		resp.RMB = inquiryRMB
	}
	copy(resp.VendorID[:], padString(InquiryVendor, 8))
	copy(resp.ProductID[:], padString(InquiryProduct, 16))
	copy(resp.ProductRev[:], padString(InquiryRevision, 4))
	return resp
}

// ReadCapacity10Response represents READ CAPACITY (10) response.
type ReadCapacity10Response struct {
	LastLBA     uint32 // Last logical block address
	BlockLength uint32 // Block length in bytes
}

// MarshalTo writes the response to buf.
// Returns the number of bytes written, or 0 if buf is too small.
func (r *ReadCapacity10Response) MarshalTo(buf []byte) int {
	if len(buf) < 8 {
		return 0
	}
	binary.BigEndian.PutUint32(buf[0:4], r.LastLBA)
	binary.BigEndian.PutUint32(buf[4:8], r.BlockLength)
	return 8
}

// padString pads s with spaces to length n, truncating if longer.
func padString(s string, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	copy(b, s)
	return b
}
