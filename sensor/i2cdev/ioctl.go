package i2cdev

// i2c-dev request numbers and message flags.
const (
	i2cRdwr = 0x0707
	i2cMRd  = 0x0001
)

// i2cMsg matches the kernel's struct i2c_msg.
type i2cMsg struct {
	addr   uint16
	flags  uint16
	length uint16
	buf    uintptr
}

// rdwrData matches the kernel's struct i2c_rdwr_ioctl_data.
type rdwrData struct {
	msgs  uintptr
	nmsgs uint32
}
