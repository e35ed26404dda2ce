package transport

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

// DefaultBaudRate is the baud rate of the device UART.
const DefaultBaudRate = 115200

// ReadTimeout bounds each Read on the serial port so readers can notice
// cancellation.
const ReadTimeout = 50 * time.Millisecond

// OpenSerial opens a serial port with 8 data bits, no parity, 1 stop bit.
func OpenSerial(name string, baud int) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %v", name, err)
	}
	if err = port.SetReadTimeout(ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("serial %s read timeout: %v", name, err)
	}
	glog.Infof("serial %s opened at %d 8N1", name, baud)
	return port, nil
}

// ListSerialPorts lists the serial ports on the system.
func ListSerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
