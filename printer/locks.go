package printer

import (
	"fmt"
	"sync"

	"go-restaurant-printing/models"
)

// DeviceLocks serializes jobs that target the same physical printer so two
// tickets never interleave on paper. Different printers run in parallel.
type DeviceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewDeviceLocks() *DeviceLocks {
	return &DeviceLocks{locks: make(map[string]*sync.Mutex)}
}

func deviceKey(cfg models.PrinterConfig) string {
	if cfg.Kind == models.PrinterNetwork {
		port := cfg.Port
		if port == 0 {
			port = models.DefaultPrinterPort
		}
		return fmt.Sprintf("%s|%s:%d", cfg.Kind, cfg.Address, port)
	}
	// usb and parallel share the device namespace
	return "device|" + cfg.Address
}

// Lock blocks until the device is free and returns the matching unlock.
func (l *DeviceLocks) Lock(cfg models.PrinterConfig) (unlock func()) {
	key := deviceKey(cfg)

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
