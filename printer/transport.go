package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"go-restaurant-printing/models"
)

var (
	// ErrTransportUnavailable means the printer cannot be reached from this
	// host at all: unsupported transport or a device that does not exist.
	ErrTransportUnavailable = errors.New("printer transport unavailable")
	ErrConnect              = errors.New("printer connect failed")
	ErrSend                 = errors.New("printer send failed")
)

// Transport opens a connection to a physical printer.
type Transport interface {
	Connect(ctx context.Context, cfg models.PrinterConfig) (io.WriteCloser, error)
}

// SystemTransport reaches printers over TCP or through device files.
type SystemTransport struct {
	DialTimeout time.Duration
	Logger      *slog.Logger
}

func NewSystemTransport(dialTimeout time.Duration, logger *slog.Logger) *SystemTransport {
	return &SystemTransport{DialTimeout: dialTimeout, Logger: logger}
}

func (t *SystemTransport) Connect(ctx context.Context, cfg models.PrinterConfig) (io.WriteCloser, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("%w: %s printer has no address", ErrTransportUnavailable, cfg.Kind)
	}
	switch cfg.Kind {
	case models.PrinterNetwork:
		port := cfg.Port
		if port == 0 {
			port = models.DefaultPrinterPort
		}
		d := net.Dialer{Timeout: t.DialTimeout}
		conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(cfg.Address, strconv.Itoa(port)))
		if err != nil {
			return nil, err
		}
		return conn, nil
	case models.PrinterParallel:
		if t.Logger != nil {
			t.Logger.Warn("parallel_port_best_effort", "device", cfg.Address)
		}
		return t.openDevice(cfg.Address)
	case models.PrinterUSB:
		return t.openDevice(cfg.Address)
	default:
		return nil, fmt.Errorf("%w: unsupported transport %q", ErrTransportUnavailable, cfg.Kind)
	}
}

func (t *SystemTransport) openDevice(path string) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: device %s: %v", ErrTransportUnavailable, path, err)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Transmit connects, writes the payload and always releases the connection.
// A failed release is logged and never replaces the send outcome.
func Transmit(ctx context.Context, transport Transport, cfg models.PrinterConfig, payload []byte, logger *slog.Logger) error {
	dev, err := transport.Connect(ctx, cfg)
	if err != nil {
		if errors.Is(err, ErrTransportUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %s %s: %w", ErrConnect, cfg.Kind, cfg.Address, err)
	}
	defer func() {
		if cerr := dev.Close(); cerr != nil && logger != nil {
			logger.Warn("printer_release_failed", "kind", cfg.Kind, "address", cfg.Address, "error", cerr)
		}
	}()

	if _, err := dev.Write(payload); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrSend, cfg.Kind, cfg.Address, err)
	}
	return nil
}
