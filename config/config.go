package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"go-restaurant-printing/models"
)

const (
	DefaultPort             = "8000"
	DefaultPrintServicePort = "3001"
	DefaultPrintServiceURL  = "http://localhost:3001"
	DefaultTimezone         = "America/Santiago"
	DefaultParallelPath     = "LPT1"

	DefaultDialTimeout  = 5 * time.Second
	DefaultRelayTimeout = 10 * time.Second
)

var (
	ErrInvalidPrinterKind = errors.New("invalid printer type")
	ErrInvalidPort        = errors.New("invalid port")
	ErrInvalidStore       = errors.New("invalid order store")
)

// Relay holds the print service endpoints. The private pair is used by the
// server itself; the public pair is what a browser inside the store is told
// to call.
type Relay struct {
	URL         string
	Token       string
	PublicURL   string
	PublicToken string
	TokenHash   string
}

// Endpoint returns the URL and token the app server posts print jobs to.
func (r Relay) Endpoint() (string, string) {
	return pick(r.URL, r.PublicURL, DefaultPrintServiceURL), pick(r.Token, r.PublicToken, "")
}

// Handoff returns the URL and token handed to browsers, preferring the
// public variant.
func (r Relay) Handoff() (string, string) {
	url := pick(r.PublicURL, r.URL, DefaultPrintServiceURL)
	return strings.TrimSuffix(url, "/"), pick(r.PublicToken, r.Token, "")
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type Store struct {
	Driver        string
	MongoURL      string
	MongoDatabase string
	PostgresURL   string
}

type Events struct {
	AMQPURL  string
	Exchange string
	Queue    string
}

func (e Events) Enabled() bool {
	return e.AMQPURL != ""
}

type Config struct {
	Port             string
	PrintServicePort string
	LogLevel         string
	SecretKey        string

	Printers models.PrinterRoles
	Relay    Relay
	Store    Store
	Events   Events

	CORSOrigins []string
	Location    *time.Location
	Business    models.Business

	DialTimeout  time.Duration
	RelayTimeout time.Duration

	// Warnings collects incomplete but non-fatal settings, such as a
	// network printer without an IP.
	Warnings []string
}

// Load reads .env when present and resolves the configuration once.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:             get("PORT", DefaultPort),
		PrintServicePort: get("PRINT_SERVICE_PORT", DefaultPrintServicePort),
		LogLevel:         get("LOG_LEVEL", "info"),
		SecretKey:        getenv("SECRET_KEY"),
		Relay: Relay{
			URL:         get("PRINT_SERVICE_URL", ""),
			Token:       get("PRINT_SERVICE_TOKEN", ""),
			PublicURL:   get("PUBLIC_PRINT_SERVICE_URL", ""),
			PublicToken: get("PUBLIC_PRINT_SERVICE_TOKEN", ""),
			TokenHash:   get("PRINT_SERVICE_TOKEN_HASH", ""),
		},
		Store: Store{
			Driver:        strings.ToLower(get("ORDER_STORE", "mongo")),
			MongoURL:      get("MONGODB_URL", ""),
			MongoDatabase: get("MONGODB_DATABASE", "restaurant"),
			PostgresURL:   get("DATABASE_URL", ""),
		},
		Events: Events{
			AMQPURL:  get("AMQP_URL", ""),
			Exchange: get("ORDER_EVENTS_EXCHANGE", "orders_topic"),
			Queue:    get("ORDER_EVENTS_QUEUE", "print_jobs"),
		},
		CORSOrigins: splitList(getenv("CORS_ALLOW_ORIGINS")),
		Business: models.Business{
			Name:     get("BUSINESS_NAME", "GOURMET ARABE SPA"),
			RUT:      get("BUSINESS_RUT", "77669643-9"),
			Address:  get("BUSINESS_ADDRESS", "Providencia 1388 Local 49"),
			Phone:    get("BUSINESS_PHONE", "939459286"),
			Farewell: []string{"¡Gracias por su visita!", "Carne Halal Certificada"},
		},
		DialTimeout:  DefaultDialTimeout,
		RelayTimeout: DefaultRelayTimeout,
	}

	var errs []error

	loc, err := time.LoadLocation(get("TICKET_TIMEZONE", DefaultTimezone))
	if err != nil {
		errs = append(errs, fmt.Errorf("TICKET_TIMEZONE: %w", err))
		loc = time.Local
	}
	cfg.Location = loc

	for _, role := range []struct {
		name string
		dst  **models.PrinterConfig
	}{
		{"KITCHEN", &cfg.Printers.Kitchen},
		{"CASHIER", &cfg.Printers.Cashier},
	} {
		p, warning, err := printerFromEnv(getenv, role.name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if warning != "" {
			cfg.Warnings = append(cfg.Warnings, warning)
		}
		*role.dst = p
	}
	for _, key := range []string{"PRINTER_KITCHEN_IP", "PRINTER_KITCHEN_PATH", "PRINTER_CASHIER_IP", "PRINTER_CASHIER_PATH"} {
		if strings.TrimSpace(getenv(key)) != "" {
			cfg.Printers.Colocated = true
		}
	}

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks values that FromEnv cannot repair on its own.
func (c Config) Validate() error {
	var errs []error
	for name, port := range map[string]string{"PORT": c.Port, "PRINT_SERVICE_PORT": c.PrintServicePort} {
		if _, err := parsePort(port); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	for _, p := range []*models.PrinterConfig{c.Printers.Kitchen, c.Printers.Cashier} {
		if p == nil {
			continue
		}
		switch p.Kind {
		case models.PrinterNetwork:
			if p.Port < 1 || p.Port > 65535 {
				errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidPort, p.Port))
			}
		case models.PrinterUSB, models.PrinterParallel:
		default:
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidPrinterKind, p.Kind))
		}
	}
	switch c.Store.Driver {
	case "mongo", "postgres":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidStore, c.Store.Driver))
	}
	return errors.Join(errs...)
}

// printerFromEnv resolves one printer role. A role left blank yields nil; a
// role missing its address yields nil plus a warning.
func printerFromEnv(getenv func(string) string, role string) (*models.PrinterConfig, string, error) {
	prefix := "PRINTER_" + role + "_"
	kind := models.PrinterKind(strings.ToLower(strings.TrimSpace(getenv(prefix + "TYPE"))))
	path := strings.TrimSpace(getenv(prefix + "PATH"))

	switch kind {
	case "":
		return nil, "", nil
	case models.PrinterNetwork:
		addr := strings.TrimSpace(getenv(prefix + "IP"))
		port := models.DefaultPrinterPort
		if raw := strings.TrimSpace(getenv(prefix + "PORT")); raw != "" {
			p, err := parsePort(raw)
			if err != nil {
				return nil, "", fmt.Errorf("%sPORT: %w", prefix, err)
			}
			port = p
		}
		if addr == "" {
			return nil, fmt.Sprintf("%s printer is network but %sIP is empty", strings.ToLower(role), prefix), nil
		}
		return &models.PrinterConfig{Kind: models.PrinterNetwork, Address: addr, Port: port}, "", nil
	case models.PrinterUSB:
		if path == "" {
			return nil, fmt.Sprintf("%s printer is usb but %sPATH is empty", strings.ToLower(role), prefix), nil
		}
		if strings.HasPrefix(strings.ToUpper(path), "LPT") {
			return &models.PrinterConfig{Kind: models.PrinterParallel, Address: path}, "", nil
		}
		return &models.PrinterConfig{Kind: models.PrinterUSB, Address: path}, "", nil
	case models.PrinterParallel:
		if path == "" {
			path = DefaultParallelPath
		}
		return &models.PrinterConfig{Kind: models.PrinterParallel, Address: path}, "", nil
	}
	return nil, "", fmt.Errorf("%sTYPE: %w: %q", prefix, ErrInvalidPrinterKind, kind)
}

func parsePort(raw string) (int, error) {
	p, err := strconv.Atoi(raw)
	if err != nil || p < 1 || p > 65535 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, raw)
	}
	return p, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
