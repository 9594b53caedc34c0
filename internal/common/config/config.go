package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Restaurant RestaurantConfig
	Storage    StorageConfig
	Printers   PrintersConfig
	Tables     []string
}

// RestaurantConfig is the identity printed on ticket and report headers.
type RestaurantConfig struct {
	Name    string
	Address []string
	Siret   string
	Footer  string
}

type StorageConfig struct {
	// DataDir is the root under which the monthly archives, daily files,
	// Z-reports and counters live.
	DataDir string
}

type PrintersConfig struct {
	Receipt PrinterConfig
	Kitchen PrinterConfig
	Bar     PrinterConfig
}

type PrinterConfig struct {
	Enabled bool
	Host    string
	Port    int
	Timeout time.Duration
}

// Addr is the dial target for the printer transport.
func (p PrinterConfig) Addr() string { return fmt.Sprintf("%s:%d", p.Host, p.Port) }

// Load reads caisse.env if present, then the environment, with explicit
// defaults for every key.
func Load() *Config {
	viper.SetConfigFile("caisse.env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // optional file; environment and defaults cover the rest

	viper.SetDefault("RESTAURANT_NAME", "LA MEDUSA")
	viper.SetDefault("RESTAURANT_ADDRESS", []string{"1 Avenue Pasteur", "06670 ST Martin Du Var"})
	viper.SetDefault("RESTAURANT_SIRET", "983 591 389 00017")
	viper.SetDefault("RESTAURANT_FOOTER", "Merci pour votre visite !")
	viper.SetDefault("DATA_DIR", ".")
	viper.SetDefault("TABLES", defaultTables())

	for key, def := range map[string]any{
		"RECEIPT_PRINTER_ENABLED": false,
		"RECEIPT_PRINTER_HOST":    "192.168.1.100",
		"RECEIPT_PRINTER_PORT":    9100,
		"RECEIPT_PRINTER_TIMEOUT": 5,
		"KITCHEN_PRINTER_ENABLED": false,
		"KITCHEN_PRINTER_HOST":    "192.168.1.101",
		"KITCHEN_PRINTER_PORT":    9100,
		"KITCHEN_PRINTER_TIMEOUT": 5,
		"BAR_PRINTER_ENABLED":     false,
		"BAR_PRINTER_HOST":        "192.168.1.102",
		"BAR_PRINTER_PORT":        9100,
		"BAR_PRINTER_TIMEOUT":     5,
	} {
		viper.SetDefault(key, def)
	}

	return &Config{
		Restaurant: RestaurantConfig{
			Name:    viper.GetString("RESTAURANT_NAME"),
			Address: viper.GetStringSlice("RESTAURANT_ADDRESS"),
			Siret:   viper.GetString("RESTAURANT_SIRET"),
			Footer:  viper.GetString("RESTAURANT_FOOTER"),
		},
		Storage: StorageConfig{
			DataDir: viper.GetString("DATA_DIR"),
		},
		Printers: PrintersConfig{
			Receipt: printer("RECEIPT"),
			Kitchen: printer("KITCHEN"),
			Bar:     printer("BAR"),
		},
		Tables: viper.GetStringSlice("TABLES"),
	}
}

func printer(prefix string) PrinterConfig {
	return PrinterConfig{
		Enabled: viper.GetBool(prefix + "_PRINTER_ENABLED"),
		Host:    viper.GetString(prefix + "_PRINTER_HOST"),
		Port:    viper.GetInt(prefix + "_PRINTER_PORT"),
		Timeout: time.Duration(viper.GetInt(prefix+"_PRINTER_TIMEOUT")) * time.Second,
	}
}

func defaultTables() []string {
	tables := make([]string, 0, 22)
	for i := 1; i <= 20; i++ {
		tables = append(tables, fmt.Sprintf("Table %d", i))
	}
	return append(tables, "À emporter", "Comptoir")
}
