package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"marketminds/internal/db"
	"marketminds/internal/store"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// seedAsset is one entry of the assets file.
type seedAsset struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	AssetType string `json:"asset_type"`
}

// defaultAssets seeds a small NSE universe plus one crypto pair when no
// assets file is configured.
var defaultAssets = []seedAsset{
	{Symbol: "RELIANCE", Name: "Reliance Industries", AssetType: "stock"},
	{Symbol: "TCS", Name: "Tata Consultancy Services", AssetType: "stock"},
	{Symbol: "HDFCBANK", Name: "HDFC Bank", AssetType: "stock"},
	{Symbol: "INFY", Name: "Infosys", AssetType: "stock"},
	{Symbol: "BTC-USD", Name: "Bitcoin", AssetType: "crypto"},
}

func main() {
	_ = godotenv.Load()

	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	gdb, err := db.Open(cfg.Database.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}

	assets, err := loadAssets(cfg.AssetsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load assets file: %v\n", err)
		os.Exit(1)
	}

	inserted := 0
	for _, a := range assets {
		if a.Symbol == "" {
			continue
		}

		var existing db.Asset
		err := gdb.Where("symbol = ?", a.Symbol).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Fprintf(os.Stderr, "Lookup failed for %s: %v\n", a.Symbol, err)
			os.Exit(1)
		}

		assetType := a.AssetType
		if assetType == "" {
			assetType = "stock"
		}
		record := db.Asset{Symbol: a.Symbol, Name: a.Name, AssetType: assetType}
		if err := gdb.Create(&record).Error; err != nil {
			fmt.Fprintf(os.Stderr, "Insert failed for %s: %v\n", a.Symbol, err)
			os.Exit(1)
		}
		inserted++
	}

	fmt.Printf("Seeded %d new assets (%d total in file)\n", inserted, len(assets))
}

// loadAssets reads the configured assets file, falling back to the built-in
// universe when no file is configured.
func loadAssets(path string) ([]seedAsset, error) {
	if path == "" {
		return defaultAssets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var assets []seedAsset
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, fmt.Errorf("invalid assets file %s: %w", path, err)
	}
	return assets, nil
}
