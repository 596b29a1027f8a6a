// Command seed loads the manufacturer and catalog-bike master data. Safe to
// run repeatedly: rows are upserted by natural key.
package main

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/motogarage/motogarage-server/internal/config"
)

type manufacturerSeed struct {
	Name    string
	NameEn  string
	Country string
}

type bikeSeed struct {
	Manufacturer string // NameEn of the manufacturer
	ModelName    string
	Displacement int
	ModelYear    int
}

var manufacturers = []manufacturerSeed{
	{"ホンダ", "Honda", "Japan"},
	{"ヤマハ", "Yamaha", "Japan"},
	{"スズキ", "Suzuki", "Japan"},
	{"カワサキ", "Kawasaki", "Japan"},
	{"ドゥカティ", "Ducati", "Italy"},
	{"BMW", "BMW Motorrad", "Germany"},
	{"ハーレーダビッドソン", "Harley-Davidson", "USA"},
	{"トライアンフ", "Triumph", "UK"},
	{"KTM", "KTM", "Austria"},
	{"アプリリア", "Aprilia", "Italy"},
}

var bikes = []bikeSeed{
	{"Honda", "CB400 Super Four", 399, 2019},
	{"Honda", "Rebel 250", 249, 2022},
	{"Yamaha", "YZF-R25", 249, 2021},
	{"Yamaha", "SR400", 399, 2018},
	{"Suzuki", "SV650", 645, 2020},
	{"Kawasaki", "Ninja 400", 398, 2022},
	{"Kawasaki", "Z900RS", 948, 2021},
	{"Ducati", "Monster", 937, 2023},
	{"Triumph", "Street Triple", 765, 2022},
}

func main() {
	cfg := config.LoadConfig()

	db, err := config.SetupDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to set up database: %v", err)
	}
	defer db.Close()

	if err := seedManufacturers(db); err != nil {
		log.Fatalf("Failed to seed manufacturers: %v", err)
	}
	if err := seedBikes(db); err != nil {
		log.Fatalf("Failed to seed bikes: %v", err)
	}

	log.Println("Seeding finished")
}

func seedManufacturers(db *sqlx.DB) error {
	for _, m := range manufacturers {
		_, err := db.Exec(`
			INSERT INTO manufacturers (id, name, name_en, country)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE SET name_en = $3, country = $4
		`, uuid.New().String(), m.Name, m.NameEn, m.Country)
		if err != nil {
			return err
		}
		log.Printf("Seeded manufacturer: %s", m.NameEn)
	}
	return nil
}

func seedBikes(db *sqlx.DB) error {
	for _, b := range bikes {
		var manufacturerID string
		if err := db.Get(&manufacturerID, `SELECT id FROM manufacturers WHERE name_en = $1`, b.Manufacturer); err != nil {
			return err
		}

		var exists bool
		err := db.Get(&exists, `
			SELECT EXISTS(
				SELECT 1 FROM bikes
				WHERE manufacturer_id = $1 AND model_name = $2 AND model_year = $3
			)
		`, manufacturerID, b.ModelName, b.ModelYear)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		_, err = db.Exec(`
			INSERT INTO bikes (id, manufacturer_id, model_name, displacement, model_year)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), manufacturerID, b.ModelName, b.Displacement, b.ModelYear)
		if err != nil {
			return err
		}
		log.Printf("Seeded bike: %s %s", b.Manufacturer, b.ModelName)
	}
	return nil
}
