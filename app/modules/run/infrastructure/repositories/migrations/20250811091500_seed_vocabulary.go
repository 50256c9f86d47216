package runmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
)

// seedNames is the launch roster of canonical character names. Later
// additions go through the vocabulary repository, not a migration.
var seedNames = []string{
	"Admire Vega",
	"Agnes Digital",
	"Agnes Tachyon",
	"Air Groove",
	"Biwa Hayahide",
	"Curren Chan",
	"Daiwa Scarlet",
	"Eishin Flash",
	"El Condor Pasa",
	"Fine Motion",
	"Fuji Kiseki",
	"Gold City",
	"Gold Ship",
	"Grass Wonder",
	"Haru Urara",
	"Hishi Akebono",
	"Hishi Amazon",
	"Kawakami Princess",
	"King Halo",
	"Kitasan Black",
	"Manhattan Cafe",
	"Maruzensky",
	"Matikanefukukitaru",
	"Mayano Top Gun",
	"Meisho Doto",
	"Mejiro Ardan",
	"Mejiro Dober",
	"Mejiro McQueen",
	"Mejiro Ryan",
	"Mihono Bourbon",
	"Narita Brian",
	"Narita Taishin",
	"Nice Nature",
	"Oguri Cap",
	"Rice Shower",
	"Sakura Bakushin O",
	"Sakura Chiyono O",
	"Seiun Sky",
	"Silence Suzuka",
	"Smart Falcon",
	"Special Week",
	"Super Creek",
	"Symboli Rudolf",
	"Taiki Shuttle",
	"Tamamo Cross",
	"TM Opera O",
	"Tokai Teio",
	"Tosen Jordan",
	"Vodka",
	"Winning Ticket",
}

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Seeding vocabulary...")

		if _, err := db.NewCreateTable().
			Model((*rundb.VocabularyEntry)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create vocabulary: %w", err)
		}

		entries := make([]*rundb.VocabularyEntry, 0, len(seedNames))
		for _, name := range seedNames {
			entries = append(entries, &rundb.VocabularyEntry{Name: name, Active: true})
		}
		if _, err := db.NewInsert().
			Model(&entries).
			On("CONFLICT (name) DO NOTHING").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to seed vocabulary: %w", err)
		}

		fmt.Println("Vocabulary seeded successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping vocabulary...")

		if _, err := db.NewDropTable().
			Model((*rundb.VocabularyEntry)(nil)).
			IfExists().
			Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}
