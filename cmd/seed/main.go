package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/hoteza-pos/api/internal/config"
	"github.com/hoteza-pos/api/internal/kv"
	"github.com/hoteza-pos/api/internal/logger"
	"github.com/hoteza-pos/api/internal/repository"
	"github.com/hoteza-pos/api/internal/service"
	"go.uber.org/zap"
)

func main() {
	// CLI flags
	email := flag.String("email", "", "Owner email address")
	password := flag.String("password", "", "Owner password")
	name := flag.String("name", "", "Owner full name")
	restaurant := flag.String("restaurant", "", "Restaurant name")
	sample := flag.Bool("sample", false, "Load the sample waiters, menu, orders, expenses and vouchers")
	force := flag.Bool("force", false, "With -sample, overwrite existing data")
	flag.Parse()

	// Fall back to environment variables
	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *name == "" {
		*name = os.Getenv("SEED_NAME")
	}
	if *restaurant == "" {
		*restaurant = os.Getenv("SEED_RESTAURANT")
	}

	cfg := config.Load()
	sugar, err := logger.New(cfg.LogMode, "")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer sugar.Sync()

	// Fall back to defaults
	if *email == "" {
		*email = "admin@hoteza.com"
	}
	if *password == "" {
		*password = "password123"
		sugar.Warn("using default password 'password123', change it immediately in production")
	}
	if *name == "" {
		*name = "Admin Hoteza"
	}
	if *restaurant == "" {
		*restaurant = "Hoteza Restaurant"
	}

	ctx := context.Background()
	store, err := kv.Open(ctx, kv.Options{
		Driver:        cfg.StoreDriver,
		BoltPath:      cfg.BoltPath,
		DatabaseURL:   cfg.DatabaseURL,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		Prefix:        cfg.StoreKeyPrefix,
		Timeout:       cfg.StoreTimeout,
	})
	if err != nil {
		sugar.Fatalw("unable to open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer store.Close()
	sugar.Infow("store opened", "driver", cfg.StoreDriver)

	repo := repository.New(store, sugar)
	loc := cfg.Location()

	st, err := service.LoadState(ctx, repo, service.Options{Location: loc, Logger: sugar})
	if err != nil {
		sugar.Fatalw("failed to load state", "error", err)
	}

	if err := seedOwner(ctx, service.NewAccounts(st), service.SignUpInput{
		Restaurant: *restaurant,
		Name:       *name,
		Email:      *email,
		Password:   *password,
		Title:      "Owner",
	}, sugar); err != nil {
		sugar.Fatalw("failed to seed owner", "error", err)
	}

	if *sample {
		if err := seedSample(ctx, repo, loc, *force, sugar); err != nil {
			sugar.Fatalw("failed to seed sample data", "error", err)
		}
	}

	sugar.Info("seed completed successfully")
}

// seedOwner creates the owner account unless one already exists.
func seedOwner(ctx context.Context, accounts *service.Accounts, in service.SignUpInput, log *zap.SugaredLogger) error {
	acct, err := accounts.SignUp(ctx, in)
	if errors.Is(err, service.ErrDuplicateID) {
		log.Infow("account already exists, skipping", "email", in.Email)
		return nil
	}
	if err != nil {
		return err
	}
	log.Infow("created owner account", "email", acct.Email, "restaurant", acct.Restaurant)
	return nil
}

// seedSample writes the demo data set. Existing catalog data is kept
// unless force is set.
func seedSample(ctx context.Context, repo *repository.Repository, loc *time.Location, force bool, log *zap.SugaredLogger) error {
	snap, err := repo.Load(ctx)
	if err != nil {
		return err
	}
	if !force && (len(snap.Waiters) > 0 || len(snap.MenuItems) > 0 || len(snap.Orders) > 0) {
		log.Infow("store already has data, skipping sample (use -force to overwrite)",
			"waiters", len(snap.Waiters), "menu_items", len(snap.MenuItems), "orders", len(snap.Orders))
		return nil
	}

	if err := repo.Save(ctx, service.SampleChanges(time.Now(), loc)...); err != nil {
		return err
	}
	log.Info("sample data loaded")
	return nil
}
