// Command seed prepares a database: it creates the schema and the
// bootstrap owner, and can restore visits from a JSON export or backup.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/slingventas/sales-tracker-backend/internal/platform/config"
	"github.com/slingventas/sales-tracker-backend/internal/platform/database"
	"github.com/slingventas/sales-tracker-backend/internal/platform/logging"
	"github.com/slingventas/sales-tracker-backend/internal/platform/startup"
	"github.com/slingventas/sales-tracker-backend/internal/record"
	"github.com/slingventas/sales-tracker-backend/internal/user"
)

func main() {
	importPath := flag.String("import", "", "JSON file of visits to append to the open cycle")
	demo := flag.Bool("demo", false, "create a demo employee with a few visits")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetLogger().WithError(err).Fatal("failed to load config")
	}
	log := logging.Init(cfg.Log.Level, "text")
	ctx := context.Background()

	if err := database.InitDB(cfg.Database.Driver, cfg.Database.DSN, log); err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	rdb := database.InitRedis(cfg.Database.Redis.Address, cfg.Database.Redis.Password, cfg.Database.Redis.DB, log)

	users := user.NewService(database.DB, rdb, log, cfg.Auth.TokenTTL)
	if err := startup.InitializeApplication(ctx, startup.Modules{DB: database.DB, Users: users, Log: log}, cfg.Auth.BootstrapOwner); err != nil {
		log.WithError(err).Fatal("initialization failed")
	}
	records := record.NewService(database.DB, log, record.WithLocation(cfg.Contact.Location()))

	if *importPath != "" {
		if err := importFile(ctx, records, *importPath, log); err != nil {
			log.WithError(err).Fatal("import failed")
		}
	}
	if *demo {
		if err := seedDemo(ctx, users, records, log); err != nil {
			log.WithError(err).Fatal("demo seed failed")
		}
	}
	log.Info("seed: done")
}

func importFile(ctx context.Context, records *record.Service, path string, log *logrus.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var visits []record.Record
	if err := json.Unmarshal(data, &visits); err != nil {
		return err
	}
	n, err := records.Import(ctx, visits)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"file": path, "count": n}).Info("seed: visits imported")
	return nil
}

var demoVisits = []record.CreateRequest{
	{Company: "Kiosco Demo A", Address: "Av. Colón 100", Industry: "COMIDA", ContactInfo: "351 455 1234", Sold: "Si", Contacted: "Si"},
	{Company: "Kiosco Demo B", Address: "Bv. San Juan 200", Industry: "ROPA", ContactInfo: "351 455 5678", Sold: "No"},
	{Company: "Kiosco Demo C", Address: "Deán Funes 300", Industry: "LIBRERIA", ContactInfo: "demo@example.com"},
}

func seedDemo(ctx context.Context, users *user.Service, records *record.Service, log *logrus.Logger) error {
	// 1. Demo employee
	_, err := users.Add(ctx, user.AddRequest{Username: "demo", Password: "demo", Role: string(user.RoleEmployee)})
	if err != nil && !errors.Is(err, user.ErrUserExists) {
		return err
	}
	actor, err := users.Lookup(ctx, "demo")
	if err != nil {
		return err
	}

	// 2. Visits, skipping the ones already present
	created := 0
	for _, req := range demoVisits {
		_, err := records.Create(ctx, actor, req)
		var dup *record.DuplicateError
		if errors.As(err, &dup) {
			continue
		}
		if err != nil {
			return err
		}
		created++
	}
	log.WithField("count", created).Info("seed: demo visits created")
	return nil
}
