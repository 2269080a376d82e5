// File: cmd/setup/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"

	"subscription-retention-service/internal/config"
	"subscription-retention-service/internal/domain/model"
	pg "subscription-retention-service/internal/infra/db/postgres"
	red "subscription-retention-service/internal/infra/redis"
)

// Sets up (or tears down) the service-owned database state. With
// -fixtures it also seeds a small WooCommerce Subscriptions dataset so
// the whole flow can be exercised against a local store.
func main() {
	_ = godotenv.Load()
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	schemaPath := flag.String("schema", "deploy/postgres/init.sql", "path to schema file")
	teardown := flag.Bool("teardown", false, "drop service-owned tables and clear deferred jobs")
	fixtures := flag.Bool("fixtures", false, "seed a demo store dataset for manual testing")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	pool, err := pg.Connect(ctx, cfg.Store.URL)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	if *teardown {
		runTeardown(ctx, cfg, pool)
		return
	}

	log.Println("applying schema...")
	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	log.Println("schema applied")

	if *fixtures {
		seedStoreFixtures(ctx, pool)
	}
}

// runTeardown is the decommissioning path: pending deferred work is
// cancelled first so a paused subscription is not resumed by a job that
// outlives the service, then the service-owned tables go away. The store
// tables are never touched.
func runTeardown(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) {
	jobs := pg.NewJobRepo(pool)
	for _, name := range []string{model.JobResumeSubscription, model.JobSendWinback} {
		if err := jobs.Clear(ctx, name); err != nil {
			log.Fatalf("clear %s jobs: %v", name, err)
		}
	}

	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS retention_events, shop_coupons, scheduled_jobs`); err != nil {
		log.Fatalf("drop tables: %v", err)
	}

	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Printf("redis unavailable, leaving offer markers in place: %v", err)
	} else {
		defer redisClient.Close()
		if err := redisClient.FlushDB(ctx); err != nil {
			log.Printf("failed to flush redis: %v", err)
		}
	}
	log.Println("teardown complete")
}

// seedStoreFixtures plants one active WooCommerce Subscriptions
// subscription, its owner and the plugin signature option.
func seedStoreFixtures(ctx context.Context, pool *pgxpool.Pool) {
	log.Println("seeding demo store data...")

	_, err := pool.Exec(ctx, `
		INSERT INTO wp_options (option_name, option_value)
		VALUES ('woocommerce_subscriptions_active_version', '7.2.1')
		ON CONFLICT (option_name) DO NOTHING`)
	if err != nil {
		log.Fatalf("seed signature option: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO wp_users ("ID", user_email)
		VALUES (101, 'demo@example.test')
		ON CONFLICT ("ID") DO NOTHING`)
	if err != nil {
		log.Fatalf("seed user: %v", err)
	}

	var postID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO wp_posts (post_type, post_status)
		VALUES ('shop_subscription', 'wc-active')
		RETURNING "ID"`).Scan(&postID)
	if err != nil {
		log.Fatalf("seed subscription: %v", err)
	}

	meta := map[string]string{
		"_customer_user":         "101",
		"_billing_email":         "demo@example.test",
		"_order_total":           "29.99",
		"_billing_period":        "month",
		"_billing_interval":      "1",
		"_schedule_next_payment": "2026-10-01 00:00:00",
	}
	for key, value := range meta {
		if _, err := pool.Exec(ctx,
			`INSERT INTO wp_postmeta (post_id, meta_key, meta_value) VALUES ($1, $2, $3)`,
			postID, key, value); err != nil {
			log.Fatalf("seed meta %s: %v", key, err)
		}
	}

	log.Printf("demo subscription ready: id=%d customer=101", postID)
}
