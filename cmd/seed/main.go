package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gosimple/slug"
	"github.com/joho/godotenv"

	"learnpress-facade/internal/config"
	pg "learnpress-facade/internal/infra/db/postgres"
	"learnpress-facade/internal/infra/db/wpdb"
	"learnpress-facade/internal/infra/logging"
)

// seed fills a development Postgres store with a few accounts, a course and
// certificates so the API can be exercised without a WordPress install.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()
	_ = godotenv.Load()

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Store.Driver != "postgres" {
		log.Fatalf("seed only targets postgres development stores (store.driver=%s)", cfg.Store.Driver)
	}
	if cfg.Store.TablePrefix != "wp_" {
		log.Fatalf("seed schema uses the wp_ prefix (store.table_prefix=%s)", cfg.Store.TablePrefix)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.Connect(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	settings := wpdb.NewSettings(cfg.Store, cfg.Site)
	certs := pg.NewCertificateRepo(pool, settings, logging.Nop())

	// If certificates already exist, do nothing
	existing, err := certs.FindByUser(ctx, 2)
	if err != nil {
		log.Fatalf("list certificates: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d certificates already present for the student. No changes.\n", len(existing))
		for _, c := range existing {
			fmt.Printf("  - %s (id=%d, course=%d)\n", c.Code, c.ID, c.CourseID)
		}
		return
	}

	users := []struct {
		ID           int64
		Login, Name  string
		Email        string
		Capabilities string
	}{
		{1, "admin", "Site Admin", "admin@example.com", `a:1:{s:13:"administrator";b:1;}`},
		{2, "student", "Ada Student", "ada@example.com", `a:1:{s:10:"subscriber";b:1;}`},
	}
	for _, u := range users {
		if _, err := pool.Exec(ctx,
			`INSERT INTO wp_users (id, user_login, display_name, user_email) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`, u.ID, u.Login, u.Name, u.Email); err != nil {
			log.Fatalf("seed user %s: %v", u.Login, err)
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO wp_usermeta (user_id, meta_key, meta_value) VALUES ($1, $2, $3)`,
			u.ID, settings.Tables.CapabilitiesKey, u.Capabilities); err != nil {
			log.Fatalf("seed capabilities %s: %v", u.Login, err)
		}
	}

	// Published posts get a post_name derived from the title; drafts have none.
	courses := []struct {
		ID        int64
		Title     string
		Published bool
	}{
		{10, "Intro to Go", true},
		{11, "Concurrency in Practice", false},
	}
	for _, c := range courses {
		postName := ""
		if c.Published {
			postName = slug.Make(c.Title)
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO wp_posts (id, post_title, post_name, post_type) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`, c.ID, c.Title, postName, wpdb.CoursePostType); err != nil {
			log.Fatalf("seed course %q: %v", c.Title, err)
		}
	}

	seed := []struct {
		Code             string
		User, Course, ID int64
	}{
		{"GOINTRO2024", 2, 10, 0},
		{"GOCONC2024", 2, 11, 501},
	}
	for _, s := range seed {
		value, err := wpdb.EncodeCertificate(s.User, s.Course, s.ID)
		if err != nil {
			log.Fatalf("encode %s: %v", s.Code, err)
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO wp_options (option_name, option_value, autoload) VALUES ($1, $2, 'no')
			 ON CONFLICT (option_name) DO NOTHING`, wpdb.CertificateKey(s.Code), value); err != nil {
			log.Fatalf("seed certificate %s: %v", s.Code, err)
		}
		fmt.Printf("seeded: %s (user=%d, course=%d)\n", s.Code, s.User, s.Course)
	}

	fmt.Println("Seeding complete.")
}
