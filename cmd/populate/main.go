package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"rango/internal/config"
	"rango/internal/db"
	"rango/internal/service"
)

type seedPage struct {
	title string
	url   string
	views int
}

type seedCategory struct {
	name  string
	views int
	likes int
	pages []seedPage
}

var seed = []seedCategory{
	{
		name: "Python", views: 128, likes: 64,
		pages: []seedPage{
			{"Official Python Tutorial", "http://docs.python.org/3/tutorial/", 40},
			{"How to Think like a Computer Scientist", "http://www.greenteapress.com/thinkpython/", 25},
			{"Learn Python in 10 Minutes", "http://www.korokithakis.net/tutorials/python/", 12},
		},
	},
	{
		name: "Django", views: 64, likes: 32,
		pages: []seedPage{
			{"Official Django Tutorial", "https://docs.djangoproject.com/en/stable/intro/tutorial01/", 33},
			{"Django Rocks", "http://www.djangorocks.com/", 8},
			{"How to Tango with Django", "http://www.tangowithdjango.com/", 19},
		},
	},
	{
		name: "Other Frameworks", views: 32, likes: 16,
		pages: []seedPage{
			{"Bottle", "http://bottlepy.org/docs/dev/", 5},
			{"Flask", "http://flask.pocoo.org", 7},
		},
	},
}

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal(err)
	}

	for _, cat := range seed {
		categoryID, err := upsertCategory(ctx, pool, cat)
		if err != nil {
			log.Fatalf("seed category %s: %v", cat.name, err)
		}
		for _, p := range cat.pages {
			if err := upsertPage(ctx, pool, categoryID, p); err != nil {
				log.Fatalf("seed page %s: %v", p.title, err)
			}
		}
		logger.Info("category seeded", zap.String("name", cat.name), zap.Int("pages", len(cat.pages)))
	}
}

func upsertCategory(ctx context.Context, pool *pgxpool.Pool, cat seedCategory) (string, error) {
	const query = `
		INSERT INTO categories (id, name, slug, views, likes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slug) DO UPDATE SET views = EXCLUDED.views, likes = EXCLUDED.likes
		RETURNING id
	`
	var id string
	err := pool.QueryRow(ctx, query,
		uuid.NewString(),
		cat.name,
		service.Slugify(cat.name),
		cat.views,
		cat.likes,
		time.Now().UTC(),
	).Scan(&id)
	return id, err
}

func upsertPage(ctx context.Context, pool *pgxpool.Pool, categoryID string, p seedPage) error {
	const update = `UPDATE pages SET views = $3 WHERE category_id = $1 AND title = $2`
	tag, err := pool.Exec(ctx, update, categoryID, p.title, p.views)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	const insert = `
		INSERT INTO pages (id, category_id, title, url, views, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = pool.Exec(ctx, insert, uuid.NewString(), categoryID, p.title, p.url, p.views, time.Now().UTC())
	return err
}
