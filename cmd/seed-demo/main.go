package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/edvin/crm/internal/config"
	"github.com/edvin/crm/internal/core"
	"github.com/edvin/crm/internal/db"
)

type tenantsFile struct {
	Tenants []tenantEntry `yaml:"tenants"`
}

type tenantEntry struct {
	TenantName    string `yaml:"tenant_name"`
	Subdomain     string `yaml:"subdomain"`
	BillingEmail  string `yaml:"billing_email"`
	AdminEmail    string `yaml:"admin_email"`
	AdminName     string `yaml:"admin_name"`
	AdminPassword string `yaml:"admin_password"`
	PlanID        string `yaml:"plan_id"`
}

type planSeed struct {
	id            string
	name          string
	priceCents    int
	billingCycle  string
	maxUsers      int
	storageLimit  int64
	apiCallsLimit int
}

var planSeeds = []planSeed{
	{"plan_starter", "Starter", 2900, "monthly", 5, 5 << 30, 10000},
	{"plan_business", "Business", 9900, "monthly", 25, 50 << 30, 100000},
	{"plan_enterprise", "Enterprise", 29900, "monthly", 250, 500 << 30, 1000000},
}

func main() {
	seedFile := "seeds/demo/tenants.yaml"
	if len(os.Args) > 1 {
		seedFile = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate("seed-demo"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fmt.Println("Seeding CRM database...")

	fmt.Println("  Inserting subscription plans...")
	for _, p := range planSeeds {
		_, err := pool.Exec(ctx,
			`INSERT INTO subscription_plans (id, name, price_cents, billing_cycle, max_users, storage_limit, api_calls_limit, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			 ON CONFLICT (id) DO UPDATE SET price_cents = EXCLUDED.price_cents,
			   max_users = EXCLUDED.max_users, storage_limit = EXCLUDED.storage_limit,
			   api_calls_limit = EXCLUDED.api_calls_limit`,
			p.id, p.name, p.priceCents, p.billingCycle, p.maxUsers, p.storageLimit, p.apiCallsLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "insert plan %s: %v\n", p.id, err)
			os.Exit(1)
		}
	}

	data, err := os.ReadFile(seedFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read seed file: %v\n", err)
		os.Exit(1)
	}
	var seeds tenantsFile
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		fmt.Fprintf(os.Stderr, "parse seed file: %v\n", err)
		os.Exit(1)
	}

	provisioning := core.NewProvisioningService(pool, core.NewPlanService(pool))

	for _, t := range seeds.Tenants {
		fmt.Printf("  Provisioning tenant %s (%s)...\n", t.TenantName, t.Subdomain)
		_, err := provisioning.Provision(ctx, core.ProvisionParams{
			TenantName:    t.TenantName,
			Subdomain:     t.Subdomain,
			BillingEmail:  t.BillingEmail,
			AdminEmail:    t.AdminEmail,
			AdminName:     t.AdminName,
			AdminPassword: t.AdminPassword,
			PlanID:        t.PlanID,
		})
		if err != nil {
			if core.KindOf(err) == core.KindConflict {
				fmt.Printf("    already exists, skipping\n")
				continue
			}
			fmt.Fprintf(os.Stderr, "provision %s: %v\n", t.Subdomain, err)
			os.Exit(1)
		}
	}

	fmt.Println("Done.")
}
