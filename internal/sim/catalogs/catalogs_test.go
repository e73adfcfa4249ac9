package catalogs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ConfigsMatchDefaults(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "..", "configs"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Defaults()

	if len(c.Taxes.Policies) != len(def.Taxes.Policies) {
		t.Fatalf("tax policies: %d vs %d", len(c.Taxes.Policies), len(def.Taxes.Policies))
	}
	for i, p := range def.Taxes.Policies {
		if c.Taxes.Policies[i] != p {
			t.Fatalf("tax policy %d differs: %+v vs %+v", i, c.Taxes.Policies[i], p)
		}
	}

	if len(c.Services.Budgets) != len(def.Services.Budgets) {
		t.Fatalf("services: %d vs %d", len(c.Services.Budgets), len(def.Services.Budgets))
	}
	for i, s := range def.Services.Budgets {
		got := c.Services.Budgets[i]
		if got.ID != s.ID || got.BaseCost != s.BaseCost || got.Efficiency != s.Efficiency || len(got.Effects) != len(s.Effects) {
			t.Fatalf("service %s differs: %+v vs %+v", s.ID, got, s)
		}
	}

	all := c.Upgrades.Catalog.All()
	if len(all) != len(def.Upgrades.Catalog.All()) {
		t.Fatalf("upgrades: %d", len(all))
	}
	if u, ok := c.Upgrades.Catalog.Get("solar_farm"); !ok || u.Prerequisite != "smart_grid" {
		t.Fatalf("solar_farm: %+v", u)
	}
	if c.Taxes.Digest == "" || c.Services.Digest == "" || c.Upgrades.Digest == "" {
		t.Fatalf("missing digests")
	}
}

func TestLoad_MissingFilesUseDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Taxes.Policies) != 4 || len(c.Services.Budgets) != 8 {
		t.Fatalf("unexpected defaults: %d taxes, %d services", len(c.Taxes.Policies), len(c.Services.Budgets))
	}
	if c.Taxes.Digest != Defaults().Taxes.Digest {
		t.Fatalf("default digest unstable")
	}
}

func TestLoad_RejectsBadCategory(t *testing.T) {
	dir := t.TempDir()
	raw := `[{"id":"x","rate":5,"category":"agricultural","revenueMultiplier":1,"enabled":true}]`
	if err := os.WriteFile(filepath.Join(dir, taxFile), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected category error")
	}
}

func TestLoad_RejectsUnknownPrerequisite(t *testing.T) {
	dir := t.TempDir()
	raw := `[{"id":"a","cost":1,"prerequisite":"b"}]`
	if err := os.WriteFile(filepath.Join(dir, upgradesFile), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected prerequisite error")
	}
}
