package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/services"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/tax"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/infra"
)

// Catalogs are the fixed definitions a new city starts from.
type Catalogs struct {
	Taxes    TaxCatalog
	Services ServiceCatalog
	Upgrades UpgradeCatalog
}

type TaxCatalog struct {
	Policies []tax.Policy
	Digest   string
}

type ServiceCatalog struct {
	Budgets []services.Budget
	Digest  string
}

type UpgradeCatalog struct {
	Catalog *infra.Catalog
	Digest  string
}

const (
	taxFile      = "tax_policies.json"
	servicesFile = "services.json"
	upgradesFile = "upgrades.json"
)

// Load reads the catalog files under configDir. A missing file falls back to the
// built-in definitions; a malformed one is an error.
func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadTaxes(filepath.Join(configDir, taxFile), &c.Taxes); err != nil {
		return nil, err
	}
	if err := loadServices(filepath.Join(configDir, servicesFile), &c.Services); err != nil {
		return nil, err
	}
	if err := loadUpgrades(filepath.Join(configDir, upgradesFile), &c.Upgrades); err != nil {
		return nil, err
	}
	return &c, nil
}

// Defaults returns the built-in catalogs.
func Defaults() *Catalogs {
	cat, err := infra.NewCatalog(DefaultUpgrades())
	if err != nil {
		panic(fmt.Sprintf("built-in upgrades: %v", err))
	}
	return &Catalogs{
		Taxes:    TaxCatalog{Policies: DefaultTaxPolicies(), Digest: digestOf(DefaultTaxPolicies())},
		Services: ServiceCatalog{Budgets: DefaultServices(), Digest: digestOf(DefaultServices())},
		Upgrades: UpgradeCatalog{Catalog: cat, Digest: digestOf(DefaultUpgrades())},
	}
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func digestOf(v any) string {
	b, _ := json.Marshal(v)
	return sha256Hex(b)
}

func readOptional(path string) ([]byte, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

func loadTaxes(path string, out *TaxCatalog) error {
	raw, ok, err := readOptional(path)
	if err != nil {
		return err
	}
	if !ok {
		out.Policies = DefaultTaxPolicies()
		out.Digest = digestOf(out.Policies)
		return nil
	}
	out.Digest = sha256Hex(raw)

	var defs []tax.Policy
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("%s: %w", taxFile, err)
	}
	seen := map[string]bool{}
	for _, p := range defs {
		if p.ID == "" {
			return fmt.Errorf("%s: empty id", taxFile)
		}
		if seen[p.ID] {
			return fmt.Errorf("%s: duplicate id %s", taxFile, p.ID)
		}
		if !p.Category.Valid() {
			return fmt.Errorf("%s: %s: bad category %q", taxFile, p.ID, p.Category)
		}
		seen[p.ID] = true
	}
	out.Policies = defs
	return nil
}

func loadServices(path string, out *ServiceCatalog) error {
	raw, ok, err := readOptional(path)
	if err != nil {
		return err
	}
	if !ok {
		out.Budgets = DefaultServices()
		out.Digest = digestOf(out.Budgets)
		return nil
	}
	out.Digest = sha256Hex(raw)

	var defs []services.Budget
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("%s: %w", servicesFile, err)
	}
	seen := map[string]bool{}
	for i, s := range defs {
		if s.ID == "" {
			return fmt.Errorf("%s: empty id", servicesFile)
		}
		if seen[s.ID] {
			return fmt.Errorf("%s: duplicate id %s", servicesFile, s.ID)
		}
		if s.BaseCost < 0 {
			return fmt.Errorf("%s: %s: negative base cost", servicesFile, s.ID)
		}
		seen[s.ID] = true
		// Catalog files only carry base definitions; derived fields come from the budget.
		if s.CurrentBudget == 0 {
			defs[i].CurrentBudget = 100
		}
		defs[i] = services.WithBudget(defs[i], defs[i].CurrentBudget)
	}
	out.Budgets = defs
	return nil
}

func loadUpgrades(path string, out *UpgradeCatalog) error {
	raw, ok, err := readOptional(path)
	if err != nil {
		return err
	}
	defs := DefaultUpgrades()
	if ok {
		out.Digest = sha256Hex(raw)
		defs = nil
		if err := json.Unmarshal(raw, &defs); err != nil {
			return fmt.Errorf("%s: %w", upgradesFile, err)
		}
	} else {
		out.Digest = digestOf(defs)
	}
	cat, err := infra.NewCatalog(defs)
	if err != nil {
		return fmt.Errorf("%s: %w", upgradesFile, err)
	}
	out.Catalog = cat
	return nil
}
