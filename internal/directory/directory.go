package directory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clients is an in-memory client directory.
type Clients struct {
	records *collection[Client]
	clock   func() time.Time
}

// NewClients constructs a directory seeded with the given clients.
func NewClients(seed []Client) *Clients {
	return &Clients{
		records: newCollection(func(c Client) string { return c.ID }, seed),
		clock:   func() time.Time { return time.Now().UTC() },
	}
}

// Add stores a client, assigning an id and creation time when missing.
func (d *Clients) Add(_ context.Context, client Client) (Client, error) {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	if client.CreatedAt.IsZero() {
		client.CreatedAt = d.clock()
	}
	if err := d.records.add(client); err != nil {
		return Client{}, err
	}
	return client, nil
}

// Update merges the patch into an existing client.
func (d *Clients) Update(_ context.Context, id string, patch ClientPatch) (Client, error) {
	return d.records.update(id, patch.apply)
}

// Delete removes a client. Documents referencing it are left untouched.
func (d *Clients) Delete(_ context.Context, id string) error {
	return d.records.remove(id)
}

// Get returns the client or ErrNotFound.
func (d *Clients) Get(ctx context.Context, id string) (Client, error) {
	client, ok := d.ClientByID(ctx, id)
	if !ok {
		return Client{}, ErrNotFound
	}
	return client, nil
}

// ClientByID returns the client and whether it exists.
func (d *Clients) ClientByID(_ context.Context, id string) (Client, bool) {
	return d.records.get(id)
}

// List returns every client in insertion order.
func (d *Clients) List(_ context.Context) []Client {
	return d.records.filter(nil)
}

// Search matches the query case-insensitively against name and email. An
// empty query returns everything.
func (d *Clients) Search(_ context.Context, query string) []Client {
	q := strings.ToLower(strings.TrimSpace(query))
	return d.records.filter(func(c Client) bool {
		return q == "" ||
			strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Email), q)
	})
}

// Products is an in-memory product catalog.
type Products struct {
	records *collection[Product]
}

// NewProducts constructs a catalog seeded with the given products.
func NewProducts(seed []Product) *Products {
	return &Products{records: newCollection(func(p Product) string { return p.ID }, seed)}
}

// Add stores a product, assigning an id when missing.
func (d *Products) Add(_ context.Context, product Product) (Product, error) {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.Category == "" {
		product.Category = CategoryOther
	}
	if err := d.records.add(product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// Update merges the patch into an existing product.
func (d *Products) Update(_ context.Context, id string, patch ProductPatch) (Product, error) {
	return d.records.update(id, patch.apply)
}

// Delete removes a product. Line items keep their snapshot.
func (d *Products) Delete(_ context.Context, id string) error {
	return d.records.remove(id)
}

// Get returns the product or ErrNotFound.
func (d *Products) Get(ctx context.Context, id string) (Product, error) {
	product, ok := d.ProductByID(ctx, id)
	if !ok {
		return Product{}, ErrNotFound
	}
	return product, nil
}

// ProductByID returns the product and whether it exists.
func (d *Products) ProductByID(_ context.Context, id string) (Product, bool) {
	return d.records.get(id)
}

// List returns every product in insertion order.
func (d *Products) List(_ context.Context) []Product {
	return d.records.filter(nil)
}

// ByCategory returns the products of one category.
func (d *Products) ByCategory(_ context.Context, category ProductCategory) []Product {
	return d.records.filter(func(p Product) bool { return p.Category == category })
}

// GroupedByCategory buckets the catalog by category, omitting empty ones.
func (d *Products) GroupedByCategory(ctx context.Context) map[ProductCategory][]Product {
	grouped := make(map[ProductCategory][]Product)
	for _, p := range d.List(ctx) {
		grouped[p.Category] = append(grouped[p.Category], p)
	}
	return grouped
}

// Search matches the query case-insensitively against name and description.
func (d *Products) Search(_ context.Context, query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	return d.records.filter(func(p Product) bool {
		return q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q)
	})
}
