package directory

import (
	"time"

	"github.com/shopspring/decimal"
)

func day(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return t
}

// DemoClients returns the sample client list used by SEED_DEMO.
func DemoClients() []Client {
	return []Client{
		{ID: "CLT001", Name: "Acme Corporation", Email: "contact@acmecorp.com", Phone: "+1 (555) 123-4567",
			Address: Address{Street: "123 Business Park Drive", City: "New York", State: "NY", ZipCode: "10001", Country: "USA"},
			TaxID:   "US-123456789", CreatedAt: day("2024-01-15")},
		{ID: "CLT002", Name: "TechStart Inc.", Email: "billing@techstart.io", Phone: "+1 (555) 234-5678",
			Address: Address{Street: "456 Innovation Boulevard", City: "San Francisco", State: "CA", ZipCode: "94102", Country: "USA"},
			TaxID:   "US-987654321", CreatedAt: day("2024-02-20")},
		{ID: "CLT003", Name: "Global Solutions Ltd", Email: "accounts@globalsolutions.com", Phone: "+44 20 7946 0958",
			Address: Address{Street: "789 Commerce Street", City: "London", State: "England", ZipCode: "EC1A 1BB", Country: "UK"},
			TaxID:   "GB-111222333", CreatedAt: day("2024-03-10")},
		{ID: "CLT004", Name: "Sunrise Enterprises", Email: "info@sunrise-ent.com", Phone: "+1 (555) 345-6789",
			Address:   Address{Street: "321 Sunset Avenue", City: "Miami", State: "FL", ZipCode: "33101", Country: "USA"},
			CreatedAt: day("2024-04-05")},
		{ID: "CLT005", Name: "Digital Dynamics", Email: "support@digitaldynamics.net", Phone: "+1 (555) 456-7890",
			Address: Address{Street: "654 Tech Plaza", City: "Austin", State: "TX", ZipCode: "73301", Country: "USA"},
			TaxID:   "US-555666777", CreatedAt: day("2024-05-12")},
		{ID: "CLT006", Name: "Pacific Trading Co.", Email: "orders@pacifictrading.com", Phone: "+1 (555) 567-8901",
			Address: Address{Street: "987 Harbor Road", City: "Seattle", State: "WA", ZipCode: "98101", Country: "USA"},
			TaxID:   "US-888999000", CreatedAt: day("2024-06-01")},
		{ID: "CLT007", Name: "Metro Manufacturing", Email: "finance@metromanuf.com", Phone: "+1 (555) 678-9012",
			Address:   Address{Street: "147 Industrial Way", City: "Chicago", State: "IL", ZipCode: "60601", Country: "USA"},
			CreatedAt: day("2024-07-15")},
		{ID: "CLT008", Name: "European Ventures GmbH", Email: "contact@euroventures.de", Phone: "+49 30 12345678",
			Address: Address{Street: "Hauptstraße 42", City: "Berlin", State: "Berlin", ZipCode: "10115", Country: "Germany"},
			TaxID:   "DE-123456789", CreatedAt: day("2024-08-20")},
		{ID: "CLT009", Name: "Alpha Consulting Group", Email: "hello@alphaconsulting.com", Phone: "+1 (555) 789-0123",
			Address: Address{Street: "258 Executive Lane", City: "Boston", State: "MA", ZipCode: "02101", Country: "USA"},
			TaxID:   "US-222333444", CreatedAt: day("2024-09-10")},
	}
}

func product(id, name, description, price string, category ProductCategory, taxRate, unit string) Product {
	return Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       decimal.RequireFromString(price),
		Category:    category,
		TaxRate:     decimal.RequireFromString(taxRate),
		Unit:        unit,
	}
}

// DemoProducts returns the sample catalog used by SEED_DEMO.
func DemoProducts() []Product {
	return []Product{
		product("PRD001", "Web Development - Standard", "Professional web development services for standard projects", "125", CategoryService, "0.10", "hour"),
		product("PRD002", "Web Development - Premium", "Premium web development for complex applications", "175", CategoryService, "0.10", "hour"),
		product("PRD003", "Mobile App Development", "Native iOS and Android application development", "150", CategoryService, "0.10", "hour"),
		product("PRD004", "API Integration", "Third-party API integration and custom API development", "135", CategoryService, "0.10", "hour"),
		product("PRD005", "Technical Consulting", "Expert technical consulting and architecture planning", "200", CategoryConsulting, "0.10", "hour"),
		product("PRD006", "Business Analysis", "Business requirements analysis and process optimization", "165", CategoryConsulting, "0.10", "hour"),
		product("PRD007", "DevOps Consulting", "CI/CD setup, cloud infrastructure, and deployment strategies", "180", CategoryConsulting, "0.10", "hour"),
		product("PRD008", "CMS License - Basic", "Basic content management system license (annual)", "499", CategorySoftware, "0.08", "license"),
		product("PRD009", "CMS License - Enterprise", "Enterprise content management system with advanced features", "1999", CategorySoftware, "0.08", "license"),
		product("PRD010", "Analytics Platform", "Business intelligence and analytics platform subscription", "299", CategorySoftware, "0.08", "month"),
		product("PRD011", "Project Management Tool", "Collaborative project management software suite", "49", CategorySoftware, "0.08", "user/month"),
		product("PRD012", "UI/UX Design", "User interface and experience design services", "140", CategoryDesign, "0.10", "hour"),
		product("PRD013", "Brand Identity Package", "Complete brand identity including logo, colors, and guidelines", "3500", CategoryDesign, "0.10", "project"),
		product("PRD014", "Graphic Design", "Custom graphics, illustrations, and visual content", "95", CategoryDesign, "0.10", "hour"),
		product("PRD015", "SEO Optimization", "Search engine optimization and content strategy", "120", CategoryMarketing, "0.10", "hour"),
		product("PRD016", "Social Media Management", "Social media strategy and content management", "850", CategoryMarketing, "0.10", "month"),
		product("PRD017", "Email Campaign", "Email marketing campaign design and execution", "450", CategoryMarketing, "0.10", "campaign"),
		product("PRD018", "Enterprise Server", "High-performance rack-mounted server", "4500", CategoryHardware, "0.08", "unit"),
		product("PRD019", "Development Workstation", "Professional developer workstation with high-end specs", "2800", CategoryHardware, "0.08", "unit"),
		product("PRD020", "Network Equipment", "Enterprise-grade networking hardware and switches", "1200", CategoryHardware, "0.08", "unit"),
		product("PRD021", "Training Session", "Technical training and knowledge transfer session", "350", CategoryOther, "0.10", "session"),
		product("PRD022", "Maintenance Package", "Monthly website/application maintenance and support", "750", CategoryOther, "0.10", "month"),
	}
}
