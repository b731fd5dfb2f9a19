package catalog

import "time"

// Seed returns the static catalog the storefront always offers alongside the
// remote products. Every entry is stamped with createdAt.
func Seed(createdAt time.Time) []Product {
	products := make([]Product, len(seedProducts))
	for i, p := range seedProducts {
		p.Tags = cloneTags(p.Tags)
		p.CreatedAt = createdAt
		products[i] = p
	}
	return products
}

// IsSeedID reports whether id names a static catalog entry.
func IsSeedID(id string) bool {
	for _, p := range seedProducts {
		if p.ID == id {
			return true
		}
	}
	return false
}

var seedProducts = []Product{
	{
		ID:          "indian-1",
		Name:        "Traditional Indian Kurti",
		Description: "Elegant embroidered kurti perfect for festivals",
		Price:       2499,
		Category:    CategoryTops,
		ImageURL:    "https://img.theloom.in/blog/wp-content/uploads/2022/03/26-aug01427-e1647865850193.png",
		Stock:       15,
		Tags:        []string{"indian", "traditional", "festival", "embroidered"},
	},
	{
		ID:          "indian-2",
		Name:        "Indian Silk Saree",
		Description: "Beautiful handwoven silk saree with intricate patterns",
		Price:       5299,
		Category:    CategoryDresses,
		ImageURL:    "https://img.theloom.in/blog/wp-content/uploads/2025/11/gs-ss04ubu2_4__1.png",
		Stock:       8,
		Tags:        []string{"indian", "silk", "traditional", "wedding"},
	},
	{
		ID:          "indian-3",
		Name:        "Men's Kurta Pajama",
		Description: "Classic Indian kurta pajama set for special occasions",
		Price:       4749,
		Category:    CategoryMensTops,
		ImageURL:    "https://images.sareeswholesale.com/2024y/October/53328/Grey-Art%20Silk%20-Wedding%20Wear-Embroidery%20Work-Readymade%20Kurta%20Pajama%20With%20Jacket-1647-3388.jpg",
		Stock:       12,
		Tags:        []string{"indian", "mens", "traditional", "formal"},
	},
	{
		ID:          "indian-4",
		Name:        "Indian Lehenga Choli",
		Description: "Stunning lehenga choli with heavy embroidery",
		Price:       7499,
		Category:    CategoryDresses,
		ImageURL:    "https://assets.ajio.com/medias/sys_master/root/20250221/IvtB/67b7ae352960820c4999f901/-473Wx593H-701242963-yellow-MODEL.jpg",
		Stock:       5,
		Tags:        []string{"indian", "lehenga", "wedding", "embroidered"},
	},
	{
		ID:          "indian-5",
		Name:        "Men's Sherwani",
		Description: "Elegant sherwani for weddings and formal events",
		Price:       8499,
		Category:    CategoryMensOuterwear,
		ImageURL:    "https://assets.panashindia.com/media/catalog/product/cache/1/image/9df78eab33525d08d6e5fb8d27136e95/1/0/1067mw01-2681.jpg",
		Stock:       6,
		Tags:        []string{"indian", "mens", "wedding", "formal"},
	},
	{
		ID:          "indian-6",
		Name:        "Indian Jodhpuri Pants",
		Description: "Traditional jodhpuri pants with modern fit",
		Price:       6299,
		Category:    CategoryMensBottoms,
		ImageURL:    "https://img.perniaspopupshop.com/catalog/product/n/k/NKGCM022349_1.jpg?impolicy=listingimagenew",
		Stock:       20,
		Tags:        []string{"indian", "mens", "traditional", "formal"},
	},
	{
		ID:          "indian-7",
		Name:        "Indian Mojari Shoes",
		Description: "Handcrafted mojari shoes with intricate embroidery",
		Price:       4799,
		Category:    CategoryMensShoes,
		ImageURL:    "https://raaya.in/cdn/shop/files/IMG_2895-compressed_2048x.jpg?v=1729772354",
		Stock:       10,
		Tags:        []string{"indian", "mens", "handcrafted", "traditional"},
	},
	{
		ID:          "indian-8",
		Name:        "Indian Anarkali Dress",
		Description: "Flowing anarkali dress with beautiful patterns",
		Price:       5699,
		Category:    CategoryDresses,
		ImageURL:    "https://hatkebride.com/cdn/shop/files/Brown-Net-Full-Floor-Length-Anarkali-Dress-with-Fr-9.jpg?v=1754427889",
		Stock:       7,
		Tags:        []string{"indian", "anarkali", "flowing", "elegant"},
	},
	{
		ID:          "indian-9",
		Name:        "Men's Nehru Jacket",
		Description: "Modern nehru jacket with contemporary design",
		Price:       9999,
		Category:    CategoryMensOuterwear,
		ImageURL:    "https://colorweave.in/cdn/shop/products/nordlich-colorweave-kalamkari-black-motifs-mens-nehru-jacket-01_1080x1080.jpg?v=1677915303",
		Stock:       14,
		Tags:        []string{"indian", "mens", "nehru", "modern"},
	},
	{
		ID:          "indian-10",
		Name:        "Indian Churidar Leggings",
		Description: "Comfortable churidar leggings for daily wear",
		Price:       1299,
		Category:    CategoryBottoms,
		ImageURL:    "https://myprisma.in/cdn/shop/products/5_abadd10b-52a0-4896-9ea3-a9e769562214.jpg?v=1679115257&width=1946",
		Stock:       25,
		Tags:        []string{"indian", "churidar", "comfortable", "daily"},
	},
}
