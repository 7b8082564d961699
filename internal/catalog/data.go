package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
)

var seedCategories = []struct {
	id          string
	name        string
	description string
	image       string
}{
	{"1", "Electronics", "Latest gadgets and electronic devices", "/images/categories/electronics.jpg"},
	{"2", "Fashion", "Trendy clothing and accessories", "/images/categories/fashion.jpg"},
	{"3", "Home & Kitchen", "Everything for your home", "/images/categories/home-kitchen.jpg"},
	{"4", "Beauty & Personal Care", "Skincare, makeup, and personal care products", "/images/categories/beauty.jpg"},
	{"5", "Sports & Outdoors", "Equipment for sports and outdoor activities", "/images/categories/sports.jpg"},
	{"6", "Books & Media", "Books, movies, music, and more", "/images/categories/books.jpg"},
}

func p(id, name, price, category string, rating float64, reviews int, inStock, featured bool, description string, tags ...string) domain.Product {
	return domain.Product{
		ID:              id,
		Name:            name,
		Price:           decimal.RequireFromString(price),
		Image:           "/images/products/" + id + ".jpg",
		Description:     description,
		LongDescription: description + " Backed by a one-year warranty and free returns within 30 days.",
		Rating:          rating,
		Reviews:         reviews,
		InStock:         inStock,
		CategoryID:      category,
		Featured:        featured,
		Tags:            tags,
	}
}

var seedProducts = []domain.Product{
	p("1", "Wireless Noise-Cancelling Headphones", "199.99", "1", 4.7, 1284, true, true, "Over-ear headphones with 30-hour battery life.", "audio", "wireless", "bluetooth"),
	p("2", "Smart Watch Series 5", "249.00", "1", 4.5, 862, true, true, "Fitness tracking, heart-rate monitor and GPS.", "wearable", "fitness", "smart"),
	p("3", "4K Ultra HD Smart TV 55\"", "549.99", "1", 4.6, 431, true, false, "Crystal-clear 4K picture with built-in streaming apps.", "tv", "4k", "smart"),
	p("4", "Classic Denim Jacket", "79.50", "2", 4.3, 212, true, true, "Timeless denim jacket with a relaxed fit.", "denim", "jacket", "casual"),
	p("5", "Leather Crossbody Bag", "119.00", "2", 4.4, 187, false, false, "Genuine leather bag with adjustable strap.", "leather", "bag", "accessories"),
	p("6", "Running Sneakers", "89.99", "2", 4.2, 640, true, false, "Lightweight sneakers with cushioned soles.", "shoes", "running", "sport"),
	p("7", "Stainless Steel Cookware Set", "159.99", "3", 4.8, 973, true, true, "10-piece set suitable for all stovetops.", "kitchen", "cookware", "steel"),
	p("8", "Robot Vacuum Cleaner", "299.00", "3", 4.1, 355, true, false, "Self-charging vacuum with app control.", "cleaning", "smart", "home"),
	p("9", "Ceramic Table Lamp", "45.00", "3", 4.0, 98, true, false, "Hand-glazed lamp with linen shade.", "lighting", "decor", "home"),
	p("10", "Vitamin C Serum", "24.99", "4", 4.6, 2210, true, true, "Brightening serum with hyaluronic acid.", "skincare", "serum", "vitamin"),
	p("11", "Professional Hair Dryer", "69.99", "4", 4.3, 509, true, false, "Ionic dryer with three heat settings.", "hair", "styling", "dryer"),
	p("12", "Organic Lip Balm Pack", "9.99", "4", 4.5, 321, true, false, "Set of four moisturising lip balms.", "lips", "organic", "care"),
	p("13", "Yoga Mat Pro", "39.95", "5", 4.7, 1120, true, true, "Non-slip 6mm mat with carrying strap.", "yoga", "fitness", "mat"),
	p("14", "Camping Tent 4-Person", "179.00", "5", 4.4, 276, true, false, "Waterproof dome tent with quick setup.", "camping", "tent", "outdoor"),
	p("15", "Adjustable Dumbbells", "229.99", "5", 4.6, 698, false, false, "Pair of dumbbells adjustable from 2 to 24 kg.", "weights", "fitness", "strength"),
	p("16", "The Pragmatic Programmer", "42.00", "6", 4.9, 3150, true, true, "Classic guide to software craftsmanship.", "book", "programming", "software"),
	p("17", "Vinyl Record Player", "129.00", "6", 4.2, 244, true, false, "Belt-drive turntable with built-in speakers.", "music", "vinyl", "audio"),
	p("18", "Classic Movie Collection", "59.99", "6", 4.1, 133, true, false, "Box set of twelve restored film classics.", "movies", "collection", "bluray"),
}
