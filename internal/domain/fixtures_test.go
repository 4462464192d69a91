package domain

import "github.com/shopspring/decimal"

func product(id string, cat Category, price int64, sizes, colors []string) Product {
	return Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.NewFromInt(price),
		Image:    "/images/" + id + ".jpg",
		Category: cat,
		Sizes:    sizes,
		Colors:   colors,
	}
}

// testCatalog has six men's products so related lookups can exceed the limit.
func testCatalog() []Product {
	all := []string{"S", "M", "L"}
	return []Product{
		product("m1", CategoryMen, 89, all, []string{"Off White", "Black"}),
		product("w1", CategoryWomen, 120, []string{"XS", "S"}, []string{"Cream"}),
		product("m2", CategoryMen, 150, all, []string{"Stone"}),
		product("m3", CategoryMen, 210, []string{"M", "L", "XL"}, []string{"Navy"}),
		product("u1", CategoryUnisex, 100, all, []string{"Grey", "Black"}),
		product("m4", CategoryMen, 65, all, []string{"Sand"}),
		product("m5", CategoryMen, 200, all, []string{"Black"}),
		product("m6", CategoryMen, 45, []string{"XXL"}, []string{"White"}),
	}
}

func ids(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
